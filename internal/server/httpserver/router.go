package httpserver

import (
	"net/http"
	"time"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	// Metrics is served at /metrics. Nil falls back to the global registry.
	Metrics *metric.Registry

	// Keys reports the current number of stored keys for /health.
	Keys func() int

	// Started is the process start time used for uptime.
	Started time.Time

	Logger logger.Logger
}

// HealthStatus is the body returned by GET /health.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Commit        string  `json:"commit"`
	GoVersion     string  `json:"go_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Keys          int     `json:"keys"`
}

// NewRouter creates the admin handler with its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.Global()
	}
	if cfg.Started.IsZero() {
		cfg.Started = time.Now()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", cfg.Metrics.Handler())
	mux.HandleFunc("GET /health", healthHandler(cfg))

	return Chain(mux, Recover(cfg.Logger), RequestID(), AccessLog(cfg.Logger))
}

func healthHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := buildinfo.Get()
		status := HealthStatus{
			Status:        "ok",
			Version:       info.Version,
			Commit:        info.Commit,
			GoVersion:     info.GoVersion,
			UptimeSeconds: time.Since(cfg.Started).Seconds(),
		}
		if cfg.Keys != nil {
			status.Keys = cfg.Keys()
		}
		writeJSON(w, http.StatusOK, status)
	}
}
