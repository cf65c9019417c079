package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "respkv"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	ProtocolErrors  *prometheus.CounterVec
	RateLimited     prometheus.Counter

	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter

	// Storage metrics
	KeysExpired          *prometheus.CounterVec
	SnapshotKeys         prometheus.Gauge
	SnapshotWriteSeconds prometheus.Histogram
}

// NewRegistry creates a registry with Go runtime and process collectors
// plus every respkv instrument registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command and result.",
		}, []string{"command", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution latency.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"command"}),
		ProtocolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Requests rejected by the decoder, by error code.",
		}, []string{"code"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Client connections currently open.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Client connections accepted.",
		}),
		KeysExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_expired_total",
			Help:      "Keys removed after expiry, by removal path (lazy or sweep).",
		}, []string{"path"}),
		SnapshotKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_keys",
			Help:      "Keys written by the most recent snapshot.",
		}),
		SnapshotWriteSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_write_duration_seconds",
			Help:      "Time spent writing a snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		r.CommandsTotal,
		r.CommandDuration,
		r.ProtocolErrors,
		r.RateLimited,
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.KeysExpired,
		r.SnapshotKeys,
		r.SnapshotWriteSeconds,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns the /metrics handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gather collects the current metric families.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

// RecordCommand counts one executed command and its latency.
func (r *Registry) RecordCommand(command, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.CommandsTotal.WithLabelValues(command, result).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordProtocolError counts one request the decoder rejected.
func (r *Registry) RecordProtocolError(code string) {
	if r == nil {
		return
	}
	r.ProtocolErrors.WithLabelValues(code).Inc()
}

// IncRateLimited counts one rate-limited request.
func (r *Registry) IncRateLimited() {
	if r == nil {
		return
	}
	r.RateLimited.Inc()
}

// ConnOpened records a newly accepted connection.
func (r *Registry) ConnOpened() {
	if r == nil {
		return
	}
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records a connection going away.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
}

// AddKeysExpired counts n keys removed on the given path.
func (r *Registry) AddKeysExpired(path string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.KeysExpired.WithLabelValues(path).Add(float64(n))
}

// RecordSnapshot records a completed snapshot write.
func (r *Registry) RecordSnapshot(keys int, d time.Duration) {
	if r == nil {
		return
	}
	r.SnapshotKeys.Set(float64(keys))
	r.SnapshotWriteSeconds.Observe(d.Seconds())
}
