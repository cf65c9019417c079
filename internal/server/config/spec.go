package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	RESP RESPConfig `koanf:"resp"`
	HTTP HTTPConfig `koanf:"http"`
}

// RESPConfig configures the RESP listener.
type RESPConfig struct {
	Addr         string        `koanf:"addr"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	BufferSize   int           `koanf:"buffer_size"`
	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit int `koanf:"rate_limit"`
}

// HTTPConfig configures the admin HTTP endpoint serving /metrics and /health.
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures expiry sweeping and snapshots.
type StorageSection struct {
	// SweepInterval enables a periodic purge of expired keys; 0 disables it.
	SweepInterval time.Duration `koanf:"sweep_interval"`
	// SnapshotDir enables badger snapshots when set.
	SnapshotDir string `koanf:"snapshot_dir"`
	// SnapshotInterval adds periodic snapshots; 0 saves only on shutdown.
	SnapshotInterval time.Duration `koanf:"snapshot_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Keys lists every dotted configuration key. The env loader uses it to
// map RESPKV_* variables onto keys that contain underscores.
func Keys() []string {
	return []string{
		"server.resp.addr",
		"server.resp.idle_timeout",
		"server.resp.write_timeout",
		"server.resp.buffer_size",
		"server.resp.rate_limit",
		"server.http.enabled",
		"server.http.addr",
		"storage.sweep_interval",
		"storage.snapshot_dir",
		"storage.snapshot_interval",
		"log.level",
		"log.format",
	}
}
