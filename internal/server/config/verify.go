package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Bounds for server.resp.buffer_size.
const (
	MinBufferSize = 16
	MaxBufferSize = 64 << 20
)

// Verify validates the configuration and returns every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyStorage(&cfg.Storage),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error

	if err := verifyAddr("server.resp.addr", cfg.RESP.Addr); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs,
		nonNegative("server.resp.idle_timeout", cfg.RESP.IdleTimeout),
		nonNegative("server.resp.write_timeout", cfg.RESP.WriteTimeout),
	)
	if cfg.RESP.BufferSize < MinBufferSize || cfg.RESP.BufferSize > MaxBufferSize {
		errs = append(errs, fmt.Errorf("server.resp.buffer_size must be between %d and %d, got %d",
			MinBufferSize, MaxBufferSize, cfg.RESP.BufferSize))
	}
	if cfg.RESP.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.resp.rate_limit must not be negative, got %d", cfg.RESP.RateLimit))
	}

	if cfg.HTTP.Enabled {
		if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
			errs = append(errs, err)
		} else if cfg.HTTP.Addr == cfg.RESP.Addr {
			errs = append(errs, errors.New("server.http.addr must differ from server.resp.addr"))
		}
	}
	return errors.Join(errs...)
}

func verifyStorage(cfg *StorageSection) error {
	errs := []error{
		nonNegative("storage.sweep_interval", cfg.SweepInterval),
		nonNegative("storage.snapshot_interval", cfg.SnapshotInterval),
	}
	if cfg.SnapshotInterval > 0 && cfg.SnapshotDir == "" {
		errs = append(errs, errors.New("storage.snapshot_interval requires storage.snapshot_dir"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logger.ParseFormat(cfg.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	return errors.Join(errs...)
}

func verifyAddr(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func nonNegative(key string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %s", key, d)
	}
	return nil
}
