package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/respserver"
	"github.com/yndnr/respkv/internal/storage"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "in-memory key-value server speaking RESP",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before RESPKV_* variables",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log.level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, "respkv-server "+buildinfo.String())
					return nil
				},
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	configFile := c.String("config")

	cfg, err := loadConfig(configFile, c.String("env-file"), c.String("log-level"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting respkv-server", append(buildinfo.Get().LogFields(), "config", configFile)...)

	metrics := metric.NewRegistry()
	store := memory.NewShared(memory.New(memory.WithExpireObserver(metrics.AddKeysExpired)))
	if err := metrics.WatchKeyspace(store.Len); err != nil {
		return fmt.Errorf("register keyspace collector: %w", err)
	}

	bg, cancelBG := context.WithCancel(context.Background())
	defer cancelBG()

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, log)

	// Hooks run in reverse order of registration, so the snapshot is saved
	// after both listeners have stopped accepting writes.
	if cfg.Storage.SnapshotDir != "" {
		snap, err := openSnapshot(bg, cfg, store, metrics, log)
		if err != nil {
			return err
		}
		var periodic sync.WaitGroup
		periodic.Add(1)
		go func() {
			defer periodic.Done()
			snap.Run(bg, cfg.Storage.SnapshotInterval, store.Snapshot)
		}()
		shutdownHandler.OnShutdown("snapshot", func(ctx context.Context) error {
			// The final save must not overlap a periodic one.
			cancelBG()
			periodic.Wait()
			if _, err := snap.Save(ctx, store.Snapshot()); err != nil {
				_ = snap.Close()
				return storageError("save snapshot", err)
			}
			if err := snap.Close(); err != nil {
				return storageError("close snapshot", err)
			}
			return nil
		})
	}

	shutdownHandler.OnShutdown("background", func(context.Context) error {
		cancelBG()
		return nil
	})

	sweeper := memory.NewSweeper(store, cfg.Storage.SweepInterval, log)
	if sweeper.Enabled() {
		go sweeper.Run(bg)
	}

	engine := respserver.NewEngine(store, respserver.WithMetrics(metrics))
	srv := respserver.New(&respserver.Config{
		Address:      cfg.Server.RESP.Addr,
		IdleTimeout:  cfg.Server.RESP.IdleTimeout,
		WriteTimeout: cfg.Server.RESP.WriteTimeout,
		BufferSize:   cfg.Server.RESP.BufferSize,
		RateLimit:    cfg.Server.RESP.RateLimit,
	}, engine, respserver.WithLogger(log), respserver.WithRegistry(metrics))
	if err := srv.Start(bg); err != nil {
		return fmt.Errorf("start resp server: %w", err)
	}
	shutdownHandler.OnShutdown("resp", srv.Shutdown)

	if cfg.Server.HTTP.Enabled {
		admin := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(httpserver.RouterConfig{
			Metrics: metrics,
			Keys:    store.Len,
			Logger:  log,
		}), log)
		if err := admin.Start(); err != nil {
			return fmt.Errorf("start admin http server: %w", err)
		}
		shutdownHandler.OnShutdown("http", admin.Shutdown)
	}

	// An explicit --log-level pins the level, so reloads would fight it.
	if configFile != "" && c.String("log-level") == "" {
		watcher, err := watchLogLevel(configFile, c.String("env-file"), log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started", "addr", srv.Addr().String())
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, the YAML file, the dotenv file and RESPKV_*
// variables, then applies the --log-level override and validates.
func loadConfig(configFile, envFile, logLevel string) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := confloader.NewLoader(loaderOptions(configFile, envFile)...).Load(cfg); err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loaderOptions is shared by startup and reloads so both see the same
// layers.
func loaderOptions(configFile, envFile string) []confloader.Option {
	opts := []confloader.Option{confloader.WithKnownKeys(config.Keys()...)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, confloader.WithDotEnv(envFile))
	}
	return opts
}

func openSnapshot(ctx context.Context, cfg *config.ServerConfig, store *memory.Shared, metrics *metric.Registry, log logger.Logger) (*storage.Snapshotter, error) {
	snap, err := storage.OpenSnapshotter(
		storage.DefaultSnapshotConfig(cfg.Storage.SnapshotDir),
		log,
		storage.WithSnapshotMetrics(metrics),
	)
	if err != nil {
		return nil, storageError("open snapshot", err)
	}

	if _, err := snap.Load(ctx, store.Restore); err != nil {
		_ = snap.Close()
		return nil, storageError("load snapshot", err)
	}
	return snap, nil
}

func storageError(op string, err error) error {
	return domain.ErrStorage.WithDetails(fmt.Sprintf("%s: %v", op, err)).WithCause(err)
}

// watchLogLevel re-reads the configuration on change and applies
// log.level. Other settings need a restart.
func watchLogLevel(configFile, envFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		reloadLogLevel(configFile, envFile, log)
	})
	watcher.StartAsync()
	return watcher, nil
}

// reloadLogLevel loads the full layered configuration, so a level set in
// the environment still wins over the file.
func reloadLogLevel(configFile, envFile string, log logger.Logger) {
	cfg, err := loadConfig(configFile, envFile, "")
	if err != nil {
		log.Warn("config reload rejected", "path", configFile, "error", err)
		return
	}
	if cfg.Log.Level == logger.GetLevel() {
		return
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("config reload rejected", "path", configFile, "error", err)
		return
	}
	log.Info("log level changed", "level", logger.GetLevel())
}
