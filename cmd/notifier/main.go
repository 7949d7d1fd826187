package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/bell24h/realtime/internal/config"
	"github.com/bell24h/realtime/internal/connection"
	"github.com/bell24h/realtime/internal/database"
	"github.com/bell24h/realtime/internal/metrics"
	"github.com/bell24h/realtime/internal/router"
	"github.com/bell24h/realtime/internal/server"
	"github.com/bell24h/realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults are used when empty)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Logging.Level))
	logger := newLogger(cfg.Logging.Format, level)
	slog.SetDefault(logger)

	build := version.Get()
	logger.Info("starting notifier",
		"version", build.Version,
		"commit", build.Commit,
		"go", build.GoVersion,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	// Log level follows config file edits; everything else needs a restart
	if *configPath != "" {
		stopWatch, err := config.Watch(*configPath, func(next *config.NotifierConfig) {
			level.Set(parseLevel(next.Logging.Level))
			logger.Info("log level updated", "level", level.Level())
		}, logger)
		if err != nil {
			logger.Warn("config watcher unavailable (hot-reload disabled)", "error", err)
		} else {
			defer stopWatch()
		}
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("notifier failed", "error", err)
		os.Exit(1)
	}

	logger.Info("notifier stopped")
}

func run(cfg *config.NotifierConfig, logger *slog.Logger) error {
	// Cancel on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	registry := connection.NewRegistry(connection.RegistryConfig{
		MaxConnections: cfg.Connections.MaxConnections,
		AllowRebind:    cfg.Auth.RebindAllowed(),
	}, logger, m)
	heartbeat := connection.NewHeartbeat(registry, cfg.Heartbeat.Interval, logger, m)
	rt := router.New(registry, router.WithLogger(logger), router.WithMetrics(m))

	srvCfg := server.Config{
		Addr:            cfg.Server.Addr,
		WSPath:          cfg.Server.WSPath,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ReadLimit:       cfg.Server.ReadLimit,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsPath:     cfg.Metrics.Path,
		Conn: connection.ConnConfig{
			SendBuffer:   cfg.Connections.SendBuffer,
			WriteTimeout: cfg.Connections.WriteTimeout,
		},
	}
	if cfg.Events.Enabled() {
		srvCfg.EventsPath = cfg.Events.APIPath
		srvCfg.EventsToken = cfg.Events.APIToken
	}
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMetrics(m, promReg),
	}

	g, ctx := errgroup.WithContext(ctx)

	// Connect to database
	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database, cfg.Instance.ID)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		logger.Info("database connected")
		opts = append(opts, server.WithDatabase(pool))

		listener := database.NewListener(pool, database.ListenerConfig{
			Channel: cfg.Database.ListenChannel,
		}, rt, logger)
		g.Go(func() error {
			return listener.Run(ctx)
		})
	}

	srv := server.New(srvCfg, registry, heartbeat, rt, opts...)
	g.Go(func() error {
		return srv.Run(ctx)
	})

	return g.Wait()
}

func loadConfig(path string) (*config.NotifierConfig, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.LoadAndValidate(path)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
