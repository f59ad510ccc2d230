package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beetlebugorg/burnview/internal/config"
	"github.com/beetlebugorg/burnview/internal/logging"
	"github.com/beetlebugorg/burnview/internal/metrics"
	"github.com/beetlebugorg/burnview/internal/server"
	"github.com/beetlebugorg/burnview/pkg/burn"
	"github.com/beetlebugorg/burnview/pkg/session"
)

const janitorInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Base table
	kind, err := burn.ParseIndexKind(cfg.Data.Index)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid index kind")
	}
	opts := burn.DefaultLoadOptions()
	opts.ValueField = cfg.Data.ValueField
	opts.ValidateCoordinates = cfg.Data.ValidateCoordinates
	opts.Index = kind
	opts.H3Resolution = cfg.Data.H3Resolution
	if cfg.Data.Workers > 0 {
		opts.Workers = cfg.Data.Workers
	}
	opts.Logger = &log

	start := time.Now()
	table, diags := burn.LoadSources(cfg.Data.Sources, cfg.Data.Dir, opts)
	metrics.FeaturesLoaded.Set(float64(table.Len()))
	for _, d := range diags {
		kind := "feature"
		if d.Index < 0 {
			kind = "source"
		}
		metrics.LoadDiagnostics.WithLabelValues(kind).Inc()
	}
	log.Info().
		Int("features", table.Len()).
		Int("diagnostics", len(diags)).
		Dur("elapsed", time.Since(start)).
		Msg("data loaded")

	// Sessions
	sessOpts := session.DefaultOptions()
	sessOpts.ValueField = cfg.Data.ValueField
	sessOpts.GroupField = cfg.Data.GroupField
	sessOpts.QueueSize = cfg.Session.QueueSize
	sessOpts.ResolveClicks = cfg.Session.ResolveClicks
	sessOpts.Hooks = session.Hooks{
		Viewport: metrics.ObserveViewport,
		Click:    metrics.ObserveClick,
	}
	sessOpts.Logger = &log

	var registry *session.Registry
	registry = session.NewRegistry(table, session.RegistryOptions{
		MaxSessions: cfg.Session.MaxSessions,
		IdleTimeout: cfg.Session.IdleTimeout,
		Session:     sessOpts,
		Logger:      &log,
		OnEvict: func(id, reason string) {
			metrics.SessionsClosed.WithLabelValues(reason).Inc()
			if registry != nil {
				metrics.ActiveSessions.Set(float64(registry.Stats().Sessions))
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.Janitor(ctx, janitorInterval)

	// HTTP
	app := server.NewApp(server.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, &server.Dependencies{
		Table:       table,
		Diagnostics: diags,
		Sessions:    registry,
		ValueField:  cfg.Data.ValueField,
		GroupField:  cfg.Data.GroupField,
		StaticDir:   cfg.Server.StaticDir,
		Logger:      log,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("burnview listening")
	if err := app.Listen(addr); err != nil {
		log.Error().Err(err).Msg("server error")
	}

	registry.Close()
	log.Info().Msg("stopped")
}
