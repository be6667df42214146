package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/config"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/metrics"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/server"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/store"
)

func newServeCmd(opts *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Long: `Serve exposes the catalog as a REST API under /api/v1/books, streams
changes on /ws and publishes Prometheus metrics on /metrics. Configuration
comes from APP_* environment variables; flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (env "+config.EnvServerPort+")")

	return cmd
}

func runServe(cmd *cobra.Command, opts *options, port int) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.ServerPort = port
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating flags: %w", err)
		}
	}

	logger, err := initLogger(cfg.LogLevel, cfg.LogOutput)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.Int("catalog_capacity", cfg.CatalogCapacity),
		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("auth_public_reads", cfg.AuthPublicReads),
		zap.Bool("tls_enabled", cfg.TLSEnabled),
	)

	authenticator, err := createAuthenticator(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating authenticator: %w", err)
	}

	bookStore := store.NewMemoryStore(store.WithCapacity(cfg.CatalogCapacity))
	srv := server.New(cfg, logger, bookStore, authenticator)

	bookStore.Subscribe(srv.Publish)
	bookStore.Subscribe(func(e model.CatalogEvent) {
		logger.Debug("catalog changed", zap.String("type", string(e.Type)), zap.String("book_id", e.BookID))
	})
	if cfg.MetricsEnabled {
		bookStore.Subscribe(metrics.NewRecorder(bookStore).Observe)
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}

	logger.Info("server stopped", zap.Int("books", bookStore.Len()))
	return nil
}
