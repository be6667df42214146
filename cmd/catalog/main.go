// Package main is the entry point of the catalog: an interactive console
// by default, or an HTTP server with the serve command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/config"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/console"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/store"
)

// consoleLogLevel keeps the terminal quiet unless a level is requested.
const consoleLogLevel = "warn"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every command.
type options struct {
	logLevel  string
	logOutput string
	capacity  int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog is a bounded in-memory book catalog",
		Long: `Catalog keeps up to 100 books in memory. Without a subcommand it runs
the interactive menu on standard input; "catalog serve" exposes the same
catalog over HTTP.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	flags.StringVar(&opts.logOutput, "log-output", "", "log destination: stdout, stderr or a file (env "+config.EnvLogOutput+")")
	flags.IntVar(&opts.capacity, "capacity", 0, "maximum number of books, 1-100 (env "+config.EnvCatalogCapacity+")")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logOutput != "" {
		cfg.LogOutput = opts.logOutput
	}
	if cmd.Flags().Changed("capacity") {
		cfg.CatalogCapacity = opts.capacity
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating flags: %w", err)
	}

	return cfg, nil
}

func runConsole(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	if opts.logLevel == "" && os.Getenv(config.EnvLogLevel) == "" {
		cfg.LogLevel = consoleLogLevel
	}

	logger, err := initLogger(cfg.LogLevel, cfg.LogOutput)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	bookStore := store.NewMemoryStore(store.WithCapacity(cfg.CatalogCapacity))

	parent := commandContext(cmd)
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := console.New(bookStore, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	if err := c.Run(ctx); err != nil {
		if ctx.Err() != nil && parent.Err() == nil {
			logger.Info("console interrupted", zap.Error(err))
			return nil
		}
		return err
	}

	return nil
}

// commandContext returns the command's context or Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
