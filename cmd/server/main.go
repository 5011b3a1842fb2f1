package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/morpion/internal/api"
	"github.com/mcoot/morpion/internal/config"
	"github.com/mcoot/morpion/internal/factory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "morpion-server",
		Short: "Run the morpion account and statistics API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("MORPION_CONFIG"), "YAML config file (env: MORPION_CONFIG)")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application factory
	app, err := factory.New(ctx, factory.ConfigFrom(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return fmt.Errorf("creating application: %w", err)
	}

	logger.Info("application ready",
		slog.String("storage", cfg.Storage.Type),
		slog.String("sessions", cfg.Sessions.Type),
		slog.String("notify", cfg.Notify.Type),
	)

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:       logger,
		AuthService:  app.AuthService,
		StatsService: app.StatsService,
	})

	server := api.NewServer(router, api.ServerConfigFrom(cfg.Server), logger)
	ln, err := net.Listen("tcp", server.Addr())
	if err != nil {
		_ = app.Close(context.Background())
		return fmt.Errorf("listening on %s: %w", server.Addr(), err)
	}

	runErr := server.Run(ctx, ln)
	if runErr != nil {
		logger.Error("server error", slog.String("error", runErr.Error()))
	}

	// Let pending signup notifications finish before closing connections
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Notify.Timeout+5*time.Second)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		logger.Error("close error", slog.String("error", err.Error()))
		if runErr == nil {
			runErr = err
		}
	}

	logger.Info("server stopped")
	return runErr
}
