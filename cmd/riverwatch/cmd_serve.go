package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/riverwatch/riverwatch/internal/api"
	"github.com/riverwatch/riverwatch/internal/api/middleware"
	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only HTTP API",
		Long: `Start the HTTP API. Stations are discovered once at startup; if discovery
fails the server still starts and reports not ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			return serve(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (env APP_PORT)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	log := a.log
	log.Info().
		Str("build_time", BuildTime).
		Str("base_url", a.cfg.BaseURL).
		Msg("starting riverwatch API")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.NewConfig(a.cfg, serviceName, Version))
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if a.cfg.OTelEnabled {
		log.Info().Str("otlp_endpoint", a.cfg.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}

	monitor := hydrology.NewMonitor(ctx, hydrology.MonitorConfig{
		Provider: a.client,
		Logger:   log,
	})
	if !monitor.GoodConstruction() {
		log.Warn().Msg("serving without stations; /v1/ops/ready will report unavailable")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		Monitor:            monitor,
		Registry:           a.registry,
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
	})

	// A readings request makes two upstream calls, each bounded by the
	// upstream timeout.
	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2*a.cfg.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
