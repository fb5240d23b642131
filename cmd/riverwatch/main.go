// Package main provides the riverwatch command line: station discovery,
// measure listing and readings retrieval against the flood-monitoring API,
// plus the read-only HTTP API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/riverwatch/riverwatch/internal/config"
	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/hydrology/floodmonitoring"
	"github.com/riverwatch/riverwatch/internal/logging"
	"github.com/riverwatch/riverwatch/internal/provider/resilience"
	"github.com/riverwatch/riverwatch/internal/result"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "riverwatch"

// app is the state shared by every subcommand once flags and environment
// have been resolved.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	registry *resilience.Registry
	client   *floodmonitoring.Client
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// monitor opens a monitoring session; a failed station discovery is returned
// as a failure.
func (a *app) monitor(ctx context.Context) (*hydrology.Monitor, error) {
	m := hydrology.NewMonitor(ctx, hydrology.MonitorConfig{
		Provider: a.client,
		Logger:   a.log,
	})
	if !m.GoodConstruction() {
		return m, failure{m.Err()}
	}
	return m, nil
}

// openStation opens a station without a session; measure and readings
// commands never need the station list.
func (a *app) openStation(cmd *cobra.Command, reference string) *hydrology.Station {
	return hydrology.NewStation(cmd.Context(), hydrology.StationConfig{
		Provider:  a.client,
		Reference: reference,
		Logger:    a.log,
	})
}

// failure renders a retrieval error as its explanation plus context.
type failure struct {
	err *result.Error
}

func (f failure) Error() string {
	if f.err.Context == "" {
		return f.err.Error()
	}
	return f.err.Error() + ": " + f.err.Context
}

func (f failure) Unwrap() error {
	return f.err
}

// failureOf wraps a retrieval error for printing; other errors pass through.
func failureOf(err error) error {
	var e *result.Error
	if errors.As(err, &e) {
		return failure{e}
	}
	return err
}

type flags struct {
	baseURL   string
	timeout   time.Duration
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   serviceName,
		Short: "riverwatch - flood-monitoring station and readings client",
		Long: `riverwatch retrieves active monitoring stations, the measures each station
reports and their readings from the Environment Agency flood-monitoring API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			applyFlags(cmd, &cfg, f)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log := logging.New(cmd.ErrOrStderr(), cfg, serviceName, Version)
			registry := resilience.NewRegistry()
			client := floodmonitoring.NewClient(floodmonitoring.ClientConfig{
				BaseURL:        cfg.BaseURL,
				Timeout:        cfg.Timeout,
				MaxRetries:     cfg.MaxRetries,
				CircuitBreaker: cfg.CircuitBreaker,
				Registry:       registry,
				Logger:         log,
			})

			a := &app{cfg: cfg, log: log, registry: registry, client: client}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.baseURL, "base-url", "", "flood-monitoring API base URL (env FLOOD_API_BASE_URL)")
	pf.DurationVar(&f.timeout, "timeout", 0, "per-request timeout (env FLOOD_API_TIMEOUT)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (env LOG_LEVEL)")
	pf.StringVar(&f.logFormat, "log-format", "", "log format, json or console (env LOG_FORMAT)")

	root.AddCommand(
		newStationsCmd(),
		newMeasuresCmd(),
		newReadingsCmd(),
		newServeCmd(),
	)
	return root
}

// applyFlags lets explicitly set flags override the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	pf := cmd.Flags()
	if pf.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if pf.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if pf.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var f failure
		if errors.As(err, &f) {
			fmt.Fprintln(stderr, f.Error())
		} else {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
