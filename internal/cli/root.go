// Package cli is the command line front end of the booking service. It
// collects the same fields the booking forms did, calls the service and
// prints the outcome as a notification or a table.
package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ahinestrog/railway/internal/booking"
	"github.com/ahinestrog/railway/internal/config"
	"github.com/ahinestrog/railway/internal/events"
	"github.com/ahinestrog/railway/internal/metrics"
)

type App struct {
	ConfigPath  string
	DataDir     string
	Stations    []string
	Driver      string
	LogLevel    string
	LogFormat   string
	MetricsFile string

	cfg      config.Config
	svc      *booking.Service
	registry *prometheus.Registry
	pub      *events.Publisher
}

func Execute(ctx context.Context) error {
	app := &App{}
	err := NewRootCmd(app).ExecuteContext(ctx)
	if cerr := app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "railway",
		Short:         "Manage trains and ticket bookings across station databases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&app.ConfigPath, "toml", "", "Path to an optional TOML configuration file")
	f.StringVar(&app.DataDir, "data-dir", "", "Directory holding the station databases")
	f.StringSliceVar(&app.Stations, "stations", nil, "Station database files, in scan order")
	f.StringVar(&app.Driver, "driver", "", "SQLite driver: sqlite (pure Go) or sqlite3 (cgo)")
	f.StringVar(&app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&app.LogFormat, "log-format", "", "Log format (console or json)")
	f.StringVar(&app.MetricsFile, "metrics-file", "", "Write prometheus metrics to this textfile on exit")

	cmd.AddCommand(NewInitCmd(app))
	cmd.AddCommand(NewAddTrainCmd(app))
	cmd.AddCommand(NewTrainsCmd(app))
	cmd.AddCommand(NewTrainCmd(app))
	cmd.AddCommand(NewBookCmd(app))
	cmd.AddCommand(NewTicketsCmd(app))
	cmd.AddCommand(NewClassesCmd(app))
	cmd.AddCommand(NewStoresCmd(app))
	cmd.AddCommand(NewAuditCmd(app))

	return cmd
}

// preRun is the PreRunE of every command that touches the stores. It is not
// hooked on the root so help, completion and classes never open, and so
// never rebuild, a station file.
func (a *App) preRun(cmd *cobra.Command, args []string) error {
	return a.setup(cmd)
}

// setup loads the configuration, applies flag overrides and initializes
// every store, once per invocation.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = a.DataDir
	}
	if flags.Changed("stations") {
		cfg.Stations = a.Stations
	}
	if flags.Changed("driver") {
		cfg.Driver = a.Driver
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.LogFormat
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.MetricsFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
		return err
	}
	a.cfg = cfg

	a.registry = prometheus.NewRegistry()
	opts := []booking.Option{
		booking.WithMetrics(metrics.New(a.registry)),
		booking.WithCacheSize(cfg.CacheSize),
	}
	if cfg.RabbitURL != "" {
		pub, err := events.NewPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ not available, continuing without events")
		} else {
			a.pub = pub
			opts = append(opts, booking.WithEvents(pub))
		}
	}

	svc, err := booking.NewService(cfg.Stores(), opts...)
	if err != nil {
		return err
	}
	log.Debug().Str("dir", cfg.DataDir).Strs("stations", cfg.Stations).Str("driver", cfg.Driver).Msg("initializing stores")
	if err := svc.Initialize(cmd.Context()); err != nil {
		return err
	}
	a.svc = svc
	return nil
}

// Close flushes metrics and drops the broker connection. It is safe to call
// when setup never ran.
func (a *App) Close() error {
	a.pub.Close()
	a.pub = nil
	if a.cfg.MetricsFile == "" || a.registry == nil {
		return nil
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
