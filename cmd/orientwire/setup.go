package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/coachpo/orientwire/client"
	"github.com/coachpo/orientwire/config"
	"github.com/coachpo/orientwire/internal/observability"
	"github.com/coachpo/orientwire/lib/telemetry"
)

// app holds everything a command needs beyond its own flags: the merged
// configuration and the telemetry teardown.
type app struct {
	cfg           config.Settings
	stopTelemetry func(context.Context) error
}

// setup merges configuration sources, installs the console logger, and
// starts the metric pipeline. Callers must defer app.shutdown.
func setup(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(ctx, rootFlags.config)
	if err != nil {
		return nil, err
	}
	cfg = config.Apply(cfg, flagOverrides(cmd)...)

	observability.SetLogger(newLogger(os.Stderr, rootFlags.verbose, rootFlags.quiet))

	_, stopTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}
	return &app{cfg: cfg, stopTelemetry: stopTelemetry}, nil
}

// flagOverrides turns the global flags into configuration options. Unset
// flags are zero values, which the options ignore; token auth is a
// tri-state, so it only applies when the flag was given.
func flagOverrides(cmd *cobra.Command) []config.Option {
	opts := []config.Option{
		config.WithAddress(rootFlags.host, rootFlags.port),
		config.WithCredentials(rootFlags.user, rootFlags.password),
		config.WithDatabase(rootFlags.database, "", ""),
		config.WithTimeouts(rootFlags.timeout, rootFlags.timeout, rootFlags.timeout),
		config.WithTelemetry(rootFlags.otlp, ""),
	}
	if cmd.Root().PersistentFlags().Changed("token-auth") {
		opts = append(opts, config.WithTokenAuth(rootFlags.tokenAuth))
	}
	return opts
}

func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := a.stopTelemetry(ctx); err != nil {
		observability.Log().Warn("telemetry shutdown",
			observability.Field{Key: "error", Value: err.Error()})
	}
}

// serverClient returns a client authenticated at server level, for
// database management operations.
func serverClient(a *app) (*client.Client, error) {
	c := client.New(a.cfg)
	if _, err := c.Connect(a.cfg.Credentials.Username, a.cfg.Credentials.Password); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// databaseClient returns a client with the configured database open.
func databaseClient(a *app) (*client.Client, error) {
	if a.cfg.Database.Name == "" {
		return nil, fmt.Errorf("database name required (--db or ORIENTWIRE_DB)")
	}
	c := client.New(a.cfg)
	if _, err := c.DBOpen(a.cfg.Database.Name, a.cfg.Credentials.Username, a.cfg.Credentials.Password); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
