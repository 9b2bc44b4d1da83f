// Command orientwire is a command-line client for the OrientDB binary
// protocol: reachability checks, database management, SQL queries,
// record CRUD, and a fixed-rate load generator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const (
	pingMaxBackoff           = 5 * time.Second
	telemetryShutdownTimeout = 5 * time.Second
)

type globalFlags struct {
	config    string
	host      string
	port      int
	user      string
	password  string
	database  string
	timeout   time.Duration
	tokenAuth bool
	otlp      string
	verbose   bool
	quiet     bool
}

var rootFlags globalFlags

func main() {
	ctx, cancel := newSignalContext()
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "orientwire: %v\n", err)
		os.Exit(1)
	}
}

func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orientwire",
		Short: "OrientDB binary-protocol client",
		Long: `orientwire talks to an OrientDB server over its native binary
protocol: check reachability, manage databases, run SQL, and work
with records from the command line.

Connection settings are resolved in order: built-in defaults, then
ORIENTWIRE_* environment variables, then the YAML file named by
--config or ORIENTWIRE_CONFIG, then these flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rootFlags.config, "config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&rootFlags.host, "host", "", "Server host (default localhost)")
	cmd.PersistentFlags().IntVar(&rootFlags.port, "port", 0, "Server binary-protocol port (default 2424)")
	cmd.PersistentFlags().StringVarP(&rootFlags.user, "user", "u", "", "Username for server or database login")
	cmd.PersistentFlags().StringVarP(&rootFlags.password, "password", "p", "", "Password for server or database login")
	cmd.PersistentFlags().StringVar(&rootFlags.database, "db", "", "Database name for database-level commands")
	cmd.PersistentFlags().DurationVar(&rootFlags.timeout, "timeout", 0, "Socket timeout applied to connect, read, and write")
	cmd.PersistentFlags().BoolVar(&rootFlags.tokenAuth, "token-auth", false, "Request token-based sessions")
	cmd.PersistentFlags().StringVar(&rootFlags.otlp, "otlp-endpoint", "", "OTLP HTTP endpoint for client metrics")
	cmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Log connection lifecycle at debug level")
	cmd.PersistentFlags().BoolVarP(&rootFlags.quiet, "quiet", "q", false, "Only log warnings and errors")

	cmd.AddCommand(
		pingCmd(),
		dbsCmd(),
		dbCmd(),
		queryCmd(),
		recordCmd(),
		benchCmd(),
		versionCmd(),
	)
	return cmd
}
