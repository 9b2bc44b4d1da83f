package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coachpo/orientwire/client"
)

func queryCmd() *cobra.Command {
	var (
		limit     int32
		fetchPlan string
		execute   bool
	)

	cmd := &cobra.Command{
		Use:   "query TEXT",
		Short: "Run a SQL statement against the configured database",
		Long: `Run an idempotent SQL query and print the selected records as JSON.

With --execute the statement goes through the command path instead,
which the server requires for writes and DDL; flat results (counts,
null) print as plain text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], limit, fetchPlan, execute)
		},
	}

	cmd.Flags().Int32Var(&limit, "limit", client.DefaultLimit, "Maximum records to return, -1 for no cap")
	cmd.Flags().StringVar(&fetchPlan, "fetch-plan", client.DefaultFetchPlan, "Fetch plan for connected records")
	cmd.Flags().BoolVar(&execute, "execute", false, "Run as a command instead of an idempotent query")

	return cmd
}

func runQuery(cmd *cobra.Command, text string, limit int32, fetchPlan string, execute bool) error {
	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	c, err := databaseClient(a)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	opts := []client.CommandOption{client.LimitOption(limit), client.FetchPlanOption(fetchPlan)}

	if execute {
		result, err := c.Command(text, opts...)
		if err != nil {
			return err
		}
		if value, flat := commandValue(result); flat {
			fmt.Println(value)
			return nil
		}
		return printJSON(result.Records)
	}

	records, err := c.Query(text, opts...)
	if err != nil {
		return err
	}
	return printJSON(records)
}

// commandValue renders the flat outcomes of a command. Record-shaped
// outcomes report false so the caller can emit JSON instead.
func commandValue(result client.CommandResult) (string, bool) {
	switch {
	case result.Null:
		return "null", true
	case result.Records != nil || result.Wrapped:
		return "", false
	case result.Value != "":
		return result.Value, true
	default:
		return "ok", true
	}
}
