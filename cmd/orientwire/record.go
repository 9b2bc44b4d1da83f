package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/coachpo/orientwire/client"
)

func recordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Load, create, update, and delete records",
	}
	cmd.AddCommand(recordGetCmd(), recordCreateCmd(), recordUpdateCmd(), recordDeleteCmd())
	return cmd
}

func recordGetCmd() *cobra.Command {
	var fetchPlan string

	cmd := &cobra.Command{
		Use:   "get RID",
		Short: "Load one record by identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordGet(cmd, args[0], fetchPlan)
		},
	}

	cmd.Flags().StringVar(&fetchPlan, "fetch-plan", client.DefaultFetchPlan, "Fetch plan for connected records")

	return cmd
}

func recordCreateCmd() *cobra.Command {
	var class string

	cmd := &cobra.Command{
		Use:   "create CLUSTER [JSON]",
		Short: "Create a document record in a cluster",
		Long: `Create a document in the given cluster, addressed by name or id.
Fields come from the JSON argument, or from stdin when the argument
is omitted or "-".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordCreate(cmd, args, class)
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "Document class to stamp on the record")

	return cmd
}

func recordUpdateCmd() *cobra.Command {
	var (
		class   string
		version int32
	)

	cmd := &cobra.Command{
		Use:   "update RID [JSON]",
		Short: "Replace a record's content",
		Long: `Replace the record's fields with the JSON argument, or stdin when
the argument is omitted or "-". The default version -1 skips the
optimistic version check; pass --version to enforce it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordUpdate(cmd, args, class, version)
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "Document class to stamp on the record")
	cmd.Flags().Int32Var(&version, "version", -1, "Version the record must have, -1 to overwrite")

	return cmd
}

func recordDeleteCmd() *cobra.Command {
	var version int32

	cmd := &cobra.Command{
		Use:   "delete RID",
		Short: "Delete one record by identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordDelete(cmd, args[0], version)
		},
	}

	cmd.Flags().Int32Var(&version, "version", -1, "Version the record must have, -1 to force")

	return cmd
}

func runRecordGet(cmd *cobra.Command, ridText, fetchPlan string) error {
	rid, err := client.ParseRID(ridText)
	if err != nil {
		return err
	}

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

	result, err := c.RecordLoad(rid, fetchPlan)
	if err != nil {
		return err
	}
	if result.Record == nil {
		return fmt.Errorf("record %s not found", rid)
	}
	if len(result.Prefetched) > 0 {
		return printJSON(map[string]any{
			"record":     result.Record,
			"prefetched": result.Prefetched,
		})
	}
	return printJSON(result.Record)
}

func runRecordCreate(cmd *cobra.Command, args []string, class string) error {
	fields, err := decodeFields(recordBody(args))
	if err != nil {
		return err
	}

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

	clusterID, err := resolveCluster(c, args[0])
	if err != nil {
		return err
	}

	rec := client.NewDocument(class)
	rec.Fields = fields
	result, err := c.RecordCreate(clusterID, rec)
	if err != nil {
		return err
	}
	fmt.Printf("created %s (version %d)\n", result.RID, result.Version)
	return nil
}

func runRecordUpdate(cmd *cobra.Command, args []string, class string, version int32) error {
	rid, err := client.ParseRID(args[0])
	if err != nil {
		return err
	}
	fields, err := decodeFields(recordBody(args))
	if err != nil {
		return err
	}

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

	rec := client.NewDocument(class)
	rec.Fields = fields
	newVersion, err := c.RecordUpdate(rid, rec, version)
	if err != nil {
		return err
	}
	fmt.Printf("updated %s to version %d\n", rid, newVersion)
	return nil
}

func runRecordDelete(cmd *cobra.Command, ridText string, version int32) error {
	rid, err := client.ParseRID(ridText)
	if err != nil {
		return err
	}

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

	deleted, err := c.RecordDelete(rid, version)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("record %s was not deleted", rid)
	}
	fmt.Printf("deleted %s\n", rid)
	return nil
}

// recordBody returns the JSON payload of a create or update: the trailing
// argument, or stdin when it is omitted or "-".
func recordBody(args []string) io.Reader {
	if len(args) == 2 && args[1] != "-" {
		return strings.NewReader(args[1])
	}
	return os.Stdin
}

func decodeFields(body io.Reader) (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode record body: %w", err)
	}
	return fields, nil
}

// resolveCluster interprets a cluster argument as a numeric id first,
// then as a name in the open database's layout.
func resolveCluster(c *client.Client, arg string) (int16, error) {
	if id, err := strconv.ParseInt(arg, 10, 16); err == nil {
		return int16(id), nil
	}
	if id, ok := c.ClusterID(arg); ok {
		return id, nil
	}
	return 0, fmt.Errorf("unknown cluster %q", arg)
}
