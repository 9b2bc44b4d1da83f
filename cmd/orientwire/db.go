package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func dbsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dbs",
		Short: "List the databases the server hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBList(cmd)
		},
	}
}

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Create, drop, and inspect databases",
	}
	cmd.AddCommand(dbCreateCmd(), dbDropCmd(), dbExistsCmd())
	return cmd
}

func dbCreateCmd() *cobra.Command {
	var (
		dbType  string
		storage string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a database on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBCreate(cmd, args[0], dbType, storage)
		},
	}

	cmd.Flags().StringVar(&dbType, "type", "", "Database type: document or graph (default document)")
	cmd.Flags().StringVar(&storage, "storage", "", "Storage backend: plocal or memory (default plocal)")

	return cmd
}

func dbDropCmd() *cobra.Command {
	var storage string

	cmd := &cobra.Command{
		Use:   "drop NAME",
		Short: "Delete a database from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBDrop(cmd, args[0], storage)
		},
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage backend the database lives in (default plocal)")

	return cmd
}

func dbExistsCmd() *cobra.Command {
	var storage string

	cmd := &cobra.Command{
		Use:   "exists NAME",
		Short: "Report whether a database is present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBExists(cmd, args[0], storage)
		},
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage backend to check (default plocal)")

	return cmd
}

func runDBList(cmd *cobra.Command) error {
	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	c, err := serverClient(a)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	dbs, err := c.DBList()
	if err != nil {
		return err
	}
	return printJSON(dbs)
}

func runDBCreate(cmd *cobra.Command, name, dbType, storage string) error {
	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	c, err := serverClient(a)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.DBCreate(name, dbType, storage); err != nil {
		return err
	}
	fmt.Printf("created database %s\n", name)
	return nil
}

func runDBDrop(cmd *cobra.Command, name, storage string) error {
	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	c, err := serverClient(a)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.DBDrop(name, storage); err != nil {
		return err
	}
	fmt.Printf("dropped database %s\n", name)
	return nil
}

func runDBExists(cmd *cobra.Command, name, storage string) error {
	a, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	c, err := serverClient(a)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	exists, err := c.DBExists(name, storage)
	if err != nil {
		return err
	}
	fmt.Println(exists)
	return nil
}
