package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coachpo/orientwire/internal/protocol"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print driver and protocol version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", protocol.DriverName, protocol.DriverVersion)
			fmt.Printf("binary protocol: up to version %d\n", protocol.SupportedVersion)
		},
	}
}
