package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"

	"github.com/coachpo/orientwire/client"
	"github.com/coachpo/orientwire/internal/observability"
)

func pingCmd() *cobra.Command {
	var (
		wait    bool
		waitFor time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the server answers the protocol handshake",
		Long: `Dial the server and read the protocol version it pushes on accept.
No credentials are needed; a successful ping proves the address speaks
the binary protocol at a version this client supports.

With --wait the dial is retried with exponential backoff until the
server answers or --wait-for elapses, for gating scripts on startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(cmd, wait, waitFor)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Retry with exponential backoff until the server answers")
	cmd.Flags().DurationVar(&waitFor, "wait-for", 2*time.Minute, "Give up waiting after this long")

	return cmd
}

func runPing(cmd *cobra.Command, wait bool, waitFor time.Duration) error {
	ctx := cmd.Context()
	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	c := client.New(a.cfg)
	defer func() { _ = c.Close() }()

	start := time.Now()
	if err := dialServer(ctx, c, wait, waitFor); err != nil {
		return err
	}
	fmt.Printf("%s answered in %s (protocol version %d)\n",
		a.cfg.Server.Address(), time.Since(start).Round(time.Millisecond), c.ProtocolVersion())
	return nil
}

func dialServer(ctx context.Context, c *client.Client, wait bool, waitFor time.Duration) error {
	if !wait {
		return c.Dial()
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = pingMaxBackoff

	deadline := time.Now().Add(waitFor)
	for {
		err := c.Dial()
		if err == nil {
			return nil
		}
		sleep := policy.NextBackOff()
		if sleep == backoff.Stop {
			sleep = pingMaxBackoff
		}
		if time.Now().Add(sleep).After(deadline) {
			return fmt.Errorf("server not ready after %s: %w", waitFor, err)
		}
		observability.Log().Info("server not ready, retrying",
			observability.Field{Key: "retry_in", Value: sleep.String()})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}
