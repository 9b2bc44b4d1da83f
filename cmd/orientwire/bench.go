package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/coachpo/orientwire/client"
)

func benchCmd() *cobra.Command {
	var (
		workers   int
		opsPerSec float64
		duration  time.Duration
		statement string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Drive a fixed-rate query load against the server",
		Long: `Open one connection per worker and run the statement in a loop,
throttled to the target rate across all workers. Reports throughput,
latency distribution, and wire volume when the run ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, workers, opsPerSec, duration, statement)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Concurrent connections")
	cmd.Flags().Float64Var(&opsPerSec, "rate", 100, "Target operations per second across all workers")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 10*time.Second, "How long to run")
	cmd.Flags().StringVar(&statement, "statement", "SELECT FROM OUser", "Statement each operation runs")

	return cmd
}

func runBench(cmd *cobra.Command, workers int, opsPerSec float64, duration time.Duration, statement string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	if workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", workers)
	}
	if opsPerSec <= 0 {
		return fmt.Errorf("rate must be positive, got %g", opsPerSec)
	}

	clients := make([]*client.Client, 0, workers)
	defer func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}()
	for i := 0; i < workers; i++ {
		c, err := databaseClient(a)
		if err != nil {
			return fmt.Errorf("open connection %d: %w", i+1, err)
		}
		clients = append(clients, c)
	}

	runCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(opsPerSec), workers)
	results := make([]benchResult, workers)
	start := time.Now()

	var wg conc.WaitGroup
	for i, c := range clients {
		wg.Go(func() {
			results[i] = benchWorker(runCtx, c, limiter, statement)
		})
	}
	wg.Wait()
	elapsed := time.Since(start)

	var bytesIn, bytesOut int64
	for _, c := range clients {
		bytesIn += c.BytesRead()
		bytesOut += c.BytesWritten()
	}

	printBenchSummary(mergeBenchResults(results), benchRun{
		workers:   workers,
		target:    opsPerSec,
		statement: statement,
		elapsed:   elapsed,
		bytesIn:   bytesIn,
		bytesOut:  bytesOut,
	})
	return nil
}

type benchResult struct {
	ops       int
	failures  int
	latencies []time.Duration
}

type benchRun struct {
	workers   int
	target    float64
	statement string
	elapsed   time.Duration
	bytesIn   int64
	bytesOut  int64
}

// benchWorker loops until the run context expires. A worker whose
// connection dies stops early; every surviving request is timed whether
// it succeeded or not.
func benchWorker(ctx context.Context, c *client.Client, limiter *rate.Limiter, statement string) benchResult {
	var result benchResult
	for {
		if err := limiter.Wait(ctx); err != nil {
			return result
		}
		begin := time.Now()
		_, err := c.Query(statement, client.LimitOption(1))
		result.latencies = append(result.latencies, time.Since(begin))
		result.ops++
		if err != nil {
			result.failures++
			if !c.Connected() {
				return result
			}
		}
	}
}

func mergeBenchResults(results []benchResult) benchResult {
	var merged benchResult
	for _, r := range results {
		merged.ops += r.ops
		merged.failures += r.failures
		merged.latencies = append(merged.latencies, r.latencies...)
	}
	sort.Slice(merged.latencies, func(i, j int) bool {
		return merged.latencies[i] < merged.latencies[j]
	})
	return merged
}

// latencyQuantile reads a quantile from latencies sorted ascending.
func latencyQuantile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}

func printBenchSummary(total benchResult, run benchRun) {
	fmt.Printf("statement:     %s\n", run.statement)
	fmt.Printf("workers:       %d\n", run.workers)
	fmt.Printf("target rate:   %.1f op/s\n", run.target)
	fmt.Printf("elapsed:       %s\n", run.elapsed.Round(time.Millisecond))
	fmt.Printf("operations:    %d (%d failed)\n", total.ops, total.failures)
	if run.elapsed > 0 {
		fmt.Printf("achieved rate: %.1f op/s\n", float64(total.ops)/run.elapsed.Seconds())
	}
	if n := len(total.latencies); n > 0 {
		var sum time.Duration
		for _, d := range total.latencies {
			sum += d
		}
		fmt.Printf("latency:       min %s  mean %s  p95 %s  max %s\n",
			total.latencies[0].Round(time.Microsecond),
			(sum / time.Duration(n)).Round(time.Microsecond),
			latencyQuantile(total.latencies, 0.95).Round(time.Microsecond),
			total.latencies[n-1].Round(time.Microsecond))
	}
	fmt.Printf("wire:          %s in, %s out\n", formatBytes(run.bytesIn), formatBytes(run.bytesOut))
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
