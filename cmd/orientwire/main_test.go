package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/orientwire/client"
	"github.com/coachpo/orientwire/config"
	"github.com/coachpo/orientwire/internal/observability"
)

func TestLoggerLevels(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := newLogger(buf, false, true)
	logger.Info("open")
	require.Empty(t, buf.String())
	logger.Warn("slow response", observability.Field{Key: "op", Value: "query"})
	require.Contains(t, buf.String(), "slow response")
	require.Contains(t, buf.String(), "query")

	buf.Reset()
	logger = newLogger(buf, true, false)
	logger.Debug("dialing", observability.Field{Key: "address", Value: "localhost:2424"})
	require.Contains(t, buf.String(), "dialing")
	require.Contains(t, buf.String(), "localhost:2424")
}

func TestCommandValueShapes(t *testing.T) {
	value, flat := commandValue(client.CommandResult{Null: true})
	require.True(t, flat)
	require.Equal(t, "null", value)

	value, flat = commandValue(client.CommandResult{Value: "3"})
	require.True(t, flat)
	require.Equal(t, "3", value)

	value, flat = commandValue(client.CommandResult{})
	require.True(t, flat)
	require.Equal(t, "ok", value)

	_, flat = commandValue(client.CommandResult{Records: []*client.Record{client.NewDocument("V")}})
	require.False(t, flat)

	_, flat = commandValue(client.CommandResult{Wrapped: true})
	require.False(t, flat)
}

func TestDecodeFields(t *testing.T) {
	fields, err := decodeFields(strings.NewReader(`{"name":"Ada","age":36}`))
	require.NoError(t, err)
	require.Equal(t, "Ada", fields["name"])

	_, err = decodeFields(strings.NewReader(`{"name":`))
	require.Error(t, err)
}

func TestRecordBodyPrefersInlineArgument(t *testing.T) {
	body, err := io.ReadAll(recordBody([]string{"person", `{"name":"Ada"}`}))
	require.NoError(t, err)
	require.Equal(t, `{"name":"Ada"}`, string(body))
}

func TestMergeBenchResultsSortsLatencies(t *testing.T) {
	merged := mergeBenchResults([]benchResult{
		{ops: 2, failures: 1, latencies: []time.Duration{3 * time.Millisecond, time.Millisecond}},
		{ops: 1, latencies: []time.Duration{2 * time.Millisecond}},
	})
	require.Equal(t, 3, merged.ops)
	require.Equal(t, 1, merged.failures)
	require.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond}, merged.latencies)
}

func TestLatencyQuantile(t *testing.T) {
	require.Equal(t, time.Duration(0), latencyQuantile(nil, 0.95))

	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.Equal(t, time.Duration(1), latencyQuantile(sorted, 0))
	require.Equal(t, time.Duration(9), latencyQuantile(sorted, 0.95))
	require.Equal(t, time.Duration(10), latencyQuantile(sorted, 1))
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "512 B", formatBytes(512))
	require.Equal(t, "1.5 KB", formatBytes(1536))
	require.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}

func TestFlagOverridesMergeIntoConfig(t *testing.T) {
	saved := rootFlags
	t.Cleanup(func() { rootFlags = saved })

	root := newRootCmd()
	require.NoError(t, root.PersistentFlags().Set("host", "db.internal"))
	require.NoError(t, root.PersistentFlags().Set("port", "3434"))
	require.NoError(t, root.PersistentFlags().Set("user", "admin"))
	require.NoError(t, root.PersistentFlags().Set("db", "inventory"))
	require.NoError(t, root.PersistentFlags().Set("timeout", "5s"))
	require.NoError(t, root.PersistentFlags().Set("token-auth", "true"))

	cfg := config.Apply(config.Default(), flagOverrides(root)...)
	require.Equal(t, "db.internal", cfg.Server.Host)
	require.Equal(t, 3434, cfg.Server.Port)
	require.Equal(t, "admin", cfg.Credentials.Username)
	require.Equal(t, "inventory", cfg.Database.Name)
	require.Equal(t, 5*time.Second, cfg.Timeouts.Read)
	require.True(t, cfg.TokenAuth)
}

func TestFlagOverridesLeaveDefaultsAlone(t *testing.T) {
	saved := rootFlags
	t.Cleanup(func() { rootFlags = saved })
	rootFlags = globalFlags{}

	root := newRootCmd()
	cfg := config.Apply(config.Default(), flagOverrides(root)...)
	require.Equal(t, config.Default(), cfg)
}
