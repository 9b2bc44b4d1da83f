package message

import (
	"testing"

	"github.com/coachpo/orientwire/internal/protocol"
)

func TestEntriesAreConsistent(t *testing.T) {
	entries := Entries()
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if seen[entry.Name] {
			t.Fatalf("operation %q registered twice", entry.Name)
		}
		seen[entry.Name] = true

		m := entry.New()
		if m == nil {
			t.Fatalf("operation %q has a nil constructor result", entry.Name)
		}
		if m.Op() != entry.Op {
			t.Fatalf("operation %q: message op %d, table op %d", entry.Name, m.Op(), entry.Op)
		}
	}

	for _, name := range []string{
		"connect", "shutdown", "db_open", "db_close", "db_create", "db_exists",
		"db_drop", "db_size", "db_count_records", "db_reload", "db_list",
		"data_cluster_add", "data_cluster_drop", "data_cluster_count",
		"data_cluster_data_range", "record_load", "record_create",
		"record_update", "record_delete", "command", "query", "query_async",
		"batch", "gremlin", "tx_commit",
	} {
		if !seen[name] {
			t.Fatalf("operation %q missing from the table", name)
		}
	}
}

func TestCommandVariantsPresetClasses(t *testing.T) {
	classes := map[string]string{
		"command":     protocol.ClassCommandSQL,
		"query":       protocol.ClassQuerySync,
		"query_async": protocol.ClassQueryAsync,
		"batch":       protocol.ClassScript,
		"gremlin":     protocol.ClassGremlin,
	}
	for _, entry := range Entries() {
		want, ok := classes[entry.Name]
		if !ok {
			continue
		}
		cmd, ok := entry.New().(*Command)
		if !ok {
			t.Fatalf("operation %q did not construct a command", entry.Name)
		}
		if cmd.Class != want {
			t.Fatalf("operation %q class = %q, want %q", entry.Name, cmd.Class, want)
		}
	}
}
