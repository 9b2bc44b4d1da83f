package message

import "github.com/coachpo/orientwire/internal/protocol"

// Entry binds one operation name to its wire code and message constructor.
type Entry struct {
	Name string
	Op   byte
	New  func() Message
}

// Entries returns the complete operation table. Command variants share one
// wire operation and differ only in the command class they preset.
func Entries() []Entry {
	return []Entry{
		{Name: "connect", Op: protocol.OpConnect, New: func() Message { return new(Connect) }},
		{Name: "shutdown", Op: protocol.OpShutdown, New: func() Message { return new(Shutdown) }},

		{Name: "db_open", Op: protocol.OpDBOpen, New: func() Message { return new(DBOpen) }},
		{Name: "db_close", Op: protocol.OpDBClose, New: func() Message { return new(DBClose) }},
		{Name: "db_create", Op: protocol.OpDBCreate, New: func() Message { return new(DBCreate) }},
		{Name: "db_exists", Op: protocol.OpDBExists, New: func() Message { return new(DBExists) }},
		{Name: "db_drop", Op: protocol.OpDBDrop, New: func() Message { return new(DBDrop) }},
		{Name: "db_size", Op: protocol.OpDBSize, New: func() Message { return new(DBSize) }},
		{Name: "db_count_records", Op: protocol.OpDBCountRecords, New: func() Message { return new(DBCountRecords) }},
		{Name: "db_reload", Op: protocol.OpDBReload, New: func() Message { return new(DBReload) }},
		{Name: "db_list", Op: protocol.OpDBList, New: func() Message { return new(DBList) }},

		{Name: "data_cluster_add", Op: protocol.OpClusterAdd, New: func() Message { return new(ClusterAdd) }},
		{Name: "data_cluster_drop", Op: protocol.OpClusterDrop, New: func() Message { return new(ClusterDrop) }},
		{Name: "data_cluster_count", Op: protocol.OpClusterCount, New: func() Message { return new(ClusterCount) }},
		{Name: "data_cluster_data_range", Op: protocol.OpClusterDataRange, New: func() Message { return new(ClusterDataRange) }},

		{Name: "record_load", Op: protocol.OpRecordLoad, New: func() Message { return new(RecordLoad) }},
		{Name: "record_create", Op: protocol.OpRecordCreate, New: func() Message { return new(RecordCreate) }},
		{Name: "record_update", Op: protocol.OpRecordUpdate, New: func() Message { return new(RecordUpdate) }},
		{Name: "record_delete", Op: protocol.OpRecordDelete, New: func() Message { return new(RecordDelete) }},

		{Name: "command", Op: protocol.OpCommand, New: func() Message { return &Command{Class: protocol.ClassCommandSQL} }},
		{Name: "query", Op: protocol.OpCommand, New: func() Message { return &Command{Class: protocol.ClassQuerySync} }},
		{Name: "query_async", Op: protocol.OpCommand, New: func() Message { return &Command{Class: protocol.ClassQueryAsync} }},
		{Name: "batch", Op: protocol.OpCommand, New: func() Message { return &Command{Class: protocol.ClassScript} }},
		{Name: "gremlin", Op: protocol.OpCommand, New: func() Message { return &Command{Class: protocol.ClassGremlin} }},

		{Name: "tx_commit", Op: protocol.OpTxCommit, New: func() Message { return new(TxCommit) }},
	}
}
