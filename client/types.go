package client

import (
	"github.com/coachpo/orientwire/internal/cluster"
	"github.com/coachpo/orientwire/internal/message"
	"github.com/coachpo/orientwire/internal/observability"
	"github.com/coachpo/orientwire/internal/record"
	"github.com/coachpo/orientwire/internal/session"
)

// The driver's data model lives next to the wire codecs; these aliases
// re-export the pieces callers hold on to.
type (
	// Record is one database record: a document with decoded fields, or a
	// raw binary payload.
	Record = record.Record
	// RID is a record identity, cluster id plus position.
	RID = record.RID
	// Cluster pairs a data-cluster id with its name.
	Cluster = cluster.Cluster
	// Message is the request/response codec of one protocol operation.
	Message = message.Message
	// Stats is a snapshot of per-operation request counters.
	Stats = observability.OperationStatsSnapshot
)

// Result aliases for operations whose responses carry more than a scalar.
type (
	// LoadResult is a RecordLoad outcome: the record, nil when the
	// identity does not exist, plus fetch-plan prefetches.
	LoadResult = message.LoadResult
	// CreateResult is the identity and version assigned to a new record.
	CreateResult = message.CreateResult
	// CommandResult is a synchronous command's full decoded answer.
	CommandResult = message.CommandResult
	// DataRange is the inclusive record-position span of one cluster.
	DataRange = message.DataRange
	// TxResult is the identity and version bookkeeping of a committed
	// transaction batch.
	TxResult = message.TxResult
	// TxCreatedRecord maps a staged temporary identity to the real one.
	TxCreatedRecord = message.TxCreatedRecord
	// TxUpdatedRecord carries the post-commit version of an update.
	TxUpdatedRecord = message.TxUpdatedRecord
)

// NewDocument builds an empty document record of the given class.
func NewDocument(class string) *Record { return record.NewDocument(class) }

// ParseRID parses the text form of a record identity, with or without the
// leading hash.
func ParseRID(s string) (RID, error) { return record.ParseRID(s) }

// NewRID builds a record identity from its parts.
func NewRID(cluster int16, position int64) RID { return record.NewRID(cluster, position) }

func newSession(serialization string) *session.Session {
	s := session.New()
	if serialization != "" {
		s.Serialization = serialization
	}
	return s
}

// recordContent serialises a record for the wire: documents through the
// CSV codec, anything else as its raw payload.
func recordContent(rec *Record) []byte {
	if rec == nil {
		return nil
	}
	if rec.IsDocument() {
		return record.EncodeDocument(rec)
	}
	return rec.Raw
}
