// Package protocol defines the constants and field primitives of the OrientDB
// network binary protocol: operation codes, version gates, and the big-endian
// length-prefixed encoding every request and response payload is built from.
package protocol

// SupportedVersion is the newest protocol version this client understands.
// Servers announcing a higher version are rejected during the handshake.
const SupportedVersion int16 = 38

// DefaultMinimumVersion is the default handshake floor. Zero keeps the
// permissive behavior of older clients; deployments can raise it through
// configuration.
const DefaultMinimumVersion int16 = 0

// Version gates. A field is present on the wire only when the negotiated
// version reaches the gate.
const (
	// MinSerializedExceptionVersion governs the serialized Java exception
	// trailing every error response.
	MinSerializedExceptionVersion int16 = 19
	// MinCollectionChangesVersion governs the collection-pointer change
	// listing trailing RECORD_CREATE, RECORD_UPDATE, and TX_COMMIT
	// responses.
	MinCollectionChangesVersion int16 = 20
	// MinSerializationVersion governs the serialization-impl string in
	// CONNECT and DB_OPEN requests.
	MinSerializationVersion int16 = 22
	// MinUpdateContentVersion governs the update-content boolean in
	// RECORD_UPDATE requests.
	MinUpdateContentVersion int16 = 23
	// MinClusterShortVersion governs the compact cluster listing in the
	// DB_OPEN response; older servers append type and segment per cluster,
	// and RECORD_CREATE requests prepend a data-segment id.
	MinClusterShortVersion int16 = 24
	// MinCreateEchoVersion governs the cluster-id echo leading
	// RECORD_CREATE responses.
	MinCreateEchoVersion int16 = 26
	// MinTokenVersion governs token-session negotiation and the token echo
	// in every response header.
	MinTokenVersion int16 = 27
	// MinRecordLayoutVersion governs the field order of streamed records;
	// newer servers send type before version and content.
	MinRecordLayoutVersion int16 = 28
	// MinPushStatsVersion governs the support-push and collect-stats
	// booleans in CONNECT and DB_OPEN, and drops the database type from
	// the DB_OPEN request.
	MinPushStatsVersion int16 = 33
	// MinBackupPathVersion governs the incremental-backup path field in
	// DB_CREATE requests.
	MinBackupPathVersion int16 = 36
)

// Operation codes of the binary protocol.
const (
	OpShutdown         byte = 1
	OpConnect          byte = 2
	OpDBOpen           byte = 3
	OpDBCreate         byte = 4
	OpDBClose          byte = 5
	OpDBExists         byte = 6
	OpDBDrop           byte = 7
	OpDBSize           byte = 8
	OpDBCountRecords   byte = 9
	OpClusterAdd       byte = 10
	OpClusterDrop      byte = 11
	OpClusterCount     byte = 12
	OpClusterDataRange byte = 13
	OpRecordLoad       byte = 30
	OpRecordCreate     byte = 31
	OpRecordUpdate     byte = 32
	OpRecordDelete     byte = 33
	OpCommand          byte = 41
	OpTxCommit         byte = 60
	OpDBReload         byte = 73
	OpDBList           byte = 74
)

// Response status bytes.
const (
	StatusOK    byte = 0
	StatusError byte = 1
	StatusPush  byte = 3
)

// Serialization identifiers negotiated in CONNECT/DB_OPEN.
const (
	SerializationCSV    = "ORecordDocument2csv"
	SerializationBinary = "ORecordSerializerBinary"
)

// Java command classes accepted by REQUEST_COMMAND.
const (
	ClassQuerySync  = "com.orientechnologies.orient.core.sql.query.OSQLSynchQuery"
	ClassQueryAsync = "com.orientechnologies.orient.core.sql.query.OSQLAsynchQuery"
	ClassCommandSQL = "com.orientechnologies.orient.core.sql.OCommandSQL"
	ClassScript     = "com.orientechnologies.orient.core.command.script.OCommandScript"
	ClassGremlin    = "com.orientechnologies.orient.graph.gremlin.OCommandGremlin"
)

// Command execution modes.
const (
	ModeSync  byte = 's'
	ModeAsync byte = 'a'
)

// Record kinds as carried in record-type bytes.
const (
	RecordDocument byte = 'd'
	RecordBinary   byte = 'b'
	RecordFlat     byte = 'f'
)

// Database and storage types.
const (
	DBTypeDocument = "document"
	DBTypeGraph    = "graph"

	StoragePLocal = "plocal"
	StorageMemory = "memory"
)

// Driver identity announced in CONNECT and DB_OPEN.
const (
	DriverName    = "OrientDB Go client (orientwire)"
	DriverVersion = "1.0.0"
)

// SessionNone is the session id sent before any session is established.
const SessionNone int32 = -1
