package message

import (
	"github.com/coachpo/orientwire/internal/cluster"
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/record"
	"github.com/coachpo/orientwire/internal/session"
)

// DBOpen authenticates against one database and opens it, returning the
// session identity and the database's cluster layout.
type DBOpen struct {
	Database string
	Type     string
	Username string
	Password string
	ClientID string
}

// OpenResult carries the issued session identity and the cluster layout of
// the opened database.
type OpenResult struct {
	SessionID     int32
	Token         []byte
	Clusters      []cluster.Cluster
	ClusterConfig []byte
	Release       string
}

func (*DBOpen) Op() byte { return protocol.OpDBOpen }

func (m *DBOpen) EncodeRequest(w *protocol.Writer, env Env) error {
	writeDriverPreamble(w, m.ClientID, env)
	w.WriteString(m.Database)
	if env.Protocol < protocol.MinPushStatsVersion {
		w.WriteString(m.Type)
	}
	w.WriteString(m.Username)
	w.WriteString(m.Password)
	return nil
}

func (m *DBOpen) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	var upd session.Update
	upd.MarkReset()

	sid, err := r.ReadInt()
	if err != nil {
		return nil, upd, err
	}
	result := OpenResult{SessionID: sid}
	upd.SetSession(sid)

	if env.Protocol >= protocol.MinTokenVersion {
		token, err := r.ReadBytes()
		if err != nil {
			return nil, upd, err
		}
		if len(token) > 0 {
			result.Token = token
			upd.SetToken(token)
		}
	}

	clusters, err := readClusters(r, env)
	if err != nil {
		return nil, upd, err
	}
	result.Clusters = clusters

	if result.ClusterConfig, err = r.ReadBytes(); err != nil {
		return nil, upd, err
	}
	if result.Release, err = r.ReadString(); err != nil {
		return nil, upd, err
	}

	upd.SetDatabase(m.Database)
	return result, upd, nil
}

// DBClose releases the open database and ends the session. The server
// sends no reply; the connection is done once the request is written.
type DBClose struct{}

func (*DBClose) Op() byte { return protocol.OpDBClose }

func (m *DBClose) EncodeRequest(w *protocol.Writer, env Env) error { return nil }

func (m *DBClose) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	return nil, session.Update{}, nil
}

// OneWayUpdate resets the session once the close request has been written.
func (m *DBClose) OneWayUpdate() session.Update {
	var upd session.Update
	upd.MarkReset()
	return upd
}

// DBCreate provisions a new database on the server.
type DBCreate struct {
	Database string
	Type     string
	Storage  string
}

func (*DBCreate) Op() byte { return protocol.OpDBCreate }

func (m *DBCreate) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteString(m.Database)
	w.WriteString(m.Type)
	w.WriteString(m.Storage)
	if env.Protocol >= protocol.MinBackupPathVersion {
		w.WriteNullString() // no incremental-backup source
	}
	return nil
}

func (m *DBCreate) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	return nil, session.Update{}, nil
}

// DBExists asks whether a database is present in the given storage.
type DBExists struct {
	Database string
	Storage  string
}

func (*DBExists) Op() byte { return protocol.OpDBExists }

func (m *DBExists) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteString(m.Database)
	w.WriteString(m.Storage)
	return nil
}

func (m *DBExists) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	exists, err := r.ReadBool()
	return exists, session.Update{}, err
}

// DBDrop deletes a database from the given storage.
type DBDrop struct {
	Database string
	Storage  string
}

func (*DBDrop) Op() byte { return protocol.OpDBDrop }

func (m *DBDrop) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteString(m.Database)
	w.WriteString(m.Storage)
	return nil
}

func (m *DBDrop) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	return nil, session.Update{}, nil
}

// DBSize reads the size of the open database in bytes.
type DBSize struct{}

func (*DBSize) Op() byte { return protocol.OpDBSize }

func (m *DBSize) EncodeRequest(w *protocol.Writer, env Env) error { return nil }

func (m *DBSize) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	size, err := r.ReadLong()
	return size, session.Update{}, err
}

// DBCountRecords counts the records of the open database.
type DBCountRecords struct{}

func (*DBCountRecords) Op() byte { return protocol.OpDBCountRecords }

func (m *DBCountRecords) EncodeRequest(w *protocol.Writer, env Env) error { return nil }

func (m *DBCountRecords) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	count, err := r.ReadLong()
	return count, session.Update{}, err
}

// DBReload refreshes the cluster layout of the open database.
type DBReload struct{}

// ReloadResult carries the refreshed cluster layout.
type ReloadResult struct {
	Clusters []cluster.Cluster
}

func (*DBReload) Op() byte { return protocol.OpDBReload }

func (m *DBReload) EncodeRequest(w *protocol.Writer, env Env) error { return nil }

func (m *DBReload) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	clusters, err := readClusters(r, env)
	if err != nil {
		return nil, session.Update{}, err
	}
	return ReloadResult{Clusters: clusters}, session.Update{}, nil
}

// DBList enumerates the databases the server hosts.
type DBList struct{}

// DatabasesResult maps database names to their storage locations.
type DatabasesResult struct {
	Databases map[string]string
}

func (*DBList) Op() byte { return protocol.OpDBList }

func (m *DBList) EncodeRequest(w *protocol.Writer, env Env) error { return nil }

func (m *DBList) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	payload, err := r.ReadBytes()
	if err != nil {
		return nil, session.Update{}, err
	}
	doc, err := record.DecodeDocument(payload)
	if err != nil {
		return nil, session.Update{}, err
	}
	result := DatabasesResult{Databases: make(map[string]string)}
	if listed, ok := doc.Fields["databases"].(map[string]any); ok {
		for name, location := range listed {
			if path, ok := location.(string); ok {
				result.Databases[name] = path
			}
		}
	}
	return result, session.Update{}, nil
}

// readClusters decodes the cluster listing shared by DB_OPEN and DB_RELOAD
// responses.
func readClusters(r *protocol.Reader, env Env) ([]cluster.Cluster, error) {
	count, err := r.ReadShort()
	if err != nil {
		return nil, err
	}
	clusters := make([]cluster.Cluster, 0, count)
	for i := int16(0); i < count; i++ {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		id, err := r.ReadShort()
		if err != nil {
			return nil, err
		}
		if env.Protocol < protocol.MinClusterShortVersion {
			if _, err := r.ReadString(); err != nil { // cluster type
				return nil, err
			}
			if _, err := r.ReadShort(); err != nil { // data segment
				return nil, err
			}
		}
		clusters = append(clusters, cluster.Cluster{ID: id, Name: name})
	}
	return clusters, nil
}
