package message

import (
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/record"
	"github.com/coachpo/orientwire/internal/session"
)

// recordModeSync is the mode byte for record operations that wait for the
// server's answer. This client never fires record writes blind.
const recordModeSync byte = 0

// RecordLoad fetches one record by identity, optionally pulling connected
// records through a fetch plan.
type RecordLoad struct {
	RID            record.RID
	FetchPlan      string
	IgnoreCache    bool
	LoadTombstones bool
}

// LoadResult carries the loaded record, nil when the identity does not
// exist, plus any records the fetch plan prefetched alongside it.
type LoadResult struct {
	Record     *record.Record
	Prefetched []*record.Record
}

func (*RecordLoad) Op() byte { return protocol.OpRecordLoad }

func (m *RecordLoad) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteShort(m.RID.Cluster)
	w.WriteLong(m.RID.Position)
	w.WriteString(m.FetchPlan)
	w.WriteBool(m.IgnoreCache)
	w.WriteBool(m.LoadTombstones)
	return nil
}

func (m *RecordLoad) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	status, err := r.ReadByte()
	if err != nil {
		return nil, session.Update{}, err
	}
	if status == 0 {
		return LoadResult{}, session.Update{}, nil
	}

	var (
		kind    byte
		version int32
		content []byte
	)
	if env.Protocol >= protocol.MinRecordLayoutVersion {
		if kind, err = r.ReadByte(); err != nil {
			return nil, session.Update{}, err
		}
		if version, err = r.ReadInt(); err != nil {
			return nil, session.Update{}, err
		}
		if content, err = r.ReadBytes(); err != nil {
			return nil, session.Update{}, err
		}
	} else {
		if content, err = r.ReadBytes(); err != nil {
			return nil, session.Update{}, err
		}
		if version, err = r.ReadInt(); err != nil {
			return nil, session.Update{}, err
		}
		if kind, err = r.ReadByte(); err != nil {
			return nil, session.Update{}, err
		}
	}

	rec, err := buildRecord(kind, m.RID, version, content, env)
	if err != nil {
		return nil, session.Update{}, err
	}
	prefetched, err := drainPrefetch(r, env)
	if err != nil {
		return nil, session.Update{}, err
	}
	return LoadResult{Record: rec, Prefetched: prefetched}, session.Update{}, nil
}

// RecordCreate stores a new record in a cluster.
type RecordCreate struct {
	Cluster int16
	Content []byte
	Kind    byte
}

// CreateResult is the identity and version the server assigned.
type CreateResult struct {
	RID     record.RID
	Version int32
}

func (*RecordCreate) Op() byte { return protocol.OpRecordCreate }

func (m *RecordCreate) EncodeRequest(w *protocol.Writer, env Env) error {
	if env.Protocol < protocol.MinClusterShortVersion {
		w.WriteInt(-1) // data segment, server-chosen
	}
	w.WriteShort(m.Cluster)
	w.WriteBytes(m.Content)
	w.WriteByte(m.Kind)
	w.WriteByte(recordModeSync)
	return nil
}

func (m *RecordCreate) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	cluster := m.Cluster
	var err error
	if env.Protocol >= protocol.MinCreateEchoVersion {
		if cluster, err = r.ReadShort(); err != nil {
			return nil, session.Update{}, err
		}
	}
	position, err := r.ReadLong()
	if err != nil {
		return nil, session.Update{}, err
	}
	version, err := r.ReadInt()
	if err != nil {
		return nil, session.Update{}, err
	}
	if err := drainCollectionChanges(r, env); err != nil {
		return nil, session.Update{}, err
	}
	return CreateResult{RID: record.NewRID(cluster, position), Version: version}, session.Update{}, nil
}

// RecordUpdate replaces a stored record's content, guarded by its version.
// Version -1 skips the optimistic check.
type RecordUpdate struct {
	RID     record.RID
	Content []byte
	Version int32
	Kind    byte
}

func (*RecordUpdate) Op() byte { return protocol.OpRecordUpdate }

func (m *RecordUpdate) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteShort(m.RID.Cluster)
	w.WriteLong(m.RID.Position)
	if env.Protocol >= protocol.MinUpdateContentVersion {
		w.WriteBool(true) // replace content, not increment
	}
	w.WriteBytes(m.Content)
	w.WriteInt(m.Version)
	w.WriteByte(m.Kind)
	w.WriteByte(recordModeSync)
	return nil
}

func (m *RecordUpdate) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	version, err := r.ReadInt()
	if err != nil {
		return nil, session.Update{}, err
	}
	if err := drainCollectionChanges(r, env); err != nil {
		return nil, session.Update{}, err
	}
	return version, session.Update{}, nil
}

// RecordDelete removes a stored record, guarded by its version.
type RecordDelete struct {
	RID     record.RID
	Version int32
}

func (*RecordDelete) Op() byte { return protocol.OpRecordDelete }

func (m *RecordDelete) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteShort(m.RID.Cluster)
	w.WriteLong(m.RID.Position)
	w.WriteInt(m.Version)
	w.WriteByte(recordModeSync)
	return nil
}

func (m *RecordDelete) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	deleted, err := r.ReadBool()
	return deleted, session.Update{}, err
}

// drainCollectionChanges skips the tree-collection pointer updates newer
// servers append after record writes; only Java clients use them.
func drainCollectionChanges(r *protocol.Reader, env Env) error {
	if env.Protocol < protocol.MinCollectionChangesVersion {
		return nil
	}
	count, err := r.ReadInt()
	if err != nil {
		return err
	}
	for i := int32(0); i < count; i++ {
		for j := 0; j < 4; j++ { // uuid halves, file id, page index
			if _, err := r.ReadLong(); err != nil {
				return err
			}
		}
		if _, err := r.ReadInt(); err != nil { // page offset
			return err
		}
	}
	return nil
}
