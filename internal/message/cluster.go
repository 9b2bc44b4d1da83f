package message

import (
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/session"
)

// ClusterAdd creates a data cluster. ID -1 lets the server pick one.
type ClusterAdd struct {
	Name string
	ID   int16
}

func (*ClusterAdd) Op() byte { return protocol.OpClusterAdd }

func (m *ClusterAdd) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteString(m.Name)
	w.WriteShort(m.ID)
	return nil
}

func (m *ClusterAdd) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	id, err := r.ReadShort()
	return id, session.Update{}, err
}

// ClusterDrop removes a data cluster by id.
type ClusterDrop struct {
	ID int16
}

func (*ClusterDrop) Op() byte { return protocol.OpClusterDrop }

func (m *ClusterDrop) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteShort(m.ID)
	return nil
}

func (m *ClusterDrop) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	removed, err := r.ReadBool()
	return removed, session.Update{}, err
}

// ClusterCount counts records across the given clusters, optionally
// including tombstoned entries.
type ClusterCount struct {
	IDs             []int16
	CountTombstones bool
}

func (*ClusterCount) Op() byte { return protocol.OpClusterCount }

func (m *ClusterCount) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteShort(int16(len(m.IDs)))
	for _, id := range m.IDs {
		w.WriteShort(id)
	}
	w.WriteBool(m.CountTombstones)
	return nil
}

func (m *ClusterCount) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	count, err := r.ReadLong()
	return count, session.Update{}, err
}

// ClusterDataRange reads the begin and end record positions of a cluster.
type ClusterDataRange struct {
	ID int16
}

// DataRange is the inclusive position span of one cluster.
type DataRange struct {
	Begin int64
	End   int64
}

func (*ClusterDataRange) Op() byte { return protocol.OpClusterDataRange }

func (m *ClusterDataRange) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteShort(m.ID)
	return nil
}

func (m *ClusterDataRange) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	begin, err := r.ReadLong()
	if err != nil {
		return nil, session.Update{}, err
	}
	end, err := r.ReadLong()
	if err != nil {
		return nil, session.Update{}, err
	}
	return DataRange{Begin: begin, End: end}, session.Update{}, nil
}
