package message

import (
	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/record"
	"github.com/coachpo/orientwire/internal/session"
)

// TxAction is the kind of one staged operation inside a commit batch.
type TxAction byte

const (
	TxUpdate TxAction = 1
	TxDelete TxAction = 2
	TxCreate TxAction = 3
)

// TxEntry is one staged record operation. Creates carry a temporary
// negative position the server maps to a real identity on commit.
type TxEntry struct {
	Action  TxAction
	RID     record.RID
	Kind    byte
	Content []byte
	Version int32
}

// TxCommit applies a batch of staged record operations atomically.
type TxCommit struct {
	TxID    int32
	UseLog  bool
	Entries []TxEntry
}

// TxCreatedRecord maps a client-side temporary identity to the identity
// the server allocated.
type TxCreatedRecord struct {
	Temp record.RID
	Real record.RID
}

// TxUpdatedRecord carries the post-commit version of an updated record.
type TxUpdatedRecord struct {
	RID     record.RID
	Version int32
}

// TxResult is the identity and version bookkeeping of a committed batch.
type TxResult struct {
	Created []TxCreatedRecord
	Updated []TxUpdatedRecord
}

func (*TxCommit) Op() byte { return protocol.OpTxCommit }

func (m *TxCommit) EncodeRequest(w *protocol.Writer, env Env) error {
	const op = "message.tx_commit"
	if len(m.Entries) == 0 {
		return errs.New(op, errs.CodeInvalid, errs.WithMessage("transaction has no staged operations"))
	}

	w.WriteInt(m.TxID)
	w.WriteBool(m.UseLog)
	for _, entry := range m.Entries {
		kind := entry.Kind
		if kind == 0 {
			kind = protocol.RecordDocument
		}
		w.WriteByte(1) // entry follows
		w.WriteByte(byte(entry.Action))
		w.WriteShort(entry.RID.Cluster)
		w.WriteLong(entry.RID.Position)
		w.WriteByte(kind)
		switch entry.Action {
		case TxCreate:
			w.WriteBytes(entry.Content)
		case TxUpdate:
			w.WriteInt(entry.Version)
			w.WriteBytes(entry.Content)
			if env.Protocol >= protocol.MinUpdateContentVersion {
				w.WriteBool(true) // replace content
			}
		case TxDelete:
			w.WriteInt(entry.Version)
		default:
			return errs.New(op, errs.CodeInvalid,
				errs.WithMessage("unknown transaction action"), errs.WithVersion(int(entry.Action)))
		}
	}
	w.WriteByte(0)    // no more entries
	w.WriteString("") // no remote index changes
	return nil
}

func (m *TxCommit) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	var result TxResult

	createdCount, err := r.ReadInt()
	if err != nil {
		return nil, session.Update{}, err
	}
	for i := int32(0); i < createdCount; i++ {
		var mapping TxCreatedRecord
		if mapping.Temp.Cluster, err = r.ReadShort(); err != nil {
			return nil, session.Update{}, err
		}
		if mapping.Temp.Position, err = r.ReadLong(); err != nil {
			return nil, session.Update{}, err
		}
		if mapping.Real.Cluster, err = r.ReadShort(); err != nil {
			return nil, session.Update{}, err
		}
		if mapping.Real.Position, err = r.ReadLong(); err != nil {
			return nil, session.Update{}, err
		}
		result.Created = append(result.Created, mapping)
	}

	updatedCount, err := r.ReadInt()
	if err != nil {
		return nil, session.Update{}, err
	}
	for i := int32(0); i < updatedCount; i++ {
		var bump TxUpdatedRecord
		if bump.RID.Cluster, err = r.ReadShort(); err != nil {
			return nil, session.Update{}, err
		}
		if bump.RID.Position, err = r.ReadLong(); err != nil {
			return nil, session.Update{}, err
		}
		if bump.Version, err = r.ReadInt(); err != nil {
			return nil, session.Update{}, err
		}
		result.Updated = append(result.Updated, bump)
	}

	if err := drainCollectionChanges(r, env); err != nil {
		return nil, session.Update{}, err
	}

	var upd session.Update
	upd.SetTransaction(false)
	return result, upd, nil
}
