package client

import (
	"github.com/coachpo/orientwire/internal/message"
	"github.com/coachpo/orientwire/internal/session"
)

// Tx stages record operations client-side and commits them as one atomic
// batch. Staged creates carry temporary identities, cluster -1 with
// positions counting down from -2; Commit returns the mapping to the real
// identities the server assigned. A Tx belongs to the client that began
// it and is not safe for concurrent use.
type Tx struct {
	c       *Client
	id      int32
	entries []message.TxEntry
	nextPos int64
}

// TxBegin opens a transaction batch. Nothing touches the wire until
// Commit.
func (c *Client) TxBegin() *Tx {
	var upd session.Update
	upd.SetTransaction(true)
	c.disp.Session().Apply(upd)
	return &Tx{
		c:       c,
		id:      c.txSeq.Add(1),
		nextPos: -2,
	}
}

// Create stages a new record and returns its temporary identity, valid
// only inside this batch. The identity is also written onto the record so
// staged updates and deletes can reference it.
func (t *Tx) Create(rec *Record) RID {
	temp := RID{Cluster: -1, Position: t.nextPos}
	t.nextPos--
	rec.RID = temp
	t.entries = append(t.entries, message.TxEntry{
		Action:  message.TxCreate,
		RID:     temp,
		Kind:    recordKind(rec),
		Content: recordContent(rec),
	})
	return temp
}

// Update stages a content replacement for a stored record, guarded by the
// given version; -1 skips the optimistic check.
func (t *Tx) Update(rid RID, rec *Record, version int32) {
	t.entries = append(t.entries, message.TxEntry{
		Action:  message.TxUpdate,
		RID:     rid,
		Kind:    recordKind(rec),
		Content: recordContent(rec),
		Version: version,
	})
}

// Delete stages a record removal, guarded by the given version; -1 skips
// the optimistic check.
func (t *Tx) Delete(rid RID, version int32) {
	t.entries = append(t.entries, message.TxEntry{
		Action:  message.TxDelete,
		RID:     rid,
		Version: version,
	})
}

// Pending returns the number of staged operations.
func (t *Tx) Pending() int { return len(t.entries) }

// Commit sends the batch as one atomic exchange. The result maps every
// temporary identity to the real one and carries the post-commit versions
// of updated records. The staged state is consumed; committing an empty
// batch fails without touching the wire.
func (t *Tx) Commit() (TxResult, error) {
	msg, err := prepare[*message.TxCommit](t.c, "tx_commit")
	if err != nil {
		return TxResult{}, err
	}
	msg.TxID = t.id
	msg.UseLog = true
	msg.Entries = t.entries
	res, err := t.c.disp.Dispatch("tx_commit", msg)
	if err != nil {
		return TxResult{}, err
	}
	t.entries = nil
	return res.(message.TxResult), nil
}

// Rollback discards the staged operations. Nothing was sent, so there is
// nothing to undo server-side.
func (t *Tx) Rollback() {
	t.entries = nil
	var upd session.Update
	upd.SetTransaction(false)
	t.c.disp.Session().Apply(upd)
}
