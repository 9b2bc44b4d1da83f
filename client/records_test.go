package client

import (
	"bytes"
	"testing"

	"github.com/coachpo/orientwire/internal/protocol"
	servertest "github.com/coachpo/orientwire/internal/testutil/server"
)

func TestRecordLifecycle(t *testing.T) {
	c, srv := newTestClient(t,
		servertest.Exchange{Respond: openResponse(20, []Cluster{{ID: 9, Name: "person"}})},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(20)
			w.WriteShort(9)
			w.WriteLong(0)
			w.WriteInt(1)
			w.WriteInt(0) // collection changes
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(20)
			w.WriteByte(1) // record follows
			w.WriteByte(protocol.RecordDocument)
			w.WriteInt(1)
			w.WriteBytes([]byte(`Person@name:"Ada"`))
			w.WriteByte(0) // end of prefetch stream
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(20)
			w.WriteInt(2)
			w.WriteInt(0) // collection changes
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(20)
			w.WriteBool(true)
		}},
	)

	if _, err := c.DBOpen("demo", "admin", "admin"); err != nil {
		t.Fatalf("DBOpen failed: %v", err)
	}

	doc := NewDocument("Person").Set("name", "Ada")
	created, err := c.RecordCreate(9, doc)
	if err != nil {
		t.Fatalf("RecordCreate failed: %v", err)
	}
	if created.RID != NewRID(9, 0) || created.Version != 1 {
		t.Fatalf("created = %+v, want #9:0 v1", created)
	}
	if doc.RID != created.RID || doc.Version != 1 {
		t.Fatalf("record not updated in place: %+v", doc)
	}

	op, _, r := readHeader(t, srv.Request(1))
	if op != protocol.OpRecordCreate {
		t.Fatalf("request op = %d, want %d", op, protocol.OpRecordCreate)
	}
	if got := mustShort(t, r); got != 9 {
		t.Fatalf("target cluster = %d, want 9", got)
	}
	if got := mustBytes(t, r); !bytes.Equal(got, []byte(`Person@name:"Ada"`)) {
		t.Fatalf("content on the wire = %q", got)
	}

	loaded, err := c.RecordLoad(created.RID, "")
	if err != nil {
		t.Fatalf("RecordLoad failed: %v", err)
	}
	if loaded.Record == nil {
		t.Fatal("loaded record is nil")
	}
	if loaded.Record.Class != "Person" || loaded.Record.Fields["name"] != "Ada" {
		t.Fatalf("loaded record = %+v", loaded.Record)
	}
	if loaded.Record.RID != created.RID {
		t.Fatalf("loaded identity = %s, want %s", loaded.Record.RID, created.RID)
	}

	doc.Set("name", "Eve")
	next, err := c.RecordUpdate(created.RID, doc, 1)
	if err != nil {
		t.Fatalf("RecordUpdate failed: %v", err)
	}
	if next != 2 || doc.Version != 2 {
		t.Fatalf("version after update = %d (record %d), want 2", next, doc.Version)
	}

	deleted, err := c.RecordDelete(created.RID, 2)
	if err != nil || !deleted {
		t.Fatalf("RecordDelete = %v, %v; want true, nil", deleted, err)
	}
}

func TestRecordLoadMissingIdentity(t *testing.T) {
	c, _ := newTestClient(t,
		servertest.Exchange{Respond: openResponse(4, nil)},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(4)
			w.WriteByte(0) // no record
		}},
	)

	if _, err := c.DBOpen("demo", "admin", "admin"); err != nil {
		t.Fatalf("DBOpen failed: %v", err)
	}
	res, err := c.RecordLoad(NewRID(9, 99), "")
	if err != nil {
		t.Fatalf("RecordLoad failed: %v", err)
	}
	if res.Record != nil {
		t.Fatalf("record = %+v, want nil for a missing identity", res.Record)
	}
	if len(res.Prefetched) != 0 {
		t.Fatalf("prefetched %d records, want 0", len(res.Prefetched))
	}
}
