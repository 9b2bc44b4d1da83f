package client

import (
	"testing"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/protocol"
	servertest "github.com/coachpo/orientwire/internal/testutil/server"
)

// openResponse scripts a DB_OPEN success frame issuing the given session
// id and cluster layout.
func openResponse(sid int32, clusters []Cluster) func(w *protocol.Writer) {
	return func(w *protocol.Writer) {
		w.WriteByte(protocol.StatusOK)
		w.WriteInt(-1)
		w.WriteInt(sid)
		w.WriteBytes(nil) // no token issued
		w.WriteShort(int16(len(clusters)))
		for _, cl := range clusters {
			w.WriteString(cl.Name)
			w.WriteShort(cl.ID)
		}
		w.WriteBytes(nil) // cluster config
		w.WriteString("3.0.34 GA")
	}
}

func TestDBOpenInstallsClusterLayout(t *testing.T) {
	layout := []Cluster{
		{ID: 0, Name: "internal"},
		{ID: 9, Name: "person"},
		{ID: 10, Name: "city"},
	}
	c, _ := newTestClient(t, servertest.Exchange{Respond: openResponse(31, layout)})

	clusters, err := c.DBOpen("demo", "admin", "admin")
	if err != nil {
		t.Fatalf("DBOpen failed: %v", err)
	}
	if len(clusters) != 3 {
		t.Fatalf("returned %d clusters, want 3", len(clusters))
	}
	if c.SessionID() != 31 {
		t.Fatalf("session id = %d, want 31", c.SessionID())
	}
	if c.Database() != "demo" {
		t.Fatalf("open database = %q, want demo", c.Database())
	}
	if c.ServerRelease() != "3.0.34 GA" {
		t.Fatalf("server release = %q", c.ServerRelease())
	}
	id, ok := c.ClusterID("Person")
	if !ok || id != 9 {
		t.Fatalf("ClusterID(Person) = %d, %v; want 9, true", id, ok)
	}
	if got := len(c.Clusters()); got != 3 {
		t.Fatalf("layout holds %d clusters, want 3", got)
	}
}

func TestDBOpenFallsBackToConfiguredIdentity(t *testing.T) {
	c, srv := newTestClient(t, servertest.Exchange{Respond: openResponse(8, nil)})
	c.cfg.Database.Name = "ledger"
	c.cfg.Credentials.Username = "admin"
	c.cfg.Credentials.Password = "s3cret"

	if _, err := c.DBOpen("", "", ""); err != nil {
		t.Fatalf("DBOpen failed: %v", err)
	}
	if c.Database() != "ledger" {
		t.Fatalf("open database = %q, want ledger", c.Database())
	}

	op, _, r := readHeader(t, srv.Request(0))
	if op != protocol.OpDBOpen {
		t.Fatalf("request op = %d, want %d", op, protocol.OpDBOpen)
	}
	// Skip the driver preamble: name, version, protocol, client id,
	// serialization, then the token, push, and stats flags.
	mustString(t, r)
	mustString(t, r)
	mustShort(t, r)
	mustString(t, r)
	mustString(t, r)
	for i := 0; i < 3; i++ {
		if _, err := r.ReadBool(); err != nil {
			t.Fatalf("read negotiation flag: %v", err)
		}
	}
	if got := mustString(t, r); got != "ledger" {
		t.Fatalf("database on the wire = %q, want ledger", got)
	}
	if got := mustString(t, r); got != "admin" {
		t.Fatalf("username on the wire = %q, want admin", got)
	}
	if got := mustString(t, r); got != "s3cret" {
		t.Fatalf("password on the wire = %q, want s3cret", got)
	}
}

func TestDBCloseFinishesSession(t *testing.T) {
	c, srv := newTestClient(t,
		servertest.Exchange{Respond: openResponse(40, []Cluster{{ID: 3, Name: "v"}})},
		servertest.Exchange{}, // one-way DB_CLOSE
	)

	if _, err := c.DBOpen("demo", "admin", "admin"); err != nil {
		t.Fatalf("DBOpen failed: %v", err)
	}
	if err := c.DBClose(); err != nil {
		t.Fatalf("DBClose failed: %v", err)
	}
	if c.Connected() {
		t.Fatal("connection must be finished after DBClose")
	}
	if c.SessionID() != protocol.SessionNone {
		t.Fatalf("session id = %d, want %d", c.SessionID(), protocol.SessionNone)
	}
	if c.Database() != "" {
		t.Fatalf("database = %q, want cleared", c.Database())
	}
	if got := len(c.Clusters()); got != 0 {
		t.Fatalf("layout holds %d clusters, want 0", got)
	}
	if op, _, _ := readHeader(t, srv.Request(1)); op != protocol.OpDBClose {
		t.Fatalf("request op = %d, want %d", op, protocol.OpDBClose)
	}

	// A second close is a no-op on the dead connection.
	if err := c.DBClose(); err != nil {
		t.Fatalf("second DBClose failed: %v", err)
	}
}

func TestDBReloadReplacesLayout(t *testing.T) {
	c, _ := newTestClient(t,
		servertest.Exchange{Respond: openResponse(6, []Cluster{{ID: 1, Name: "old"}})},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(6)
			w.WriteShort(2)
			w.WriteString("fresh")
			w.WriteShort(4)
			w.WriteString("other")
			w.WriteShort(5)
		}},
	)

	if _, err := c.DBOpen("demo", "admin", "admin"); err != nil {
		t.Fatalf("DBOpen failed: %v", err)
	}
	clusters, err := c.DBReload()
	if err != nil {
		t.Fatalf("DBReload failed: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("reload returned %d clusters, want 2", len(clusters))
	}
	if _, ok := c.ClusterID("old"); ok {
		t.Fatal("stale cluster survived the reload")
	}
	if id, ok := c.ClusterID("fresh"); !ok || id != 4 {
		t.Fatalf("ClusterID(fresh) = %d, %v; want 4, true", id, ok)
	}
}

func TestServerLevelDatabaseOps(t *testing.T) {
	c, srv := newTestClient(t,
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(-1)
			w.WriteInt(3)
			w.WriteBytes(nil)
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(3)
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(3)
			w.WriteBool(true)
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(3)
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(3)
			w.WriteBytes([]byte(`databases:{"demo":"plocal:/data/demo"}`))
		}},
	)

	if _, err := c.Connect("root", "secret"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := c.DBCreate("demo", "", ""); err != nil {
		t.Fatalf("DBCreate failed: %v", err)
	}
	exists, err := c.DBExists("demo", "")
	if err != nil || !exists {
		t.Fatalf("DBExists = %v, %v; want true, nil", exists, err)
	}
	if err := c.DBDrop("demo", ""); err != nil {
		t.Fatalf("DBDrop failed: %v", err)
	}
	dbs, err := c.DBList()
	if err != nil {
		t.Fatalf("DBList failed: %v", err)
	}
	if dbs["demo"] != "plocal:/data/demo" {
		t.Fatalf("DBList = %v", dbs)
	}

	// Empty type and storage fall back to the configured defaults.
	op, _, r := readHeader(t, srv.Request(1))
	if op != protocol.OpDBCreate {
		t.Fatalf("request op = %d, want %d", op, protocol.OpDBCreate)
	}
	if got := mustString(t, r); got != "demo" {
		t.Fatalf("database = %q, want demo", got)
	}
	if got := mustString(t, r); got != protocol.DBTypeDocument {
		t.Fatalf("type = %q, want %q", got, protocol.DBTypeDocument)
	}
	if got := mustString(t, r); got != protocol.StoragePLocal {
		t.Fatalf("storage = %q, want %q", got, protocol.StoragePLocal)
	}
}

func TestClusterOperations(t *testing.T) {
	c, srv := newTestClient(t,
		servertest.Exchange{Respond: openResponse(9, []Cluster{{ID: 7, Name: "person"}})},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(9)
			w.WriteShort(11)
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(9)
			w.WriteLong(250)
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(9)
			w.WriteLong(0)
			w.WriteLong(41)
		}},
		servertest.Exchange{Respond: func(w *protocol.Writer) {
			w.WriteByte(protocol.StatusOK)
			w.WriteInt(9)
			w.WriteBool(true)
		}},
	)

	if _, err := c.DBOpen("demo", "admin", "admin"); err != nil {
		t.Fatalf("DBOpen failed: %v", err)
	}

	id, err := c.ClusterAdd("archive")
	if err != nil || id != 11 {
		t.Fatalf("ClusterAdd = %d, %v; want 11, nil", id, err)
	}
	if got, ok := c.ClusterID("archive"); !ok || got != 11 {
		t.Fatalf("new cluster missing from the layout: %d, %v", got, ok)
	}

	count, err := c.ClusterCountByName("person")
	if err != nil || count != 250 {
		t.Fatalf("ClusterCountByName = %d, %v; want 250, nil", count, err)
	}

	span, err := c.ClusterDataRange(7)
	if err != nil {
		t.Fatalf("ClusterDataRange failed: %v", err)
	}
	if span.Begin != 0 || span.End != 41 {
		t.Fatalf("data range = %+v, want {0 41}", span)
	}

	dropped, err := c.ClusterDrop(11)
	if err != nil || !dropped {
		t.Fatalf("ClusterDrop = %v, %v; want true, nil", dropped, err)
	}
	if _, ok := c.ClusterID("archive"); ok {
		t.Fatal("dropped cluster still in the layout")
	}

	// An unknown name fails before anything reaches the wire.
	sent := len(srv.Requests())
	if _, err := c.ClusterCountByName("ghost"); errs.CodeOf(err) != errs.CodeInvalid {
		t.Fatalf("err = %v, want invalid request", err)
	}
	if got := len(srv.Requests()); got != sent {
		t.Fatalf("unknown cluster name sent a request: %d -> %d", sent, got)
	}
}
