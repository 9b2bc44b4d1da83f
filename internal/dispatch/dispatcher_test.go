package dispatch

import (
	"bytes"
	"testing"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/message"
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/session"
)

// fakeConn feeds a scripted response frame and records everything the
// dispatcher writes.
type fakeConn struct {
	version  int16
	response *protocol.SliceSource
	wrote    bytes.Buffer
	writes   int
	reads    int
}

func newFakeConn(version int16, response func(w *protocol.Writer)) *fakeConn {
	w := protocol.NewWriter()
	if response != nil {
		response(w)
	}
	return &fakeConn{version: version, response: protocol.NewSliceSource(w.Bytes())}
}

func (c *fakeConn) ReadFull(n int) ([]byte, error) {
	c.reads++
	return c.response.ReadFull(n)
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.writes++
	c.wrote.Write(p)
	return len(p), nil
}

func (c *fakeConn) Version() int16 { return c.version }

func TestResolveUnknownOperationLeavesConnAlone(t *testing.T) {
	conn := newFakeConn(38, nil)
	d := New(conn, session.New(), DefaultRegistry())

	_, err := d.Resolve("defragment")
	if !errs.IsUnknownOperation(err) {
		t.Fatalf("err = %v, want unknown operation", err)
	}
	if conn.reads != 0 || conn.writes != 0 {
		t.Fatalf("resolution touched the connection: %d reads, %d writes", conn.reads, conn.writes)
	}
}

func TestResolveKnownOperation(t *testing.T) {
	d := New(newFakeConn(38, nil), session.New(), DefaultRegistry())
	msg, err := d.Resolve("db_size")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if msg.Op() != protocol.OpDBSize {
		t.Fatalf("op = %d, want %d", msg.Op(), protocol.OpDBSize)
	}
}

func TestDispatchRunsFullExchange(t *testing.T) {
	conn := newFakeConn(38, func(w *protocol.Writer) {
		w.WriteByte(protocol.StatusOK)
		w.WriteInt(9)
		w.WriteLong(1024)
	})
	sess := session.New()
	sess.ID = 9
	d := New(conn, sess, DefaultRegistry())

	result, err := d.Dispatch("db_size", &message.DBSize{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result != int64(1024) {
		t.Fatalf("result = %v", result)
	}

	if conn.writes != 1 {
		t.Fatalf("writes = %d, want a single request frame", conn.writes)
	}
	req := protocol.NewReader(protocol.NewSliceSource(conn.wrote.Bytes()))
	op, _ := req.ReadByte()
	sid, _ := req.ReadInt()
	if op != protocol.OpDBSize || sid != 9 {
		t.Fatalf("request header = op %d session %d", op, sid)
	}

	stats := d.Stats()
	if stats.Requests["db_size"] != 1 || stats.Failures["db_size"] != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestDispatchBindsSessionTokenOverFallback(t *testing.T) {
	conn := newFakeConn(38, func(w *protocol.Writer) {
		w.WriteByte(protocol.StatusOK)
		w.WriteInt(9)
		w.WriteBytes(nil) // no token renewal
		w.WriteLong(1)
	})
	sess := session.New()
	sess.ID = 9
	sess.SetToken([]byte("session-token"))

	d := New(conn, sess, DefaultRegistry())
	d.SeedToken([]byte("fallback-token"))

	if _, err := d.Dispatch("db_size", &message.DBSize{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	req := protocol.NewReader(protocol.NewSliceSource(conn.wrote.Bytes()))
	req.ReadByte() // op
	req.ReadInt()  // session id
	token, err := req.ReadBytes()
	if err != nil {
		t.Fatalf("read token: %v", err)
	}
	if string(token) != "session-token" {
		t.Fatalf("bound token = %q, want the session-held one", token)
	}
}

func TestDispatchUsesFallbackTokenWhenSessionHasNone(t *testing.T) {
	conn := newFakeConn(38, func(w *protocol.Writer) {
		w.WriteByte(protocol.StatusOK)
		w.WriteInt(9)
		w.WriteBytes(nil)
		w.WriteLong(1)
	})
	sess := session.New()
	sess.ID = 9

	d := New(conn, sess, DefaultRegistry())
	d.SeedToken([]byte("resumed-token"))

	if _, err := d.Dispatch("db_size", &message.DBSize{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	req := protocol.NewReader(protocol.NewSliceSource(conn.wrote.Bytes()))
	req.ReadByte()
	req.ReadInt()
	token, _ := req.ReadBytes()
	if string(token) != "resumed-token" {
		t.Fatalf("bound token = %q, want the seeded fallback", token)
	}
	if got := d.Token(); string(got) != "resumed-token" {
		t.Fatalf("Token() = %q", got)
	}
}

func TestDispatchAppliesTokenRenewal(t *testing.T) {
	conn := newFakeConn(38, func(w *protocol.Writer) {
		w.WriteByte(protocol.StatusOK)
		w.WriteInt(9)
		w.WriteBytes([]byte("rotated"))
		w.WriteLong(1)
	})
	sess := session.New()
	sess.ID = 9
	sess.SetToken([]byte("original"))

	d := New(conn, sess, DefaultRegistry())
	d.UseTokenAuth(true)

	if _, err := d.Dispatch("db_size", &message.DBSize{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if string(sess.Token) != "rotated" {
		t.Fatalf("session token = %q, want renewal applied", sess.Token)
	}
}

func TestDispatchOneWaySkipsResponse(t *testing.T) {
	conn := newFakeConn(38, nil)
	sess := session.New()
	sess.ID = 31
	sess.SetToken([]byte("tok"))
	sess.MarkOpen("demo")

	d := New(conn, sess, DefaultRegistry())
	result, err := d.Dispatch("db_close", &message.DBClose{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result != nil {
		t.Fatalf("result = %v, want none", result)
	}
	if conn.writes != 1 || conn.reads != 0 {
		t.Fatalf("conn saw %d writes, %d reads; close must not wait for a response", conn.writes, conn.reads)
	}
	if sess.Authenticated() || sess.Database != "" {
		t.Fatalf("session = %+v, want reset", sess)
	}
}

func TestDispatchSurfacesServerError(t *testing.T) {
	conn := newFakeConn(38, func(w *protocol.Writer) {
		w.WriteByte(protocol.StatusError)
		w.WriteInt(9)
		w.WriteBool(true)
		w.WriteString("com.orientechnologies.orient.core.exception.OCommandExecutionException")
		w.WriteString("Cluster not found")
		w.WriteBool(false)
		w.WriteBytes(nil)
	})
	sess := session.New()
	sess.ID = 9

	d := New(conn, sess, DefaultRegistry())
	_, err := d.Dispatch("db_size", &message.DBSize{})
	if !errs.IsServer(err) {
		t.Fatalf("err = %v, want server error", err)
	}

	stats := d.Stats()
	if stats.Failures["db_size"] != 1 {
		t.Fatalf("failures = %+v", stats.Failures)
	}
	if sess.ID != 9 {
		t.Fatal("server error must not disturb the session")
	}
}

func TestDispatchEncodeErrorSkipsWrite(t *testing.T) {
	conn := newFakeConn(38, nil)
	d := New(conn, session.New(), DefaultRegistry())

	msg, err := d.Resolve("query_async")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	msg.(*message.Command).Text = "select from Person"

	_, err = d.Dispatch("query_async", msg)
	if !errs.HasCode(err, errs.CodeInvalid) {
		t.Fatalf("err = %v, want invalid request", err)
	}
	if conn.writes != 0 {
		t.Fatal("a request that failed to encode must not reach the wire")
	}
}

func TestRegistryNamesSortedAndComplete(t *testing.T) {
	reg := DefaultRegistry()
	names := reg.Names()
	if len(names) != reg.Len() {
		t.Fatalf("names = %d, len = %d", len(names), reg.Len())
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted at %q", names[i])
		}
	}
}
