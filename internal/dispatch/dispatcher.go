package dispatch

import (
	"sync"
	"time"

	"github.com/coachpo/orientwire/internal/message"
	"github.com/coachpo/orientwire/internal/observability"
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/session"
)

// Conn is the transport surface the dispatcher drives: exact-length
// framed reads, one write per request, and the negotiated version.
type Conn interface {
	protocol.Source
	Write(p []byte) (int, error)
	Version() int16
}

// Dispatcher owns the request/response cycle of one connection. The
// protocol is half duplex, so exchanges are serialized: a request is
// fully written and its response fully read before the next begins.
// Session updates decoded from responses are applied here, centrally.
type Dispatcher struct {
	mu    sync.Mutex
	conn  Conn
	sess  *session.Session
	reg   *Registry
	stats *observability.OperationStats

	tokenAuth bool
	fallback  []byte
}

// New binds a dispatcher to a connection, its session, and the operation
// registry.
func New(conn Conn, sess *session.Session, reg *Registry) *Dispatcher {
	return &Dispatcher{
		conn:  conn,
		sess:  sess,
		reg:   reg,
		stats: observability.NewOperationStats(),
	}
}

// Session exposes the session the dispatcher mutates. Callers read it
// between exchanges; it is not safe against a concurrent Dispatch.
func (d *Dispatcher) Session() *session.Session { return d.sess }

// Stats returns a copy of the per-operation counters.
func (d *Dispatcher) Stats() observability.OperationStatsSnapshot {
	return d.stats.Snapshot()
}

// UseTokenAuth sets whether handshake operations request token-based
// sessions from the server.
func (d *Dispatcher) UseTokenAuth(on bool) {
	d.mu.Lock()
	d.tokenAuth = on
	d.mu.Unlock()
}

// SeedToken installs a fallback token, enabling token auth, so a client
// can resume a session issued earlier. A token held by the live session
// still takes precedence.
func (d *Dispatcher) SeedToken(token []byte) {
	d.mu.Lock()
	d.fallback = token
	d.tokenAuth = true
	d.mu.Unlock()
}

// Token returns the token the next exchange would carry.
func (d *Dispatcher) Token() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess.HasToken() {
		return d.sess.Token
	}
	return d.fallback
}

// Resolve returns a fresh message for the named operation without
// touching the connection.
func (d *Dispatcher) Resolve(name string) (message.Message, error) {
	return d.reg.Resolve(name)
}

// Dispatch runs one exchange. The name keys the per-operation counters
// and logs; the message does the frame work. Any transport or protocol
// failure is returned unchanged.
func (d *Dispatcher) Dispatch(name string, msg message.Message) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	result, err := d.exchange(msg)
	elapsedMs := time.Since(start).Milliseconds()

	labels := map[string]string{"operation": name}
	d.stats.RecordRequest(name, elapsedMs)
	observability.Telemetry().IncCounter("orientwire_requests_total", 1, labels)
	observability.Telemetry().ObserveHistogram("orientwire_request_duration_ms", float64(elapsedMs), labels)
	if err != nil {
		d.stats.IncrementFailures(name)
		observability.Telemetry().IncCounter("orientwire_request_failures_total", 1, labels)
		observability.Log().Error("operation failed",
			observability.Field{Key: "operation", Value: name},
			observability.Field{Key: "error", Value: err.Error()},
		)
		return nil, err
	}
	observability.Log().Debug("operation complete",
		observability.Field{Key: "operation", Value: name},
		observability.Field{Key: "elapsed_ms", Value: elapsedMs},
	)
	return result, nil
}

func (d *Dispatcher) exchange(msg message.Message) (any, error) {
	env := d.env()

	w := protocol.NewWriter()
	message.EncodeRequestHeader(w, msg.Op(), env)
	if err := msg.EncodeRequest(w, env); err != nil {
		return nil, err
	}
	if _, err := d.conn.Write(w.Bytes()); err != nil {
		return nil, err
	}

	if oneWay, ok := msg.(message.OneWay); ok {
		d.sess.Apply(oneWay.OneWayUpdate())
		return nil, nil
	}

	r := protocol.NewReader(d.conn)
	headerUpd, err := message.DecodeResponseHeader(r, msg.Op(), env)
	if err != nil {
		return nil, err
	}
	result, payloadUpd, err := msg.DecodeResponse(r, env)
	if err != nil {
		return nil, err
	}

	// Header first: a payload reset (DB_OPEN) must win over the token
	// renewal echoed alongside it.
	d.sess.Apply(headerUpd)
	d.sess.Apply(payloadUpd)
	return result, nil
}

// env snapshots the exchange context. The token held by the session
// supersedes the seeded fallback.
func (d *Dispatcher) env() message.Env {
	token := d.fallback
	if d.sess.HasToken() {
		token = d.sess.Token
	}
	return message.Env{
		SessionID:     d.sess.ID,
		Token:         token,
		TokenAuth:     d.tokenAuth,
		Serialization: d.sess.Serialization,
		Protocol:      d.conn.Version(),
	}
}
