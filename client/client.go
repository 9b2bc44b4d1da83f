// Package client is the public facade of the orientwire driver. A Client
// owns one socket to a server node, the session credentials the server
// issues, and the dispatcher that runs operations over the connection.
//
// Methods mirror the server's operation set one to one. Each resolves its
// message from the operation registry by name, fills the typed request,
// and hands it to the dispatcher, which serializes exchanges: the wire
// protocol is half duplex, so one request must complete before the next
// starts.
package client

import (
	"fmt"
	"sync/atomic"

	"github.com/coachpo/orientwire/config"
	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/cluster"
	"github.com/coachpo/orientwire/internal/dispatch"
	"github.com/coachpo/orientwire/internal/message"
	"github.com/coachpo/orientwire/internal/observability"
	"github.com/coachpo/orientwire/internal/transport"
)

// Client talks to one server node over the binary protocol. Construct it
// with New, authenticate with Connect or DBOpen, and release the
// connection with Close. A closed client is not reusable.
type Client struct {
	cfg      config.Settings
	sock     *transport.Socket
	disp     *dispatch.Dispatcher
	clusters *cluster.Map

	release string
	txSeq   atomic.Int32
}

// Option adjusts how a Client is assembled.
type Option func(*assembly)

type assembly struct {
	registry *dispatch.Registry
}

// RegistryOption injects a custom operation registry in place of the
// default table.
func RegistryOption(reg *dispatch.Registry) Option {
	return func(a *assembly) {
		if reg != nil {
			a.registry = reg
		}
	}
}

// New assembles a disconnected client from settings. The first operation
// dials the server and consumes its version handshake.
func New(cfg config.Settings, opts ...Option) *Client {
	a := assembly{registry: dispatch.DefaultRegistry()}
	for _, opt := range opts {
		opt(&a)
	}

	sock := transport.New(cfg.Server.Host, cfg.Server.Port,
		transport.ConnectTimeoutOption(cfg.Timeouts.Connect),
		transport.ReadTimeoutOption(cfg.Timeouts.Read),
		transport.WriteTimeoutOption(cfg.Timeouts.Write),
		transport.MinimumVersionOption(int16(cfg.MinimumProtocol)),
	)
	sess := newSession(cfg.Serialization)
	disp := dispatch.New(sock, sess, a.registry)
	if cfg.TokenAuth {
		disp.UseTokenAuth(true)
	}
	return &Client{
		cfg:      cfg,
		sock:     sock,
		disp:     disp,
		clusters: cluster.NewMap(),
	}
}

// Message resolves a protocol message by operation name without touching
// the connection. Unknown names fail with an unknown-operation error.
func (c *Client) Message(name string) (Message, error) {
	return c.disp.Resolve(name)
}

// Send runs a resolved message through the dispatcher, dialing first when
// the socket is not yet connected. Most callers want the typed operation
// methods instead; Send is the generic path for registry-driven callers.
func (c *Client) Send(name string, msg Message) (any, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}
	return c.disp.Dispatch(name, msg)
}

// SetSessionToken installs the auth token of a previously issued session,
// enabling token authentication. The next operation resumes that session
// unless the server has already handed this connection a fresher token.
func (c *Client) SetSessionToken(token []byte) {
	c.disp.SeedToken(token)
}

// SessionToken returns the auth token the next operation would present:
// the one held by the live session, or the installed fallback.
func (c *Client) SessionToken() []byte {
	return c.disp.Token()
}

// UseTokenAuth sets whether Connect and DBOpen request token-based
// sessions from the server.
func (c *Client) UseTokenAuth(on bool) {
	c.disp.UseTokenAuth(on)
}

// Dial connects the socket and consumes the server's version handshake
// without authenticating. Operations dial on demand, so Dial is only
// needed to verify reachability up front.
func (c *Client) Dial() error {
	return c.ensureConnected()
}

// Connected reports whether the socket is dialed and believed healthy.
func (c *Client) Connected() bool { return c.sock.Connected() }

// ProtocolVersion returns the negotiated protocol version, -1 before the
// handshake.
func (c *Client) ProtocolVersion() int16 { return c.sock.Version() }

// SessionID returns the server-issued session id, -1 while
// unauthenticated.
func (c *Client) SessionID() int32 { return c.disp.Session().ID }

// Database returns the name of the currently open database, empty when
// none is open.
func (c *Client) Database() string { return c.disp.Session().Database }

// ServerRelease returns the server release string reported by the last
// DBOpen, empty before one.
func (c *Client) ServerRelease() string { return c.release }

// Clusters returns a snapshot of the cluster layout of the open database.
func (c *Client) Clusters() []Cluster { return c.clusters.Clusters() }

// ClusterID resolves a cluster name, case-insensitively, against the
// layout of the open database.
func (c *Client) ClusterID(name string) (int16, bool) {
	return c.clusters.IDByName(name)
}

// Stats returns a copy of the per-operation request counters.
func (c *Client) Stats() Stats { return c.disp.Stats() }

// BytesRead returns the total bytes consumed from the server.
func (c *Client) BytesRead() int64 { return c.sock.BytesRead() }

// BytesWritten returns the total bytes sent to the server.
func (c *Client) BytesWritten() int64 { return c.sock.BytesWritten() }

// Close releases the connection. An open database is closed first so the
// server can retire the session; the socket is then torn down. A closed
// client cannot reconnect.
func (c *Client) Close() error {
	var failures []error
	if c.sock.Connected() && c.disp.Session().Database != "" {
		if err := c.DBClose(); err != nil {
			failures = append(failures, err)
		}
	}
	if err := c.sock.Close(); err != nil {
		failures = append(failures, err)
	}
	c.clusters.Replace(nil)
	c.release = ""
	if len(failures) > 0 {
		return observability.AggregateErrors("client.close", failures)
	}
	return nil
}

// ensureConnected dials lazily so a client can be constructed, and its
// operations resolved, before the server is reachable.
func (c *Client) ensureConnected() error {
	if c.sock.Connected() {
		return nil
	}
	return c.sock.Dial()
}

// prepare resolves an operation by name and returns its message as the
// concrete type the caller fills in. Resolution happens before the dial:
// an unknown name must fail without touching the connection.
func prepare[M message.Message](c *Client, name string) (M, error) {
	var zero M
	msg, err := c.disp.Resolve(name)
	if err != nil {
		return zero, err
	}
	m, ok := msg.(M)
	if !ok {
		return zero, errs.New("client.prepare", errs.CodeInvalid,
			errs.WithMessage(fmt.Sprintf("operation %q resolved to unexpected message type %T", name, msg)))
	}
	if err := c.ensureConnected(); err != nil {
		return zero, err
	}
	return m, nil
}
