// Package transport wraps a TCP stream with the exact-length framing
// discipline the binary protocol requires.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/observability"
	"github.com/coachpo/orientwire/internal/protocol"
)

const (
	// DefaultConnectTimeout bounds the TCP connect plus the handshake read.
	DefaultConnectTimeout = 30 * time.Second
	// DefaultReadTimeout bounds every wait for readability during a framed read.
	DefaultReadTimeout = 30 * time.Second
	// DefaultWriteTimeout bounds a single request write.
	DefaultWriteTimeout = 30 * time.Second
)

// options holds the configuration for a socket.
type options struct {
	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	maxVersion     int16
	minVersion     int16
}

// Option is a function that configures socket options.
type Option func(*options)

// ConnectTimeoutOption returns an Option that bounds the TCP connect and
// the handshake read.
func ConnectTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// ReadTimeoutOption returns an Option that bounds each wait for socket
// readability while filling a framed read.
func ReadTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.readTimeout = d
		}
	}
}

// WriteTimeoutOption returns an Option that bounds a request write.
func WriteTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

// MinimumVersionOption returns an Option that sets the lowest server
// protocol version the handshake accepts.
func MinimumVersionOption(v int16) Option {
	return func(o *options) {
		o.minVersion = v
	}
}

// MaximumVersionOption returns an Option that overrides the highest server
// protocol version the handshake accepts. Intended for tests.
func MaximumVersionOption(v int16) Option {
	return func(o *options) {
		o.maxVersion = v
	}
}

// Socket is a half-duplex TCP connection to one server node. It owns the
// connection identity (host, port, negotiated protocol version) and turns
// the unreliable byte stream into guaranteed-complete reads and writes.
//
// A socket serves exactly one logical caller: a request must be fully
// written before its response is read, and nothing here queues or pipelines.
// Callers sharing a socket across goroutines must serialise access
// themselves.
type Socket struct {
	mu sync.Mutex

	host      string
	port      int
	conn      net.Conn
	version   int16
	connected bool

	opts options

	id       string
	bytesIn  atomic.Int64
	bytesOut atomic.Int64
}

// New returns a disconnected socket for the given server address.
func New(host string, port int, opts ...Option) *Socket {
	o := options{
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		maxVersion:     protocol.SupportedVersion,
		minVersion:     protocol.DefaultMinimumVersion,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Socket{
		host:    host,
		port:    port,
		version: -1,
		opts:    o,
		id:      uuid.NewString(),
	}
}

// Dial opens the TCP stream and consumes the two-byte protocol version the
// server pushes before any request is possible. The socket is connected
// only after the version passes the supported window.
func (s *Socket) Dial() error {
	const op = "transport.dial"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	if s.host == "" {
		return errs.New(op, errs.CodeConnection, errs.WithMessage("socket has been closed, construct a fresh one"))
	}
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := net.DialTimeout("tcp", addr, s.opts.connectTimeout)
	if err != nil {
		return errs.New(op, errs.CodeConnection, errs.WithMessage("connect "+addr), errs.WithCause(err))
	}
	version, err := negotiate(conn, s.opts)
	if err != nil {
		_ = conn.Close()
		return err
	}
	s.conn = conn
	s.version = version
	s.connected = true
	s.bytesIn.Add(handshakeLen)
	observability.Log().Debug("socket connected",
		observability.Field{Key: "conn_id", Value: s.id},
		observability.Field{Key: "address", Value: addr},
		observability.Field{Key: "protocol_version", Value: version},
	)
	return nil
}

// ReadFull returns exactly n bytes from the stream or fails.
//
// Length-prefixed framing cannot survive a short read: one missing byte
// desynchronises every later response on the connection. The loop
// accumulates partial deliveries into a remaining-length window, arming a
// fresh read deadline before each wait. A zero-byte delivery means the
// peer closed the connection, which tears the socket down.
func (s *Socket) ReadFull(n int) ([]byte, error) {
	const op = "transport.read"
	if n < 0 {
		return nil, errs.New(op, errs.CodeProtocol, errs.WithMessage(fmt.Sprintf("negative read length %d", n)))
	}
	if n == 0 {
		return []byte{}, nil
	}
	conn, err := s.activeConn(op)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	read := 0
	for read < n {
		if err := conn.SetReadDeadline(time.Now().Add(s.opts.readTimeout)); err != nil {
			s.teardown()
			return nil, errs.New(op, errs.CodeConnection, errs.WithMessage("arm read deadline"), errs.WithCause(err))
		}
		k, rerr := conn.Read(buf[read:])
		if k > 0 {
			read += k
			s.bytesIn.Add(int64(k))
		}
		if read == n {
			break
		}
		if rerr == nil {
			continue
		}
		s.teardown()
		switch {
		case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
			return nil, errs.New(op, errs.CodeConnection, errs.WithMessage("server went down"), errs.WithCause(rerr))
		case isTimeout(rerr):
			return nil, errs.New(op, errs.CodeConnection,
				errs.WithMessage(fmt.Sprintf("no data within %s, %d of %d bytes read", s.opts.readTimeout, read, n)),
				errs.WithCause(rerr))
		default:
			return nil, errs.New(op, errs.CodeConnection,
				errs.WithMessage(fmt.Sprintf("read %d of %d bytes", read, n)), errs.WithCause(rerr))
		}
	}
	return buf, nil
}

// Write sends a request frame with a single underlying send. net.Conn
// retries partial writes internally, so a short count always arrives with
// an error; it is surfaced, not masked.
func (s *Socket) Write(p []byte) (int, error) {
	const op = "transport.write"
	conn, err := s.activeConn(op)
	if err != nil {
		return 0, err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(s.opts.writeTimeout)); err != nil {
		s.teardown()
		return 0, errs.New(op, errs.CodeConnection, errs.WithMessage("arm write deadline"), errs.WithCause(err))
	}
	n, werr := conn.Write(p)
	if n > 0 {
		s.bytesOut.Add(int64(n))
	}
	if werr != nil {
		s.teardown()
		return n, errs.New(op, errs.CodeConnection,
			errs.WithMessage(fmt.Sprintf("wrote %d of %d bytes", n, len(p))), errs.WithCause(werr))
	}
	return n, nil
}

// Close releases the stream and clears the connection identity. Closing is
// idempotent; the socket is not reusable afterwards.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.host = ""
	s.port = 0
	s.version = -1
	s.connected = false
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	observability.Log().Debug("socket closed", observability.Field{Key: "conn_id", Value: s.id})
	if err := conn.Close(); err != nil {
		return errs.New("transport.close", errs.CodeConnection, errs.WithMessage("close stream"), errs.WithCause(err))
	}
	return nil
}

// Connected reports whether the handshake has completed and the stream is
// still believed healthy.
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Version returns the negotiated protocol version, -1 before the handshake.
func (s *Socket) Version() int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// ID returns the correlation id attached to log entries for this socket.
func (s *Socket) ID() string { return s.id }

// Address returns host:port, or an empty host after Close.
func (s *Socket) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// BytesRead returns the number of payload bytes consumed from the server,
// handshake included.
func (s *Socket) BytesRead() int64 { return s.bytesIn.Load() }

// BytesWritten returns the number of request bytes sent to the server.
func (s *Socket) BytesWritten() int64 { return s.bytesOut.Load() }

// activeConn snapshots the live connection or fails when disconnected.
func (s *Socket) activeConn(op string) (net.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected || s.conn == nil {
		return nil, errs.New(op, errs.CodeConnection, errs.WithMessage("socket is not connected"))
	}
	return s.conn, nil
}

// teardown drops the stream after a terminal failure. Connection identity
// survives so the error surface can still name the peer.
func (s *Socket) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.connected = false
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

var _ protocol.Source = (*Socket)(nil)
