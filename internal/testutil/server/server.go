// Package servertest runs a scripted wire-level server for client tests.
// It speaks just enough of the binary protocol to drive a real socket:
// it pushes the two-byte version frame on accept, then walks a fixed
// list of exchanges, capturing each request and replying with canned
// response bytes.
package servertest

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/coachpo/orientwire/internal/protocol"
)

// Exchange scripts one request/response cycle.
type Exchange struct {
	// Respond builds the response frame. Nil sends nothing, which is how
	// one-way requests like DB_CLOSE are scripted.
	Respond func(w *protocol.Writer)
	// CloseAfter drops the connection once the response bytes, if any,
	// are on the wire. Pair it with a truncated Respond to simulate a
	// server dying mid-frame.
	CloseAfter bool
}

// Server owns the listener and the scripted exchanges of one connection.
type Server struct {
	tb      testing.TB
	version int16
	lis     net.Listener
	done    chan struct{}

	mu       sync.Mutex
	requests [][]byte
}

// Start listens on a loopback port and serves one connection: the version
// frame first, then the scripted exchanges in order. The listener is torn
// down with the test.
func Start(tb testing.TB, version int16, script ...Exchange) *Server {
	tb.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create listener: %v", err)
	}
	s := &Server{
		tb:      tb,
		version: version,
		lis:     lis,
		done:    make(chan struct{}),
	}
	tb.Cleanup(s.Close)

	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		s.serve(conn, script)
	}()
	return s
}

// Host returns the loopback address the server listens on.
func (s *Server) Host() string { return "127.0.0.1" }

// Port returns the ephemeral port the server listens on.
func (s *Server) Port() int {
	return s.lis.Addr().(*net.TCPAddr).Port
}

// Requests returns a copy of every request frame captured so far, in
// arrival order.
func (s *Server) Requests() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.requests))
	for i, req := range s.requests {
		out[i] = append([]byte(nil), req...)
	}
	return out
}

// Request returns the i-th captured request frame, waiting briefly for it
// to arrive. One-way requests land after the client call returns, so the
// wait absorbs that gap.
func (s *Server) Request(i int) []byte {
	s.tb.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		if i < len(s.requests) {
			req := append([]byte(nil), s.requests[i]...)
			s.mu.Unlock()
			return req
		}
		n := len(s.requests)
		s.mu.Unlock()
		if time.Now().After(deadline) {
			s.tb.Fatalf("request %d not captured, only %d arrived", i, n)
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Close stops the listener and releases the held connection. Safe to call
// more than once; Start registers it as a test cleanup.
func (s *Server) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	_ = s.lis.Close()
}

func (s *Server) serve(conn net.Conn, script []Exchange) {
	var hello [2]byte
	binary.BigEndian.PutUint16(hello[:], uint16(s.version))
	if _, err := conn.Write(hello[:]); err != nil {
		return
	}
	for _, step := range script {
		req, err := readFrame(conn)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		if step.Respond != nil {
			w := protocol.NewWriter()
			step.Respond(w)
			if _, err := conn.Write(w.Bytes()); err != nil {
				return
			}
		}
		if step.CloseAfter {
			return
		}
	}
	// Script exhausted. Hold the connection open so trailing client reads
	// block instead of racing a close.
	<-s.done
}

// readFrame drains one request off the stream. The client sends each
// request with a single write and then blocks on the response, so the
// frame is complete once the stream goes idle.
func readFrame(conn net.Conn) ([]byte, error) {
	buf := make([]byte, 4096)
	_ = conn.SetReadDeadline(time.Time{})
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	frame := append([]byte(nil), buf[:n]...)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Millisecond))
		n, err = conn.Read(buf)
		if n > 0 {
			frame = append(frame, buf[:n]...)
		}
		if err != nil {
			break
		}
	}
	_ = conn.SetReadDeadline(time.Time{})
	return frame, nil
}
