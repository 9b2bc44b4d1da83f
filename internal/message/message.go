// Package message implements one typed request/response codec per protocol
// operation. Messages never perform I/O and never touch session state: they
// encode into a frame writer, decode from a frame reader, and hand session
// mutations back as an update record for the dispatcher to apply.
package message

import (
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/session"
)

// Env carries the per-exchange context the dispatcher injects: the session
// identity, the authoritative auth token, and the negotiated protocol
// version that gates optional wire fields.
type Env struct {
	SessionID     int32
	Token         []byte
	TokenAuth     bool
	Serialization string
	Protocol      int16
}

// TokensActive reports whether token fields travel on the wire for this
// exchange.
func (e Env) TokensActive() bool {
	return e.TokenAuth && e.Protocol >= protocol.MinTokenVersion
}

// Message is one operation's request encoder and response decoder.
// DecodeResponse sees the reader positioned after the response envelope
// (status, session id, token echo) and returns the typed result plus any
// session mutations the payload implies.
type Message interface {
	Op() byte
	EncodeRequest(w *protocol.Writer, env Env) error
	DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error)
}

// OneWay marks messages whose operation sends no response frame. The
// dispatcher writes the request, applies the returned update, and stops.
type OneWay interface {
	OneWayUpdate() session.Update
}
