// Package session carries the cross-request state every message reads and
// successful authentication responses replace.
package session

import "github.com/coachpo/orientwire/internal/protocol"

// Session is the per-connection authentication and serialization state.
// Exactly one session is active per socket; it is owned by a single logical
// caller, like the socket it pairs with, and performs no internal locking.
type Session struct {
	// ID is the server-issued session id, -1 while unauthenticated.
	ID int32
	// Token is the opaque auth token, empty until the server issues one.
	Token []byte
	// Database names the currently open database, empty when none.
	Database string
	// Serialization is the record serialization the connection negotiated.
	Serialization string
	// InTransaction reports whether a client-side transaction batch is open.
	InTransaction bool
}

// New returns an unauthenticated session using CSV document serialization.
func New() *Session {
	return &Session{
		ID:            protocol.SessionNone,
		Serialization: protocol.SerializationCSV,
	}
}

// Authenticated reports whether the server has issued a session id.
func (s *Session) Authenticated() bool { return s.ID != protocol.SessionNone }

// HasToken reports whether a non-empty auth token is held.
func (s *Session) HasToken() bool { return len(s.Token) > 0 }

// SetToken replaces the held auth token.
func (s *Session) SetToken(token []byte) { s.Token = token }

// MarkOpen records the database the session now has open.
func (s *Session) MarkOpen(database string) { s.Database = database }

// MarkClosed clears the open-database marker.
func (s *Session) MarkClosed() { s.Database = "" }

// Reset returns the session to the unauthenticated state, keeping the
// negotiated serialization.
func (s *Session) Reset() {
	s.ID = protocol.SessionNone
	s.Token = nil
	s.Database = ""
	s.InTransaction = false
}

// Update is a record of session mutations decoded from one response.
// Messages never touch the session directly; they return an Update and the
// dispatcher applies it after a successful exchange.
type Update struct {
	setID    bool
	id       int32
	setToken bool
	token    []byte
	setDB    bool
	database string
	setTx    bool
	inTx     bool
	reset    bool
}

// SetSession records a new server-issued session id.
func (u *Update) SetSession(id int32) {
	u.setID = true
	u.id = id
}

// SetToken records a token replacement. An empty token clears the held one.
func (u *Update) SetToken(token []byte) {
	u.setToken = true
	u.token = token
}

// SetDatabase records which database the exchange opened or closed.
func (u *Update) SetDatabase(name string) {
	u.setDB = true
	u.database = name
}

// SetTransaction records the in-transaction flag.
func (u *Update) SetTransaction(open bool) {
	u.setTx = true
	u.inTx = open
}

// MarkReset records a full return to the unauthenticated state.
func (u *Update) MarkReset() { u.reset = true }

// Empty reports whether the update carries no mutations.
func (u Update) Empty() bool {
	return !u.setID && !u.setToken && !u.setDB && !u.setTx && !u.reset
}

// Apply folds the update into the session. Reset runs first so an update
// can both clear prior state and install fresh credentials.
func (s *Session) Apply(u Update) {
	if u.reset {
		s.Reset()
	}
	if u.setID {
		s.ID = u.id
	}
	if u.setToken {
		s.Token = u.token
	}
	if u.setDB {
		s.Database = u.database
	}
	if u.setTx {
		s.InTransaction = u.inTx
	}
}
