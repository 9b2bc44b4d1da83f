package session

import (
	"testing"

	"github.com/coachpo/orientwire/internal/protocol"
)

func TestNewSessionIsUnauthenticated(t *testing.T) {
	s := New()
	if s.Authenticated() {
		t.Fatal("fresh session reports authenticated")
	}
	if s.ID != protocol.SessionNone {
		t.Fatalf("fresh session id = %d, want %d", s.ID, protocol.SessionNone)
	}
	if s.HasToken() {
		t.Fatal("fresh session reports a token")
	}
	if s.Serialization != protocol.SerializationCSV {
		t.Fatalf("fresh session serialization = %q", s.Serialization)
	}
}

func TestApplyInstallsCredentials(t *testing.T) {
	s := New()

	var u Update
	u.SetSession(77)
	u.SetToken([]byte("tok"))
	u.SetDatabase("inventory")
	s.Apply(u)

	if !s.Authenticated() || s.ID != 77 {
		t.Fatalf("session id = %d, want 77", s.ID)
	}
	if string(s.Token) != "tok" {
		t.Fatalf("token = %q, want tok", s.Token)
	}
	if s.Database != "inventory" {
		t.Fatalf("database = %q, want inventory", s.Database)
	}
}

func TestApplyEmptyUpdateIsNoop(t *testing.T) {
	s := New()
	s.Apply(Update{})
	if s.ID != protocol.SessionNone {
		t.Fatalf("empty update changed session id to %d", s.ID)
	}
}

func TestApplyResetRunsBeforeMutations(t *testing.T) {
	s := New()
	s.ID = 12
	s.Token = []byte("old")
	s.Database = "stale"
	s.InTransaction = true

	var u Update
	u.MarkReset()
	u.SetSession(99)
	s.Apply(u)

	if s.ID != 99 {
		t.Fatalf("session id = %d, want 99", s.ID)
	}
	if s.HasToken() || s.Database != "" || s.InTransaction {
		t.Fatalf("reset left stale state: %+v", s)
	}
}

func TestApplyEmptyTokenClears(t *testing.T) {
	s := New()
	s.Token = []byte("issued")

	var u Update
	u.SetToken([]byte{})
	s.Apply(u)

	if s.HasToken() {
		t.Fatal("empty token replacement did not clear the held token")
	}
}

func TestUpdateEmpty(t *testing.T) {
	var u Update
	if !u.Empty() {
		t.Fatal("zero update reports mutations")
	}
	u.SetTransaction(true)
	if u.Empty() {
		t.Fatal("transaction update reports empty")
	}
}

func TestMarkOpenAndClosed(t *testing.T) {
	s := New()
	s.MarkOpen("crm")
	if s.Database != "crm" {
		t.Fatalf("database = %q, want crm", s.Database)
	}
	s.MarkClosed()
	if s.Database != "" {
		t.Fatalf("database after close = %q, want empty", s.Database)
	}
}
