package message

import (
	"fmt"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/record"
	"github.com/coachpo/orientwire/internal/session"
)

// Command runs a server-side command: a prepared query, a SQL statement, a
// script, or a graph traversal, selected by the command class. Async
// queries stream records into OnRecord instead of collecting them.
type Command struct {
	Class     string
	Text      string
	Limit     int32
	FetchPlan string
	Language  string
	OnRecord  func(*record.Record)
}

// CommandResult is a synchronous command's decoded answer. Exactly one of
// Records, Value, or Null describes the primary result; Wrapped marks a
// simple value the server boxed into a document.
type CommandResult struct {
	Records    []*record.Record
	Value      string
	Null       bool
	Wrapped    bool
	Prefetched []*record.Record
}

// AsyncResult summarises an async query after its stream ended.
type AsyncResult struct {
	Delivered  int
	Prefetched []*record.Record
}

func (*Command) Op() byte { return protocol.OpCommand }

func (m *Command) async() bool { return m.Class == protocol.ClassQueryAsync }

func (m *Command) EncodeRequest(w *protocol.Writer, env Env) error {
	const op = "message.command"
	mode := protocol.ModeSync
	if m.async() {
		if m.OnRecord == nil {
			return errs.New(op, errs.CodeInvalid, errs.WithMessage("async query requires a record callback"))
		}
		mode = protocol.ModeAsync
	}

	inner := protocol.NewWriter()
	inner.WriteString(m.Class)
	if m.Class == protocol.ClassScript {
		language := m.Language
		if language == "" {
			language = "sql"
		}
		inner.WriteString(language)
	}
	inner.WriteString(m.Text)
	if isQueryClass(m.Class) {
		inner.WriteInt(m.Limit)
		inner.WriteString(m.FetchPlan)
	}
	inner.WriteInt(0) // no serialized parameters

	w.WriteByte(mode)
	w.WriteBytes(inner.Bytes())
	return nil
}

func (m *Command) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	if m.async() {
		return m.decodeAsync(r, env)
	}
	return m.decodeSync(r, env)
}

func (m *Command) decodeSync(r *protocol.Reader, env Env) (any, session.Update, error) {
	const op = "message.command"
	var result CommandResult

	kind, err := r.ReadByte()
	if err != nil {
		return nil, session.Update{}, err
	}
	switch kind {
	case 'n':
		result.Null = true
	case 'r', 'w':
		rec, err := readWireRecord(r, env)
		if err != nil {
			return nil, session.Update{}, err
		}
		if rec != nil {
			result.Records = append(result.Records, rec)
		}
		result.Wrapped = kind == 'w'
	case 'l', 's':
		count, err := r.ReadInt()
		if err != nil {
			return nil, session.Update{}, err
		}
		for i := int32(0); i < count; i++ {
			rec, err := readWireRecord(r, env)
			if err != nil {
				return nil, session.Update{}, err
			}
			if rec != nil {
				result.Records = append(result.Records, rec)
			}
		}
	case 'a':
		if result.Value, err = r.ReadString(); err != nil {
			return nil, session.Update{}, err
		}
	default:
		return nil, session.Update{}, errs.New(op, errs.CodeProtocol,
			errs.WithMessage(fmt.Sprintf("unknown command result type %q", kind)))
	}

	if result.Prefetched, err = drainPrefetch(r, env); err != nil {
		return nil, session.Update{}, err
	}
	return result, session.Update{}, nil
}

func (m *Command) decodeAsync(r *protocol.Reader, env Env) (any, session.Update, error) {
	const op = "message.command"
	var result AsyncResult
	for {
		status, err := r.ReadByte()
		if err != nil {
			return nil, session.Update{}, err
		}
		switch status {
		case 0:
			return result, session.Update{}, nil
		case 1:
			rec, err := readWireRecord(r, env)
			if err != nil {
				return nil, session.Update{}, err
			}
			if rec != nil {
				m.OnRecord(rec)
				result.Delivered++
			}
		case 2:
			rec, err := readWireRecord(r, env)
			if err != nil {
				return nil, session.Update{}, err
			}
			if rec != nil {
				result.Prefetched = append(result.Prefetched, rec)
			}
		default:
			return nil, session.Update{}, errs.New(op, errs.CodeProtocol,
				errs.WithMessage(fmt.Sprintf("unexpected async stream status %d", status)))
		}
	}
}

func isQueryClass(class string) bool {
	switch class {
	case protocol.ClassQuerySync, protocol.ClassQueryAsync, protocol.ClassGremlin:
		return true
	}
	return false
}
