package message

import (
	"strings"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/session"
)

// EncodeRequestHeader writes the request envelope: operation byte, session
// id, and the auth token on authenticated operations once a token session
// is active. CONNECT and DB_OPEN negotiate the token inside their payloads
// instead.
func EncodeRequestHeader(w *protocol.Writer, op byte, env Env) {
	w.WriteByte(op)
	w.WriteInt(env.SessionID)
	if env.TokensActive() && len(env.Token) > 0 && !negotiatesToken(op) {
		w.WriteBytes(env.Token)
	}
}

// DecodeResponseHeader consumes the response envelope. On a success status
// it absorbs the token echo, handing back a renewal when the server rotated
// it. On an error status it drains the exception chain and returns it as a
// server error. Push frames are not consumed by this client.
func DecodeResponseHeader(r *protocol.Reader, op byte, env Env) (session.Update, error) {
	const headerOp = "message.header"
	var upd session.Update

	status, err := r.ReadByte()
	if err != nil {
		return upd, err
	}
	if _, err := r.ReadInt(); err != nil { // session id echo
		return upd, err
	}

	switch status {
	case protocol.StatusOK:
		if env.TokensActive() && !negotiatesToken(op) {
			token, err := r.ReadBytes()
			if err != nil {
				return upd, err
			}
			if len(token) > 0 {
				upd.SetToken(token)
			}
		}
		return upd, nil
	case protocol.StatusError:
		return upd, decodeErrorChain(r, env)
	case protocol.StatusPush:
		return upd, errs.New(headerOp, errs.CodeProtocol,
			errs.WithMessage("unsolicited push frame; live queries are not consumed by this client"))
	default:
		return upd, errs.New(headerOp, errs.CodeProtocol,
			errs.WithMessage("unknown response status"), errs.WithVersion(int(status)))
	}
}

// decodeErrorChain reads (more:bool, class:string, message:string)* followed
// by the serialized server-side exception, which only Java clients can use
// and is discarded here.
func decodeErrorChain(r *protocol.Reader, env Env) error {
	const op = "message.header"
	type pair struct{ class, message string }
	var chain []pair

	more, err := r.ReadBool()
	if err != nil {
		return err
	}
	for more {
		class, err := r.ReadString()
		if err != nil {
			return err
		}
		msg, err := r.ReadString()
		if err != nil {
			return err
		}
		chain = append(chain, pair{class, msg})
		if more, err = r.ReadBool(); err != nil {
			return err
		}
	}
	if env.Protocol >= protocol.MinSerializedExceptionVersion {
		if _, err := r.ReadBytes(); err != nil { // serialized Java exception
			return err
		}
	}

	if len(chain) == 0 {
		return errs.New(op, errs.CodeServer, errs.WithMessage("server reported an error without detail"))
	}
	messages := make([]string, 0, len(chain))
	for _, p := range chain {
		messages = append(messages, p.message)
	}
	return errs.New(op, errs.CodeServer,
		errs.WithRemote(chain[0].class, strings.Join(messages, "; ")))
}

// negotiatesToken reports whether the operation carries token negotiation
// in its payload rather than the request header.
func negotiatesToken(op byte) bool {
	return op == protocol.OpConnect || op == protocol.OpDBOpen
}
