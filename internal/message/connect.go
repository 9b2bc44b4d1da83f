package message

import (
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/session"
)

// Connect authenticates against the server itself, without opening a
// database. The response installs the session id and, when token auth was
// negotiated, the issued token.
type Connect struct {
	Username string
	Password string
	ClientID string
}

// ConnectResult is the identity issued by a successful server login.
type ConnectResult struct {
	SessionID int32
	Token     []byte
}

func (*Connect) Op() byte { return protocol.OpConnect }

func (m *Connect) EncodeRequest(w *protocol.Writer, env Env) error {
	writeDriverPreamble(w, m.ClientID, env)
	w.WriteString(m.Username)
	w.WriteString(m.Password)
	return nil
}

func (m *Connect) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	var upd session.Update
	sid, err := r.ReadInt()
	if err != nil {
		return nil, upd, err
	}
	result := ConnectResult{SessionID: sid}
	upd.SetSession(sid)
	if env.Protocol >= protocol.MinTokenVersion {
		token, err := r.ReadBytes()
		if err != nil {
			return nil, upd, err
		}
		if len(token) > 0 {
			result.Token = token
			upd.SetToken(token)
		}
	}
	return result, upd, nil
}

// Shutdown asks the server process to stop. It authenticates with the
// server-level credentials from the server configuration, not a session.
type Shutdown struct {
	Username string
	Password string
}

func (*Shutdown) Op() byte { return protocol.OpShutdown }

func (m *Shutdown) EncodeRequest(w *protocol.Writer, env Env) error {
	w.WriteString(m.Username)
	w.WriteString(m.Password)
	return nil
}

func (m *Shutdown) DecodeResponse(r *protocol.Reader, env Env) (any, session.Update, error) {
	return nil, session.Update{}, nil
}

// writeDriverPreamble emits the driver identity and negotiation fields
// shared by CONNECT and DB_OPEN requests.
func writeDriverPreamble(w *protocol.Writer, clientID string, env Env) {
	w.WriteString(protocol.DriverName)
	w.WriteString(protocol.DriverVersion)
	w.WriteShort(protocol.SupportedVersion)
	w.WriteString(clientID)
	if env.Protocol >= protocol.MinSerializationVersion {
		w.WriteString(env.Serialization)
		if env.Protocol >= protocol.MinTokenVersion {
			w.WriteBool(env.TokenAuth)
			if env.Protocol >= protocol.MinPushStatsVersion {
				w.WriteBool(true) // support-push
				w.WriteBool(true) // collect-stats
			}
		}
	}
}
