package transport

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/coachpo/orientwire/errs"
)

// handshakeLen is the size of the version frame the server pushes on connect.
const handshakeLen = 2

// negotiate consumes the server's unsolicited big-endian int16 protocol
// version. The frame is a push, not a response: it must be drained before
// the first request is written. Fewer than two bytes means the peer
// disconnected immediately; a version outside the accepted window leaves
// the socket unconnected.
func negotiate(conn net.Conn, o options) (int16, error) {
	const op = "transport.handshake"
	buf := make([]byte, handshakeLen)
	read := 0
	for read < handshakeLen {
		if err := conn.SetReadDeadline(time.Now().Add(o.connectTimeout)); err != nil {
			return -1, errs.New(op, errs.CodeConnection, errs.WithMessage("arm handshake deadline"), errs.WithCause(err))
		}
		n, err := conn.Read(buf[read:])
		read += n
		if read == handshakeLen {
			break
		}
		if err != nil {
			return -1, errs.New(op, errs.CodeConnection,
				errs.WithMessage(fmt.Sprintf("short handshake, got %d of %d bytes", read, handshakeLen)),
				errs.WithCause(err))
		}
	}
	_ = conn.SetReadDeadline(time.Time{})

	version := int16(binary.BigEndian.Uint16(buf))
	if version > o.maxVersion {
		return -1, errs.New(op, errs.CodeProtocolVersion,
			errs.WithVersion(int(version)),
			errs.WithMessage(fmt.Sprintf("server protocol %d exceeds supported maximum %d", version, o.maxVersion)))
	}
	if version < o.minVersion {
		return -1, errs.New(op, errs.CodeProtocolVersion,
			errs.WithVersion(int(version)),
			errs.WithMessage(fmt.Sprintf("server protocol %d below accepted minimum %d", version, o.minVersion)))
	}
	return version, nil
}
