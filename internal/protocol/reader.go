package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/coachpo/orientwire/errs"
)

// Source supplies exact-length reads. The transport socket implements it
// against the wire; SliceSource implements it over decoded blobs.
type Source interface {
	// ReadFull returns exactly n bytes or an error, never a short read.
	ReadFull(n int) ([]byte, error)
}

// Reader decodes protocol fields from a Source. Transport failures pass
// through unchanged; malformed field encodings surface as protocol errors.
type Reader struct {
	src Source
}

// NewReader wraps the provided source.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// ReadByte reads one raw byte.
func (r *Reader) ReadByte() (byte, error) {
	p, err := r.src.ReadFull(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadBool reads a 0/1 byte.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadShort reads a big-endian signed 16-bit integer.
func (r *Reader) ReadShort() (int16, error) {
	p, err := r.src.ReadFull(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(p)), nil
}

// ReadInt reads a big-endian signed 32-bit integer.
func (r *Reader) ReadInt() (int32, error) {
	p, err := r.src.ReadFull(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p)), nil
}

// ReadLong reads a big-endian signed 64-bit integer.
func (r *Reader) ReadLong() (int64, error) {
	p, err := r.src.ReadFull(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(p)), nil
}

// ReadBytes reads a length-prefixed blob. The null marker (-1) decodes to a
// nil slice.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadInt()
	if err != nil {
		return nil, err
	}
	switch {
	case n == -1:
		return nil, nil
	case n < 0:
		return nil, errs.New("protocol/read", errs.CodeProtocol,
			errs.WithMessage(fmt.Sprintf("negative blob length %d", n)))
	case n == 0:
		return []byte{}, nil
	}
	return r.src.ReadFull(int(n))
}

// ReadString reads a length-prefixed UTF-8 string. The null marker decodes
// to the empty string.
func (r *Reader) ReadString() (string, error) {
	p, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// SliceSource serves exact-length reads from an in-memory blob, used when a
// response embeds a serialized payload inside a bytes field.
type SliceSource struct {
	p   []byte
	off int
}

// NewSliceSource wraps the provided blob.
func NewSliceSource(p []byte) *SliceSource {
	return &SliceSource{p: p}
}

// Remaining reports the number of unconsumed bytes.
func (s *SliceSource) Remaining() int { return len(s.p) - s.off }

// ReadFull returns the next n bytes or a protocol error when the blob is
// shorter than the fields it claims to hold.
func (s *SliceSource) ReadFull(n int) ([]byte, error) {
	if n < 0 {
		return nil, errs.New("protocol/read", errs.CodeProtocol,
			errs.WithMessage(fmt.Sprintf("negative read length %d", n)))
	}
	if s.off+n > len(s.p) {
		return nil, errs.New("protocol/read", errs.CodeProtocol,
			errs.WithMessage(fmt.Sprintf("truncated payload: need %d bytes, have %d", n, len(s.p)-s.off)))
	}
	out := s.p[s.off : s.off+n]
	s.off += n
	return out, nil
}
