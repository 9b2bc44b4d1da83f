package protocol

import (
	"bytes"
	"encoding/binary"
)

// Writer accumulates one request frame. Callers append typed fields and then
// flush the whole frame with a single transport write, so a request is never
// interleaved with another on the wire.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty frame writer.
func NewWriter() *Writer {
	return new(Writer)
}

// Len reports the number of bytes accumulated so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Bytes returns the accumulated frame. The slice is valid until the next
// append.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Reset discards the accumulated frame.
func (w *Writer) Reset() { w.buf.Reset() }

// WriteByte appends a single raw byte.
func (w *Writer) WriteByte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBool appends a boolean as a 0/1 byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// WriteShort appends a big-endian signed 16-bit integer.
func (w *Writer) WriteShort(v int16) {
	var scratch [2]byte
	binary.BigEndian.PutUint16(scratch[:], uint16(v))
	w.buf.Write(scratch[:])
}

// WriteInt appends a big-endian signed 32-bit integer.
func (w *Writer) WriteInt(v int32) {
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], uint32(v))
	w.buf.Write(scratch[:])
}

// WriteLong appends a big-endian signed 64-bit integer.
func (w *Writer) WriteLong(v int64) {
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], uint64(v))
	w.buf.Write(scratch[:])
}

// WriteBytes appends a length-prefixed blob. A nil slice is written as the
// null marker (-1); an empty non-nil slice is written with length 0.
func (w *Writer) WriteBytes(p []byte) {
	if p == nil {
		w.WriteInt(-1)
		return
	}
	w.WriteInt(int32(len(p)))
	w.buf.Write(p)
}

// WriteString appends a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteInt(int32(len(s)))
	w.buf.WriteString(s)
}

// WriteNullString appends the null string marker.
func (w *Writer) WriteNullString() {
	w.WriteInt(-1)
}
