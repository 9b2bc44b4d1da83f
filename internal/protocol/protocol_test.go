package protocol_test

import (
	"testing"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/protocol"
)

func TestWriterProducesBigEndianFields(t *testing.T) {
	t.Parallel()

	w := protocol.NewWriter()
	w.WriteByte(protocol.OpDBOpen)
	w.WriteShort(-2)
	w.WriteInt(39)
	w.WriteLong(1)

	want := []byte{
		3,
		0xff, 0xfe,
		0x00, 0x00, 0x00, 0x27,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	}
	got := w.Bytes()
	if len(got) != len(want) {
		t.Fatalf("frame length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x (frame % x)", i, got[i], want[i], got)
		}
	}
}

func TestReaderDecodesWriterFrame(t *testing.T) {
	t.Parallel()

	w := protocol.NewWriter()
	w.WriteBool(true)
	w.WriteShort(-1)
	w.WriteInt(1 << 20)
	w.WriteLong(-9000)
	w.WriteString("admin")
	w.WriteBytes([]byte{0xde, 0xad})
	w.WriteBytes(nil)

	r := protocol.NewReader(protocol.NewSliceSource(w.Bytes()))

	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadShort(); err != nil || v != -1 {
		t.Fatalf("ReadShort = %d, %v", v, err)
	}
	if v, err := r.ReadInt(); err != nil || v != 1<<20 {
		t.Fatalf("ReadInt = %d, %v", v, err)
	}
	if v, err := r.ReadLong(); err != nil || v != -9000 {
		t.Fatalf("ReadLong = %d, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "admin" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	blob, err := r.ReadBytes()
	if err != nil || len(blob) != 2 || blob[0] != 0xde {
		t.Fatalf("ReadBytes = % x, %v", blob, err)
	}
	null, err := r.ReadBytes()
	if err != nil || null != nil {
		t.Fatalf("null blob = %v, %v; want nil", null, err)
	}
}

func TestReadBytesRejectsNegativeLength(t *testing.T) {
	t.Parallel()

	// Length -2 is not a valid null marker.
	src := protocol.NewSliceSource([]byte{0xff, 0xff, 0xff, 0xfe})
	r := protocol.NewReader(src)

	_, err := r.ReadBytes()
	if !errs.HasCode(err, errs.CodeProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestSliceSourceReportsTruncation(t *testing.T) {
	t.Parallel()

	src := protocol.NewSliceSource([]byte{0x00, 0x00, 0x00, 0x08, 'a', 'b'})
	r := protocol.NewReader(src)

	// Claims 8 bytes, carries 2.
	_, err := r.ReadString()
	if !errs.HasCode(err, errs.CodeProtocol) {
		t.Fatalf("expected protocol error on truncated payload, got %v", err)
	}
}

func TestNullStringMarkerDecodesEmpty(t *testing.T) {
	t.Parallel()

	w := protocol.NewWriter()
	w.WriteNullString()
	r := protocol.NewReader(protocol.NewSliceSource(w.Bytes()))
	s, err := r.ReadString()
	if err != nil || s != "" {
		t.Fatalf("null string = %q, %v", s, err)
	}
}
