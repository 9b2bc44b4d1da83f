package message

import (
	"fmt"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/protocol"
	"github.com/coachpo/orientwire/internal/record"
)

// Wire-record classifiers prefixing records inside command results and
// prefetch streams.
const (
	recordNull int16 = -2
	recordLink int16 = -3
	recordFull int16 = 0
)

// readWireRecord decodes one classified record: null, a bare link, or a
// full record with identity, version, and content.
func readWireRecord(r *protocol.Reader, env Env) (*record.Record, error) {
	const op = "message.record"
	classifier, err := r.ReadShort()
	if err != nil {
		return nil, err
	}
	switch classifier {
	case recordNull:
		return nil, nil
	case recordLink:
		cluster, err := r.ReadShort()
		if err != nil {
			return nil, err
		}
		position, err := r.ReadLong()
		if err != nil {
			return nil, err
		}
		return &record.Record{RID: record.NewRID(cluster, position), Kind: protocol.RecordDocument}, nil
	case recordFull:
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		cluster, err := r.ReadShort()
		if err != nil {
			return nil, err
		}
		position, err := r.ReadLong()
		if err != nil {
			return nil, err
		}
		version, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		content, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return buildRecord(kind, record.NewRID(cluster, position), version, content, env)
	default:
		return nil, errs.New(op, errs.CodeProtocol,
			errs.WithMessage(fmt.Sprintf("unknown record classifier %d", classifier)))
	}
}

// buildRecord materialises a record from its wire triple, decoding CSV
// documents and keeping every other payload raw.
func buildRecord(kind byte, rid record.RID, version int32, content []byte, env Env) (*record.Record, error) {
	if kind == protocol.RecordDocument && env.Serialization == protocol.SerializationCSV {
		rec, err := record.DecodeDocument(content)
		if err != nil {
			return nil, err
		}
		rec.RID = rid
		rec.Version = version
		return rec, nil
	}
	return &record.Record{
		RID:     rid,
		Version: version,
		Kind:    kind,
		Raw:     content,
	}, nil
}

// drainPrefetch consumes the fetch-plan push stream trailing a result:
// status 2 carries one prefetched record, status 0 ends the stream.
func drainPrefetch(r *protocol.Reader, env Env) ([]*record.Record, error) {
	const op = "message.record"
	var prefetched []*record.Record
	for {
		status, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch status {
		case 0:
			return prefetched, nil
		case 2:
			rec, err := readWireRecord(r, env)
			if err != nil {
				return nil, err
			}
			if rec != nil {
				prefetched = append(prefetched, rec)
			}
		default:
			return nil, errs.New(op, errs.CodeProtocol,
				errs.WithMessage(fmt.Sprintf("unexpected prefetch status %d", status)))
		}
	}
}
