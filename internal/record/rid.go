// Package record models stored records and the CSV document serialization
// their payloads travel in.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coachpo/orientwire/errs"
)

// RID identifies a record by data-cluster id and position inside it,
// rendered as #cluster:position.
type RID struct {
	Cluster  int16
	Position int64
}

// NullRID is the placeholder identity of a record the server has not
// allocated yet.
var NullRID = RID{Cluster: -1, Position: -1}

// NewRID builds a record identity from its parts.
func NewRID(cluster int16, position int64) RID {
	return RID{Cluster: cluster, Position: position}
}

// ParseRID parses #cluster:position, with or without the leading '#'.
func ParseRID(s string) (RID, error) {
	const op = "record.rid"
	trimmed := strings.TrimPrefix(s, "#")
	sep := strings.IndexByte(trimmed, ':')
	if sep < 0 {
		return RID{}, errs.New(op, errs.CodeInvalid, errs.WithMessage(fmt.Sprintf("malformed rid %q", s)))
	}
	cluster, err := strconv.ParseInt(trimmed[:sep], 10, 16)
	if err != nil {
		return RID{}, errs.New(op, errs.CodeInvalid, errs.WithMessage(fmt.Sprintf("malformed cluster id in %q", s)), errs.WithCause(err))
	}
	position, err := strconv.ParseInt(trimmed[sep+1:], 10, 64)
	if err != nil {
		return RID{}, errs.New(op, errs.CodeInvalid, errs.WithMessage(fmt.Sprintf("malformed position in %q", s)), errs.WithCause(err))
	}
	return RID{Cluster: int16(cluster), Position: position}, nil
}

// String renders the canonical #cluster:position form.
func (r RID) String() string {
	return fmt.Sprintf("#%d:%d", r.Cluster, r.Position)
}

// IsNull reports whether the identity is the unallocated placeholder.
func (r RID) IsNull() bool { return r.Cluster < 0 && r.Position < 0 }

// IsNew reports whether the record has no server-assigned position yet.
func (r RID) IsNew() bool { return r.Position < 0 }

// MarshalJSON renders the rid as its canonical string.
func (r RID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(r.String())), nil
}
