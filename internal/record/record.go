package record

import (
	"time"

	json "github.com/goccy/go-json"
)

// Record is one stored record: a document with decoded fields, or a raw
// binary payload for non-document kinds.
type Record struct {
	RID     RID
	Class   string
	Version int32
	Kind    byte
	Fields  map[string]any
	Raw     []byte
}

// NewDocument builds an empty document of the given class.
func NewDocument(class string) *Record {
	return &Record{
		RID:    NullRID,
		Class:  class,
		Kind:   'd',
		Fields: make(map[string]any),
	}
}

// Set assigns one field and returns the record for chaining.
func (r *Record) Set(field string, value any) *Record {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[field] = value
	return r
}

// Field returns one decoded field value.
func (r *Record) Field(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// IsDocument reports whether the record carries decoded document fields.
func (r *Record) IsDocument() bool { return r.Kind == 'd' }

// Set is a distinct collection type so the codec can keep embedded sets
// apart from lists when round-tripping documents.
type Set []any

// Date marks a value as a calendar date rather than a point in time.
type Date struct {
	time.Time
}

// MarshalJSON renders the record with its identity and fields inlined.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"@rid":     r.RID.String(),
		"@version": r.Version,
	}
	if r.Class != "" {
		out["@class"] = r.Class
	}
	if r.IsDocument() {
		for k, v := range r.Fields {
			out[k] = v
		}
	} else if len(r.Raw) > 0 {
		out["@raw"] = r.Raw
	}
	return json.Marshal(out)
}
