package record

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestRecordMarshalJSON(t *testing.T) {
	doc := NewDocument("City").Set("name", "Oslo").Set("pop", int32(709000))
	doc.RID = NewRID(14, 2)
	doc.Version = 3

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(out)
	for _, want := range []string{`"@rid":"#14:2"`, `"@class":"City"`, `"@version":3`, `"name":"Oslo"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("json %s missing %s", s, want)
		}
	}
}

func TestRecordFieldAccess(t *testing.T) {
	doc := &Record{Kind: 'd'}
	doc.Set("a", int32(1))
	if v, ok := doc.Field("a"); !ok || v != int32(1) {
		t.Fatalf("Field(a) = %v, %v", v, ok)
	}
	if _, ok := doc.Field("b"); ok {
		t.Fatal("Field(b) reported present")
	}
	if !doc.IsDocument() {
		t.Fatal("document record not recognised")
	}
}
