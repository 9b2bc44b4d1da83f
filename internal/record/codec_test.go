package record

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coachpo/orientwire/errs"
)

func TestEncodeDocumentDeterministicOrder(t *testing.T) {
	doc := NewDocument("Person").
		Set("name", `Art"ur`).
		Set("age", int32(34)).
		Set("active", true).
		Set("score", 12.5).
		Set("tags", []any{"a", "b"})

	got := string(EncodeDocument(doc))
	want := `Person@active:true,age:34,name:"Art\"ur",score:12.5d,tags:["a","b"]`
	if got != want {
		t.Fatalf("encoded payload\n got %s\nwant %s", got, want)
	}
}

func TestEncodeDocumentWithoutClass(t *testing.T) {
	doc := NewDocument("").Set("n", int64(7))
	if got := string(EncodeDocument(doc)); got != "n:7l" {
		t.Fatalf("encoded payload = %s", got)
	}
}

func TestDecodeDocumentMixedFields(t *testing.T) {
	payload := `Person@name:"Kay",age:30,height:180s,id:9223372036854775807l,` +
		`rate:0.5f,avg:2.5d,price:19.99c,born:1296279468000t,day:1296259200000a,` +
		`ok:true,missing:,friend:#10:3,tags:<"x","y">,links:[#9:0,#9:1],` +
		`meta:{"k":1,"n":(Addr@city:"Oslo")},img:_aGk=_`

	rec, err := DecodeDocument([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}
	if rec.Class != "Person" {
		t.Fatalf("class = %q, want Person", rec.Class)
	}
	if v := rec.Fields["name"]; v != "Kay" {
		t.Fatalf("name = %v", v)
	}
	if v := rec.Fields["age"]; v != int32(30) {
		t.Fatalf("age = %v (%T)", v, v)
	}
	if v := rec.Fields["height"]; v != int16(180) {
		t.Fatalf("height = %v (%T)", v, v)
	}
	if v := rec.Fields["id"]; v != int64(9223372036854775807) {
		t.Fatalf("id = %v (%T)", v, v)
	}
	if v := rec.Fields["rate"]; v != float32(0.5) {
		t.Fatalf("rate = %v (%T)", v, v)
	}
	if v := rec.Fields["avg"]; v != 2.5 {
		t.Fatalf("avg = %v (%T)", v, v)
	}
	price, ok := rec.Fields["price"].(decimal.Decimal)
	if !ok || !price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("price = %v", rec.Fields["price"])
	}
	born, ok := rec.Fields["born"].(time.Time)
	if !ok || born.UnixMilli() != 1296279468000 {
		t.Fatalf("born = %v", rec.Fields["born"])
	}
	day, ok := rec.Fields["day"].(Date)
	if !ok || day.UnixMilli() != 1296259200000 {
		t.Fatalf("day = %v", rec.Fields["day"])
	}
	if v := rec.Fields["ok"]; v != true {
		t.Fatalf("ok = %v", v)
	}
	if v, present := rec.Fields["missing"]; !present || v != nil {
		t.Fatalf("missing = %v, present %v; want nil, true", v, present)
	}
	if v := rec.Fields["friend"]; v != NewRID(10, 3) {
		t.Fatalf("friend = %v", v)
	}
	tags, ok := rec.Fields["tags"].(Set)
	if !ok || len(tags) != 2 || tags[1] != "y" {
		t.Fatalf("tags = %v", rec.Fields["tags"])
	}
	links, ok := rec.Fields["links"].([]any)
	if !ok || len(links) != 2 || links[0] != NewRID(9, 0) {
		t.Fatalf("links = %v", rec.Fields["links"])
	}
	meta, ok := rec.Fields["meta"].(map[string]any)
	if !ok || meta["k"] != int32(1) {
		t.Fatalf("meta = %v", rec.Fields["meta"])
	}
	addr, ok := meta["n"].(*Record)
	if !ok || addr.Class != "Addr" || addr.Fields["city"] != "Oslo" {
		t.Fatalf("embedded = %+v", meta["n"])
	}
	if img := rec.Fields["img"].([]byte); !bytes.Equal(img, []byte("hi")) {
		t.Fatalf("img = %q", img)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	doc := NewDocument("Order").
		Set("qty", int32(4)).
		Set("total", decimal.RequireFromString("99.95")).
		Set("note", "fragile, keep upright").
		Set("ref", NewRID(21, 8)).
		Set("when", time.UnixMilli(1700000000000).UTC())

	decoded, err := DecodeDocument(EncodeDocument(doc))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if decoded.Class != "Order" {
		t.Fatalf("class = %q", decoded.Class)
	}
	if decoded.Fields["note"] != "fragile, keep upright" {
		t.Fatalf("note = %v", decoded.Fields["note"])
	}
	if decoded.Fields["ref"] != NewRID(21, 8) {
		t.Fatalf("ref = %v", decoded.Fields["ref"])
	}
	total := decoded.Fields["total"].(decimal.Decimal)
	if !total.Equal(decimal.RequireFromString("99.95")) {
		t.Fatalf("total = %v", total)
	}
	when := decoded.Fields["when"].(time.Time)
	if when.UnixMilli() != 1700000000000 {
		t.Fatalf("when = %v", when)
	}
}

func TestDecodeDocumentWithoutClass(t *testing.T) {
	rec, err := DecodeDocument([]byte(`email:"a@b.io",n:2`))
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}
	if rec.Class != "" {
		t.Fatalf("class = %q, want empty", rec.Class)
	}
	if rec.Fields["email"] != "a@b.io" {
		t.Fatalf("email = %v", rec.Fields["email"])
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	rec, err := DecodeDocument(nil)
	if err != nil {
		t.Fatalf("DecodeDocument(nil) failed: %v", err)
	}
	if len(rec.Fields) != 0 || rec.Class != "" {
		t.Fatalf("empty payload decoded to %+v", rec)
	}
}

func TestDecodeMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"unterminated string":   `name:"abc`,
		"dangling escape":       `name:"abc\`,
		"unterminated binary":   `img:_aGk=`,
		"invalid base64":        `img:_!!_`,
		"unterminated list":     `xs:[1,2`,
		"unterminated map":      `m:{"k":1`,
		"unquoted map key":      `m:{k:1}`,
		"unterminated embedded": `e:(City@name:"x"`,
		"bad literal":           `flag:tralse`,
		"bad number":            `n:1.2.3`,
	}
	for name, payload := range cases {
		if _, err := DecodeDocument([]byte(payload)); !errs.HasCode(err, errs.CodeProtocol) {
			t.Fatalf("%s: got %v, want protocol error", name, err)
		}
	}
}
