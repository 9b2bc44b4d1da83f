package record

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coachpo/orientwire/errs"
)

const decodeOp = "record.decode"

// DecodeDocument parses a CSV record payload into a document. The caller
// owns record identity and version; only class and fields come from the
// payload.
func DecodeDocument(data []byte) (*Record, error) {
	rec := &Record{
		RID:    NullRID,
		Kind:   'd',
		Fields: make(map[string]any),
	}
	d := &decoder{data: data}
	if err := d.document(rec, 0); err != nil {
		return nil, err
	}
	if !d.eof() {
		return nil, d.errorf("trailing bytes at offset %d", d.pos)
	}
	return rec, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) eof() bool { return d.pos >= len(d.data) }

func (d *decoder) peek() byte {
	if d.eof() {
		return 0
	}
	return d.data[d.pos]
}

func (d *decoder) errorf(format string, args ...any) error {
	return errs.New(decodeOp, errs.CodeProtocol, errs.WithMessage(fmt.Sprintf(format, args...)))
}

// document scans Class@field:value,... until stop (0 means end of input).
func (d *decoder) document(rec *Record, stop byte) error {
	rec.Class = d.classPrefix(stop)
	for {
		if d.eof() || d.peek() == stop {
			return nil
		}
		name, err := d.fieldName()
		if err != nil {
			return err
		}
		value, err := d.value(stop)
		if err != nil {
			return err
		}
		rec.Fields[name] = value
		if d.eof() || d.peek() == stop {
			return nil
		}
		if d.data[d.pos] != ',' {
			return d.errorf("expected ',' at offset %d, found %q", d.pos, d.data[d.pos])
		}
		d.pos++
	}
}

// classPrefix consumes Class@ when an '@' appears before any field
// separator, quote, or the enclosing stop byte.
func (d *decoder) classPrefix(stop byte) string {
	for i := d.pos; i < len(d.data); i++ {
		switch d.data[i] {
		case '@':
			class := string(d.data[d.pos:i])
			d.pos = i + 1
			return class
		case ':', '"', ',':
			return ""
		case stop:
			if stop != 0 {
				return ""
			}
		}
	}
	return ""
}

func (d *decoder) fieldName() (string, error) {
	if d.peek() == '"' {
		name, err := d.quoted()
		if err != nil {
			return "", err
		}
		if d.eof() || d.data[d.pos] != ':' {
			return "", d.errorf("expected ':' after field name at offset %d", d.pos)
		}
		d.pos++
		return name, nil
	}
	start := d.pos
	for !d.eof() && d.data[d.pos] != ':' {
		d.pos++
	}
	if d.eof() {
		return "", d.errorf("unterminated field name at offset %d", start)
	}
	name := string(d.data[start:d.pos])
	d.pos++
	return name, nil
}

func (d *decoder) value(stop byte) (any, error) {
	if d.eof() {
		return nil, nil
	}
	switch c := d.peek(); {
	case c == ',' || c == stop:
		return nil, nil
	case c == '"':
		return d.quoted()
	case c == '#':
		return d.rid()
	case c == '_':
		return d.binary()
	case c == '[':
		items, err := d.items('[', ']')
		return items, err
	case c == '<':
		items, err := d.items('<', '>')
		if err != nil {
			return nil, err
		}
		return Set(items), nil
	case c == '{':
		return d.embeddedMap()
	case c == '(':
		return d.embeddedDocument()
	case c == 't' || c == 'f':
		return d.boolean()
	default:
		return d.number()
	}
}

func (d *decoder) quoted() (string, error) {
	start := d.pos
	d.pos++ // opening quote
	var b strings.Builder
	for !d.eof() {
		c := d.data[d.pos]
		switch c {
		case '\\':
			if d.pos+1 >= len(d.data) {
				return "", d.errorf("dangling escape at offset %d", d.pos)
			}
			b.WriteByte(d.data[d.pos+1])
			d.pos += 2
		case '"':
			d.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			d.pos++
		}
	}
	return "", d.errorf("unterminated string starting at offset %d", start)
}

func (d *decoder) rid() (RID, error) {
	start := d.pos
	for !d.eof() && !isDelimiter(d.data[d.pos]) {
		d.pos++
	}
	return ParseRID(string(d.data[start:d.pos]))
}

func (d *decoder) binary() ([]byte, error) {
	start := d.pos
	d.pos++ // opening underscore
	for !d.eof() && d.data[d.pos] != '_' {
		d.pos++
	}
	if d.eof() {
		return nil, d.errorf("unterminated binary field at offset %d", start)
	}
	encoded := string(d.data[start+1 : d.pos])
	d.pos++ // closing underscore
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errs.New(decodeOp, errs.CodeProtocol,
			errs.WithMessage(fmt.Sprintf("invalid base64 at offset %d", start)), errs.WithCause(err))
	}
	return raw, nil
}

func (d *decoder) items(open, close byte) ([]any, error) {
	start := d.pos
	d.pos++ // open
	items := make([]any, 0, 4)
	if !d.eof() && d.peek() == close {
		d.pos++
		return items, nil
	}
	for {
		item, err := d.value(close)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if d.eof() {
			return nil, d.errorf("unterminated %q collection at offset %d", open, start)
		}
		switch d.data[d.pos] {
		case ',':
			d.pos++
		case close:
			d.pos++
			return items, nil
		default:
			return nil, d.errorf("unexpected %q inside collection at offset %d", d.data[d.pos], d.pos)
		}
	}
}

func (d *decoder) embeddedMap() (map[string]any, error) {
	start := d.pos
	d.pos++ // '{'
	out := make(map[string]any)
	if !d.eof() && d.peek() == '}' {
		d.pos++
		return out, nil
	}
	for {
		if d.eof() || d.peek() != '"' {
			return nil, d.errorf("expected quoted map key at offset %d", d.pos)
		}
		key, err := d.quoted()
		if err != nil {
			return nil, err
		}
		if d.eof() || d.data[d.pos] != ':' {
			return nil, d.errorf("expected ':' after map key at offset %d", d.pos)
		}
		d.pos++
		value, err := d.value('}')
		if err != nil {
			return nil, err
		}
		out[key] = value
		if d.eof() {
			return nil, d.errorf("unterminated map at offset %d", start)
		}
		switch d.data[d.pos] {
		case ',':
			d.pos++
		case '}':
			d.pos++
			return out, nil
		default:
			return nil, d.errorf("unexpected %q inside map at offset %d", d.data[d.pos], d.pos)
		}
	}
}

func (d *decoder) embeddedDocument() (*Record, error) {
	start := d.pos
	d.pos++ // '('
	rec := &Record{
		RID:    NullRID,
		Kind:   'd',
		Fields: make(map[string]any),
	}
	if err := d.document(rec, ')'); err != nil {
		return nil, err
	}
	if d.eof() || d.data[d.pos] != ')' {
		return nil, d.errorf("unterminated embedded document at offset %d", start)
	}
	d.pos++
	return rec, nil
}

func (d *decoder) boolean() (bool, error) {
	rest := d.data[d.pos:]
	switch {
	case len(rest) >= 4 && string(rest[:4]) == "true":
		d.pos += 4
		return true, nil
	case len(rest) >= 5 && string(rest[:5]) == "false":
		d.pos += 5
		return false, nil
	}
	return false, d.errorf("malformed literal at offset %d", d.pos)
}

func (d *decoder) number() (any, error) {
	start := d.pos
	for !d.eof() && isNumberBody(d.data[d.pos]) {
		d.pos++
	}
	if d.pos == start {
		return nil, d.errorf("unexpected byte %q at offset %d", d.peek(), d.pos)
	}
	body := string(d.data[start:d.pos])

	var suffix byte
	if !d.eof() {
		switch c := d.data[d.pos]; c {
		case 'b', 's', 'l', 'f', 'd', 'c', 't', 'a':
			suffix = c
			d.pos++
		}
	}

	switch suffix {
	case 'f':
		v, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return float32(v), nil
	case 'd':
		v, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return v, nil
	case 'c':
		v, err := decimal.NewFromString(body)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return v, nil
	case 't':
		ms, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	case 'a':
		ms, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return Date{time.UnixMilli(ms).UTC()}, nil
	case 'b':
		v, err := strconv.ParseInt(body, 10, 8)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return int8(v), nil
	case 's':
		v, err := strconv.ParseInt(body, 10, 16)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return int16(v), nil
	case 'l':
		v, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return v, nil
	default:
		if strings.ContainsAny(body, ".eE") {
			v, err := strconv.ParseFloat(body, 64)
			if err != nil {
				return nil, d.numberError(body, start, err)
			}
			return v, nil
		}
		v, err := strconv.ParseInt(body, 10, 32)
		if err != nil {
			return nil, d.numberError(body, start, err)
		}
		return int32(v), nil
	}
}

func (d *decoder) numberError(body string, offset int, err error) error {
	return errs.New(decodeOp, errs.CodeProtocol,
		errs.WithMessage(fmt.Sprintf("malformed number %q at offset %d", body, offset)), errs.WithCause(err))
}

func isNumberBody(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case ',', ']', '>', ')', '}':
		return true
	}
	return false
}
