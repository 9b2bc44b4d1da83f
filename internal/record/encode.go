package record

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EncodeDocument serialises a document to the CSV record format: an
// optional Class@ prefix followed by comma-separated field:value pairs.
// Fields are emitted in sorted order so payloads are deterministic.
func EncodeDocument(rec *Record) []byte {
	var b strings.Builder
	if rec.Class != "" {
		b.WriteString(rec.Class)
		b.WriteByte('@')
	}
	writeFields(&b, rec.Fields)
	return []byte(b.String())
}

func writeFields(b *strings.Builder, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		writeValue(b, fields[k])
	}
}

func writeValue(b *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		// Null is the absence of a token.
	case string:
		writeQuoted(b, v)
	case bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case int8:
		b.WriteString(strconv.FormatInt(int64(v), 10))
		b.WriteByte('b')
	case int16:
		b.WriteString(strconv.FormatInt(int64(v), 10))
		b.WriteByte('s')
	case int32:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
		if v > math.MaxInt32 || v < math.MinInt32 {
			b.WriteByte('l')
		}
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
		b.WriteByte('l')
	case float32:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		b.WriteByte('f')
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('d')
	case decimal.Decimal:
		b.WriteString(v.String())
		b.WriteByte('c')
	case Date:
		b.WriteString(strconv.FormatInt(v.UnixMilli(), 10))
		b.WriteByte('a')
	case time.Time:
		b.WriteString(strconv.FormatInt(v.UnixMilli(), 10))
		b.WriteByte('t')
	case []byte:
		b.WriteByte('_')
		b.WriteString(base64.StdEncoding.EncodeToString(v))
		b.WriteByte('_')
	case RID:
		b.WriteString(v.String())
	case *Record:
		b.WriteByte('(')
		if v.Class != "" {
			b.WriteString(v.Class)
			b.WriteByte('@')
		}
		writeFields(b, v.Fields)
		b.WriteByte(')')
	case Set:
		b.WriteByte('<')
		writeItems(b, v)
		b.WriteByte('>')
	case []any:
		b.WriteByte('[')
		writeItems(b, v)
		b.WriteByte(']')
	case map[string]any:
		b.WriteByte('{')
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(b, k)
			b.WriteByte(':')
			writeValue(b, v[k])
		}
		b.WriteByte('}')
	default:
		writeQuoted(b, fmt.Sprintf("%v", v))
	}
}

func writeItems(b *strings.Builder, items []any) {
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		writeValue(b, item)
	}
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
}
