package canon

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
)

// Serialize produces the canonical encoding of v: object members in
// ascending Unicode code-point order of their names, no whitespace outside
// strings, non-ASCII preserved as raw UTF-8, integers as decimal literals,
// floats in shortest round-trip form.
func Serialize(v jsonval.Value) (string, error) {
	var sb strings.Builder
	if err := writeValue(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeValue(sb *strings.Builder, v jsonval.Value) error {
	switch t := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if t {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case jsonval.Int64:
		sb.WriteString(strconv.FormatInt(int64(t), 10))
	case int64:
		sb.WriteString(strconv.FormatInt(t, 10))
	case int:
		sb.WriteString(strconv.Itoa(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return jsonlterr.NewParseError("cannot serialize a non-finite number")
		}
		sb.WriteString(formatFloat(t))
	case string:
		writeString(sb, t)
	case jsonval.Array:
		return writeArray(sb, t)
	case jsonval.Object:
		return writeObject(sb, t)
	case *jsonval.Object:
		if t == nil {
			return jsonlterr.NewParseError("cannot serialize a nil object")
		}
		return writeObject(sb, *t)
	default:
		return jsonlterr.NewParseError(fmt.Sprintf("cannot serialize value of type %T", v))
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func writeArray(sb *strings.Builder, a jsonval.Array) error {
	sb.WriteByte('[')
	for i, e := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		if err := writeValue(sb, e); err != nil {
			return err
		}
	}
	sb.WriteByte(']')
	return nil
}

func writeObject(sb *strings.Builder, o jsonval.Object) error {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessCodePoint(keys[i], keys[j]) })

	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeString(sb, k)
		sb.WriteByte(':')
		if err := writeValue(sb, o[k]); err != nil {
			return err
		}
	}
	sb.WriteByte('}')
	return nil
}

// lessCodePoint compares two strings by ascending Unicode code point,
// matching the key-ordering rule of spec §4.3 rule 3 applied to object
// field names.
func lessCodePoint(a, b string) bool {
	ar, br := []rune(a), []rune(b)
	for i := 0; i < len(ar) && i < len(br); i++ {
		if ar[i] != br[i] {
			return ar[i] < br[i]
		}
	}
	return len(ar) < len(br)
}

func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}
