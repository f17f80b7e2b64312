package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/jsonlt/jsonlt-go/internal/encoding"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
)

// DefaultMaxDepth is the nesting-depth ceiling applied when a caller does
// not supply one (spec §3 invariant 6, §4.1).
const DefaultMaxDepth = 64

// ParseLine parses a single line of JSON text as a JSON object. It rejects
// non-object top-level values, duplicate member names at any depth, and
// nesting deeper than maxDepth (use DefaultMaxDepth when in doubt). The
// depth of a primitive or an empty container is 1; each wrapping container
// adds 1.
func ParseLine(text string, maxDepth int) (jsonval.Object, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	v, err := parseValue(dec, maxDepth, 1)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, jsonlterr.NewParseError("unexpected trailing content after JSON value")
	}

	obj, ok := jsonval.AsObject(v)
	if !ok {
		return nil, jsonlterr.NewParseError("top-level JSON value must be an object")
	}
	return obj, nil
}

func parseValue(dec *json.Decoder, maxDepth, depth int) (jsonval.Value, error) {
	if depth > maxDepth {
		return nil, jsonlterr.NewLimitError(fmt.Sprintf("JSON nesting depth exceeds limit of %d", maxDepth))
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, jsonlterr.WrapParseError("malformed JSON", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec, maxDepth, depth)
		case '[':
			return parseArray(dec, maxDepth, depth)
		default:
			return nil, jsonlterr.NewParseError(fmt.Sprintf("unexpected delimiter %q", t))
		}
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case string:
		if encoding.HasUnpairedSurrogate(t) {
			return nil, jsonlterr.NewParseError("string contains an unpaired surrogate code point")
		}
		return t, nil
	case json.Number:
		return parseNumber(t)
	default:
		return nil, jsonlterr.NewParseError(fmt.Sprintf("unsupported JSON token %T", tok))
	}
}

func parseNumber(n json.Number) (jsonval.Value, error) {
	s := n.String()
	if i, err := n.Int64(); err == nil {
		return jsonval.Int64(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, jsonlterr.WrapParseError(fmt.Sprintf("invalid JSON number %q", s), err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, jsonlterr.NewParseError(fmt.Sprintf("JSON number %q is not finite", s))
	}
	return f, nil
}

func parseObject(dec *json.Decoder, maxDepth, depth int) (jsonval.Value, error) {
	obj := jsonval.Object{}
	seen := map[string]bool{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, jsonlterr.WrapParseError("malformed JSON object key", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, jsonlterr.NewParseError("JSON object key must be a string")
		}
		if seen[key] {
			return nil, jsonlterr.NewParseError(fmt.Sprintf("duplicate object key %q", key))
		}
		seen[key] = true

		val, err := parseValue(dec, maxDepth, depth+1)
		if err != nil {
			return nil, err
		}
		obj[key] = val
	}
	if _, err := dec.Token(); err != nil {
		return nil, jsonlterr.WrapParseError("malformed JSON object", err)
	}
	return obj, nil
}

func parseArray(dec *json.Decoder, maxDepth, depth int) (jsonval.Value, error) {
	arr := jsonval.Array{}
	for dec.More() {
		val, err := parseValue(dec, maxDepth, depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, jsonlterr.WrapParseError("malformed JSON array", err)
	}
	return arr, nil
}
