// Package header implements the JSONLT format header (spec §4.5): the
// optional first line of a file, an object carrying version, key
// specifier, schema reference, and free-form metadata.
package header

import (
	"fmt"
	"strings"

	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
)

// WrapperField is the header's sole top-level field name.
const WrapperField = "$jsonlt"

// SupportedVersion is the only header version this engine accepts.
const SupportedVersion = 1

// Header is the parsed contents of a $jsonlt wrapper object.
type Header struct {
	Version int

	HasKey bool
	Key    keymodel.Specifier

	HasSchema    bool
	SchemaIsURL  bool
	SchemaURL    string
	SchemaInline jsonval.Object

	HasMeta bool
	Meta    jsonval.Object
}

// IsHeaderLine reports whether obj carries a top-level "$jsonlt" field.
func IsHeaderLine(obj jsonval.Object) bool {
	_, ok := obj[WrapperField]
	return ok
}

// Parse validates and extracts a Header from a line already identified by
// IsHeaderLine as carrying a "$jsonlt" wrapper.
func Parse(obj jsonval.Object) (Header, error) {
	if len(obj) != 1 {
		return Header{}, jsonlterr.NewParseError("header line must have \"$jsonlt\" as its only top-level field")
	}
	raw, ok := obj[WrapperField]
	if !ok {
		return Header{}, jsonlterr.NewParseError("header line is missing \"$jsonlt\"")
	}
	wrapper, ok := jsonval.AsObject(raw)
	if !ok {
		return Header{}, jsonlterr.NewParseError("\"$jsonlt\" must be an object")
	}

	var h Header
	if err := parseVersion(wrapper, &h); err != nil {
		return Header{}, err
	}
	if err := parseKey(wrapper, &h); err != nil {
		return Header{}, err
	}
	if err := parseSchema(wrapper, &h); err != nil {
		return Header{}, err
	}
	if err := parseMeta(wrapper, &h); err != nil {
		return Header{}, err
	}
	if err := rejectUnknownFields(wrapper); err != nil {
		return Header{}, err
	}
	return h, nil
}

func parseVersion(wrapper jsonval.Object, h *Header) error {
	v, ok := wrapper["version"]
	if !ok {
		return jsonlterr.NewParseError("header is missing required field \"version\"")
	}
	i, ok := asInt(v)
	if !ok {
		return jsonlterr.NewParseError("header \"version\" must be an integer")
	}
	if i != SupportedVersion {
		return jsonlterr.NewParseError(fmt.Sprintf("unsupported header version %d; only version %d is accepted", i, SupportedVersion))
	}
	h.Version = int(i)
	return nil
}

func parseKey(wrapper jsonval.Object, h *Header) error {
	v, ok := wrapper["key"]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		spec, err := keymodel.NewScalarSpecifier(t)
		if err != nil {
			return err
		}
		h.HasKey = true
		h.Key = spec
	case jsonval.Array:
		if len(t) == 0 {
			return jsonlterr.NewInvalidKeyError("header \"key\" array must not be empty")
		}
		if len(t) > keymodel.MaxTupleArity {
			return jsonlterr.NewInvalidKeyError(fmt.Sprintf("header \"key\" array has %d elements, exceeding the limit of %d", len(t), keymodel.MaxTupleArity))
		}
		fields := make([]string, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return jsonlterr.NewInvalidKeyError(fmt.Sprintf("header \"key\" array element %d must be a string", i))
			}
			fields[i] = s
		}
		spec, err := keymodel.NewCompoundSpecifier(fields)
		if err != nil {
			return err
		}
		h.HasKey = true
		h.Key = spec
	default:
		return jsonlterr.NewInvalidKeyError("header \"key\" must be a string or an array of strings")
	}
	return nil
}

func parseSchema(wrapper jsonval.Object, h *Header) error {
	dollarSchema, hasDollar := wrapper["$schema"]
	schema, hasPlain := wrapper["schema"]
	if hasDollar && hasPlain {
		return jsonlterr.NewParseError("header must not carry both \"$schema\" and \"schema\"")
	}
	switch {
	case hasDollar:
		s, ok := dollarSchema.(string)
		if !ok {
			return jsonlterr.NewParseError("header \"$schema\" must be a string URL")
		}
		h.HasSchema = true
		h.SchemaIsURL = true
		h.SchemaURL = s
	case hasPlain:
		obj, ok := jsonval.AsObject(schema)
		if !ok {
			return jsonlterr.NewParseError("header \"schema\" must be an inline object")
		}
		h.HasSchema = true
		h.SchemaIsURL = false
		h.SchemaInline = obj
	}
	return nil
}

func parseMeta(wrapper jsonval.Object, h *Header) error {
	v, ok := wrapper["meta"]
	if !ok {
		return nil
	}
	obj, ok := jsonval.AsObject(v)
	if !ok {
		return jsonlterr.NewParseError("header \"meta\" must be an object")
	}
	h.HasMeta = true
	h.Meta = obj
	return nil
}

func rejectUnknownFields(wrapper jsonval.Object) error {
	known := map[string]bool{"version": true, "key": true, "$schema": true, "schema": true, "meta": true}
	for field := range wrapper {
		if known[field] {
			continue
		}
		if strings.HasPrefix(field, "$") {
			return jsonlterr.NewParseError(fmt.Sprintf("header carries unrecognised $-prefixed field %q", field))
		}
		return jsonlterr.NewParseError(fmt.Sprintf("header carries unrecognised field %q", field))
	}
	return nil
}

func asInt(v jsonval.Value) (int64, bool) {
	switch t := v.(type) {
	case jsonval.Int64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}

// Serialize produces the canonical on-disk encoding of h: a single line
// `{"$jsonlt":{...}}`.
func Serialize(h Header) (string, error) {
	wrapper := jsonval.Object{"version": jsonval.Int64(h.Version)}
	if h.HasKey {
		if h.Key.IsScalar() {
			wrapper["key"] = h.Key.Fields()[0]
		} else {
			fields := h.Key.Fields()
			arr := make(jsonval.Array, len(fields))
			for i, f := range fields {
				arr[i] = f
			}
			wrapper["key"] = arr
		}
	}
	if h.HasSchema {
		if h.SchemaIsURL {
			wrapper["$schema"] = h.SchemaURL
		} else {
			wrapper["schema"] = h.SchemaInline
		}
	}
	if h.HasMeta {
		wrapper["meta"] = h.Meta
	}
	return canon.Serialize(jsonval.Object{WrapperField: wrapper})
}
