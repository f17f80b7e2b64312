// Package recordmodel validates JSONLT records and tombstones, extracts
// keys from them according to a key specifier, and builds minimal
// tombstones for a key (spec §4.4).
package recordmodel

import (
	"fmt"
	"strings"

	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
)

// DeletedField is the tombstone marker field name.
const DeletedField = "$deleted"

// IsTombstone reports whether obj is a tombstone: obj["$deleted"] is
// exactly the boolean true.
func IsTombstone(obj jsonval.Object) bool {
	v, ok := obj[DeletedField]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// ValidateRecord enforces spec §3's record rules: no top-level field name
// starts with "$", and every field named by spec is present with a valid
// key-shaped value.
func ValidateRecord(obj jsonval.Object, spec keymodel.Specifier) error {
	for field := range obj {
		if strings.HasPrefix(field, "$") {
			return jsonlterr.NewInvalidKeyError(fmt.Sprintf("record has $-prefixed field %q", field))
		}
	}
	return validateKeyFields(obj, spec)
}

// ValidateTombstone enforces spec §3's tombstone rules: "$deleted" must be
// present and exactly boolean true, and the key fields named by spec must
// be present and valid. Other top-level fields, $-prefixed or not, are
// tolerated but not interpreted by the core.
func ValidateTombstone(obj jsonval.Object, spec keymodel.Specifier) error {
	v, ok := obj[DeletedField]
	if !ok {
		return jsonlterr.NewParseError("tombstone is missing the \"$deleted\" marker")
	}
	b, ok := v.(bool)
	if !ok || !b {
		return jsonlterr.NewParseError("tombstone's \"$deleted\" field must be the boolean true")
	}
	return validateKeyFields(obj, spec)
}

func validateKeyFields(obj jsonval.Object, spec keymodel.Specifier) error {
	if spec.IsZero() {
		return jsonlterr.NewInvalidKeyError("no key specifier is set")
	}
	for _, field := range spec.Fields() {
		v, ok := obj[field]
		if !ok {
			return jsonlterr.NewInvalidKeyError(fmt.Sprintf("record is missing key field %q", field))
		}
		if err := validateKeyFieldValue(field, v); err != nil {
			return err
		}
	}
	return nil
}

func validateKeyFieldValue(field string, v jsonval.Value) error {
	switch v.(type) {
	case nil:
		return jsonlterr.NewInvalidKeyError(fmt.Sprintf("key field %q must not be null", field))
	case bool:
		return jsonlterr.NewInvalidKeyError(fmt.Sprintf("key field %q must not be boolean", field))
	case jsonval.Array:
		return jsonlterr.NewInvalidKeyError(fmt.Sprintf("key field %q must not be an array", field))
	case jsonval.Object, *jsonval.Object:
		return jsonlterr.NewInvalidKeyError(fmt.Sprintf("key field %q must not be an object", field))
	case string:
		return nil
	case jsonval.Int64, float64, int64, int:
		_, err := keymodel.FromJSON(v)
		if err != nil {
			return fmt.Errorf("key field %q: %w", field, err)
		}
		return nil
	default:
		return jsonlterr.NewInvalidKeyError(fmt.Sprintf("key field %q has an unsupported value type %T", field, v))
	}
}

// ExtractKey returns the key a record (or tombstone) carries according to
// spec: a scalar key for a scalar specifier, a tuple key (in specifier
// field order) for a compound specifier.
func ExtractKey(obj jsonval.Object, spec keymodel.Specifier) (keymodel.Key, error) {
	if spec.IsZero() {
		return keymodel.Key{}, jsonlterr.NewInvalidKeyError("no key specifier is set")
	}
	fields := spec.Fields()
	if spec.IsScalar() {
		v, ok := obj[fields[0]]
		if !ok {
			return keymodel.Key{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("record is missing key field %q", fields[0]))
		}
		key, err := keymodel.FromJSON(v)
		if err != nil {
			return keymodel.Key{}, fmt.Errorf("key field %q: %w", fields[0], err)
		}
		if key.Kind() == keymodel.KindTuple {
			return keymodel.Key{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("key field %q must be a scalar, not an array", fields[0]))
		}
		return key, nil
	}

	elems := make([]keymodel.Element, len(fields))
	for i, field := range fields {
		v, ok := obj[field]
		if !ok {
			return keymodel.Key{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("record is missing key field %q", field))
		}
		el, err := keymodel.ElementToValue(v)
		if err != nil {
			return keymodel.Key{}, fmt.Errorf("key field %q: %w", field, err)
		}
		elems[i] = el
	}
	return keymodel.NewTuple(elems)
}

// BuildTombstone constructs the minimal tombstone for key under spec:
// {"$deleted": true, <key fields...>}. It fails with InvalidKeyError if
// key's arity does not match spec.
func BuildTombstone(key keymodel.Key, spec keymodel.Specifier) (jsonval.Object, error) {
	if spec.IsZero() {
		return nil, jsonlterr.NewInvalidKeyError("no key specifier is set")
	}
	fields := spec.Fields()
	obj := jsonval.Object{DeletedField: true}

	if spec.IsScalar() {
		if key.Kind() == keymodel.KindTuple {
			return nil, jsonlterr.NewInvalidKeyError("scalar key specifier cannot accept a tuple key")
		}
		obj[fields[0]] = keyScalarToJSON(key)
		return obj, nil
	}

	elems, ok := key.Tuple()
	if !ok {
		return nil, jsonlterr.NewInvalidKeyError("compound key specifier requires a tuple key")
	}
	if len(elems) != len(fields) {
		return nil, jsonlterr.NewInvalidKeyError(fmt.Sprintf("key has arity %d but specifier names %d fields", len(elems), len(fields)))
	}
	for i, field := range fields {
		if elems[i].Kind == keymodel.KindInteger {
			obj[field] = jsonval.Int64(elems[i].Int)
		} else {
			obj[field] = elems[i].Str
		}
	}
	return obj, nil
}

func keyScalarToJSON(k keymodel.Key) jsonval.Value {
	if i, ok := k.Int(); ok {
		return jsonval.Int64(i)
	}
	s, _ := k.Str()
	return s
}

// RecordSize returns the byte length of obj's canonical serialization, the
// "record size" bounded at 1 MiB by spec §3 invariant 6.
func RecordSize(obj jsonval.Object) (int, error) {
	s, err := canon.Serialize(obj)
	if err != nil {
		return 0, err
	}
	return len(s), nil
}
