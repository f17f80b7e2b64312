// Package schemacheck validates records against a table's optional
// header schema (spec §4.5's "schema" / "$schema" fields). Validation is
// a consumer-facing convenience, not part of the core read/write path:
// a table with no schema, or one referencing a schema only by URL,
// accepts every record the core's own validation accepts.
package schemacheck

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
)

// Checker validates records against a single resolved JSON Schema.
type Checker struct {
	resolved *jsonschema.Resolved
}

// FromInline compiles an inline schema object (header "schema" field)
// into a Checker.
func FromInline(schema jsonval.Object) (*Checker, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, jsonlterr.WrapParseError("cannot encode inline schema", err)
	}

	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, jsonlterr.WrapParseError("cannot parse inline schema", err)
	}

	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, jsonlterr.WrapParseError("cannot resolve inline schema", err)
	}
	return &Checker{resolved: resolved}, nil
}

// Validate reports whether record satisfies c's schema, wrapping any
// violation as a ParseError.
func (c *Checker) Validate(record jsonval.Object) error {
	if c == nil {
		return nil
	}
	if err := c.resolved.Validate(map[string]any(record)); err != nil {
		return jsonlterr.WrapParseError("record does not satisfy table schema", err)
	}
	return nil
}
