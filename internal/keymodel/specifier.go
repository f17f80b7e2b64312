package keymodel

import (
	"fmt"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
)

// Specifier declares which field(s) of a record form its key: either a
// single non-empty field name (scalar) or 2-16 distinct field names
// (compound). A single-element field-name array normalises to a scalar
// specifier, though keys extracted through it remain whichever variant
// their field value produces.
type Specifier struct {
	fields []string
}

// NewScalarSpecifier builds a specifier naming a single field.
func NewScalarSpecifier(field string) (Specifier, error) {
	if field == "" {
		return Specifier{}, jsonlterr.NewInvalidKeyError("scalar key specifier field name must not be empty")
	}
	return Specifier{fields: []string{field}}, nil
}

// NewCompoundSpecifier builds a specifier naming 2-16 distinct fields. A
// single-field slice normalises to a scalar specifier, matching spec §3's
// "a single-element tuple key specifier normalises to a scalar specifier"
// rule.
func NewCompoundSpecifier(fields []string) (Specifier, error) {
	if len(fields) == 0 {
		return Specifier{}, jsonlterr.NewInvalidKeyError("key specifier must name at least one field")
	}
	if len(fields) == 1 {
		return NewScalarSpecifier(fields[0])
	}
	if len(fields) > MaxTupleArity {
		return Specifier{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("compound key specifier has %d fields, exceeding the limit of %d", len(fields), MaxTupleArity))
	}
	seen := make(map[string]bool, len(fields))
	out := make([]string, len(fields))
	for i, f := range fields {
		if f == "" {
			return Specifier{}, jsonlterr.NewInvalidKeyError("key specifier field names must not be empty")
		}
		if seen[f] {
			return Specifier{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("key specifier names duplicate field %q", f))
		}
		seen[f] = true
		out[i] = f
	}
	return Specifier{fields: out}, nil
}

// IsScalar reports whether s names exactly one field.
func (s Specifier) IsScalar() bool { return len(s.fields) == 1 }

// Fields returns the field names named by s, in declared order.
func (s Specifier) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Arity is the number of fields s names.
func (s Specifier) Arity() int { return len(s.fields) }

// IsZero reports whether s is the zero value (no fields named yet), used
// by Table to represent "specifier not yet determined".
func (s Specifier) IsZero() bool { return len(s.fields) == 0 }

// Equal reports whether s and o name the same fields in the same order.
func (s Specifier) Equal(o Specifier) bool {
	if len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}

func (s Specifier) String() string {
	if s.IsScalar() {
		return s.fields[0]
	}
	return fmt.Sprintf("%v", s.fields)
}
