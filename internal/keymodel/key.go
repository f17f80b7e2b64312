// Package keymodel implements the JSONLT Key sum type (§4.3): Integer,
// String, and Tuple variants, their total order, canonical serialization,
// and byte-length measurement.
package keymodel

import (
	"fmt"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
)

// Kind distinguishes the three Key variants.
type Kind int

const (
	KindInteger Kind = iota
	KindString
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// MaxTupleArity is the largest number of elements a Tuple key may carry.
const MaxTupleArity = 16

// MaxIntMagnitude is the largest absolute value an Integer key (or tuple
// element) may take: 2^53 - 1, the largest integer a float64 represents
// exactly.
const MaxIntMagnitude = (int64(1) << 53) - 1

// Element is one slot of a Tuple key: either an Integer or a String.
type Element struct {
	Kind Kind
	Int  int64
	Str  string
}

// IntElement constructs an Integer tuple element.
func IntElement(i int64) Element { return Element{Kind: KindInteger, Int: i} }

// StrElement constructs a String tuple element.
func StrElement(s string) Element { return Element{Kind: KindString, Str: s} }

// Key is a JSONLT key: Integer, String, or a Tuple of 1-16 Integer/String
// elements. Key is a comparable value type (fixed-size tuple storage) so it
// can be used directly as a Go map key, matching the spec's requirement
// that a Key → Record mapping be the logical state's representation.
type Key struct {
	kind  Kind
	i     int64
	s     string
	arity int
	tuple [MaxTupleArity]Element
}

// NewInteger builds an Integer key, validating the magnitude bound.
func NewInteger(i int64) (Key, error) {
	if i > MaxIntMagnitude || i < -MaxIntMagnitude {
		return Key{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("integer key %d exceeds the 53-bit signed range", i))
	}
	return Key{kind: KindInteger, i: i}, nil
}

// MustInteger is NewInteger without an error return, for tests and
// constants where the value is known to be in range.
func MustInteger(i int64) Key {
	k, err := NewInteger(i)
	if err != nil {
		panic(err)
	}
	return k
}

// NewString builds a String key. Any string, including empty, is valid.
func NewString(s string) Key {
	return Key{kind: KindString, s: s}
}

// NewTuple builds a Tuple key from 1-16 elements, each itself an Integer
// (magnitude-checked) or String element.
func NewTuple(elems []Element) (Key, error) {
	n := len(elems)
	if n == 0 {
		return Key{}, jsonlterr.NewInvalidKeyError("empty tuple is not a valid key")
	}
	if n > MaxTupleArity {
		return Key{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("tuple key has %d elements, exceeding the limit of %d", n, MaxTupleArity))
	}
	var k Key
	k.kind = KindTuple
	k.arity = n
	for idx, e := range elems {
		if e.Kind == KindInteger && (e.Int > MaxIntMagnitude || e.Int < -MaxIntMagnitude) {
			return Key{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("tuple element %d: integer %d exceeds the 53-bit signed range", idx, e.Int))
		}
		if e.Kind != KindInteger && e.Kind != KindString {
			return Key{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("tuple element %d: must be an integer or string", idx))
		}
		k.tuple[idx] = e
	}
	return k, nil
}

// Kind reports which variant k is.
func (k Key) Kind() Kind { return k.kind }

// Int returns k's integer value and true if k is an Integer key.
func (k Key) Int() (int64, bool) {
	if k.kind != KindInteger {
		return 0, false
	}
	return k.i, true
}

// Str returns k's string value and true if k is a String key.
func (k Key) Str() (string, bool) {
	if k.kind != KindString {
		return "", false
	}
	return k.s, true
}

// Tuple returns k's elements (as a fresh slice) and true if k is a Tuple
// key.
func (k Key) Tuple() ([]Element, bool) {
	if k.kind != KindTuple {
		return nil, false
	}
	out := make([]Element, k.arity)
	copy(out, k.tuple[:k.arity])
	return out, true
}

// Arity returns the number of elements in a Tuple key, or 0 otherwise.
func (k Key) Arity() int {
	if k.kind != KindTuple {
		return 0
	}
	return k.arity
}

// ElementToValue converts a JSON value that is known to be valid key
// material (string or in-range integer) into an Element.
func ElementToValue(v jsonval.Value) (Element, error) {
	key, err := FromJSON(v)
	if err != nil {
		return Element{}, err
	}
	switch key.kind {
	case KindInteger:
		return IntElement(key.i), nil
	case KindString:
		return StrElement(key.s), nil
	default:
		return Element{}, jsonlterr.NewInvalidKeyError("tuple elements cannot themselves be tuples")
	}
}
