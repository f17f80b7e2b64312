// Package jsonlt implements an embedded, single-file, append-only
// record store backed by newline-delimited canonical JSON (spec §1):
// key-addressed records with durable writes, optimistic transactions,
// and compaction.
package jsonlt

import (
	"github.com/jsonlt/jsonlt-go/internal/header"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
)

// Key is the sum-typed record key: Integer, String, or Tuple (spec §3).
type Key = keymodel.Key

// KeySpecifier names the field(s) a table extracts a Key from.
type KeySpecifier = keymodel.Specifier

// Record is a stored JSON object.
type Record = jsonval.Object

// Header is the optional first-line format header.
type Header = header.Header

// Element is one field of a compound (tuple) key.
type Element = keymodel.Element

// Error kinds (spec §7). Use errors.As against these concrete types, or
// jsonlterr.KindOf(err) against the Kind constants, to classify a
// failure.
type (
	ParseError       = jsonlterr.ParseError
	InvalidKeyError  = jsonlterr.InvalidKeyError
	LimitError       = jsonlterr.LimitError
	LockError        = jsonlterr.LockError
	FileError        = jsonlterr.FileError
	ConflictError    = jsonlterr.ConflictError
	TransactionError = jsonlterr.TransactionError
)

// NewKeyFromInt, NewKeyFromString, and NewKeyFromTuple build Keys
// directly, for callers that already know a record's key rather than
// extracting it from a Record.
func NewKeyFromInt(i int64) (Key, error) { return keymodel.NewInteger(i) }
func NewKeyFromString(s string) Key      { return keymodel.NewString(s) }
func NewKeyFromTuple(elems []Element) (Key, error) { return keymodel.NewTuple(elems) }

// Kind classifies an error into the §7 taxonomy, and KindOf extracts it.
type Kind = jsonlterr.Kind

const (
	KindParse       = jsonlterr.KindParse
	KindInvalidKey  = jsonlterr.KindInvalidKey
	KindLimit       = jsonlterr.KindLimit
	KindLock        = jsonlterr.KindLock
	KindFile        = jsonlterr.KindFile
	KindConflict    = jsonlterr.KindConflict
	KindTransaction = jsonlterr.KindTransaction
)

// KindOf reports the taxonomy Kind of err, if err (or something it
// wraps) is one of this package's error types.
func KindOf(err error) (Kind, bool) { return jsonlterr.KindOf(err) }

// NewScalarSpecifier and NewCompoundSpecifier build KeySpecifiers.
func NewScalarSpecifier(field string) (KeySpecifier, error) {
	return keymodel.NewScalarSpecifier(field)
}

func NewCompoundSpecifier(fields []string) (KeySpecifier, error) {
	return keymodel.NewCompoundSpecifier(fields)
}
