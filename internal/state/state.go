// Package state folds a JSONLT file's sequence of records and
// tombstones into the logical Key -> Record state they describe (spec
// §4.9): replay left to right, a record sets its key's current value, a
// tombstone clears it.
package state

import (
	"fmt"

	"github.com/jsonlt/jsonlt-go/internal/keymodel"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/reader"
	"github.com/jsonlt/jsonlt-go/internal/recordmodel"
)

// Compute replays lines in order against spec, returning the resulting
// Key -> Record map. A line that fails validation or key extraction
// aborts the fold with the underlying error, annotated with its line
// number.
func Compute(lines []reader.Line, spec keymodel.Specifier) (map[keymodel.Key]jsonval.Object, error) {
	out := make(map[keymodel.Key]jsonval.Object)
	for _, line := range lines {
		if recordmodel.IsTombstone(line.Object) {
			if err := recordmodel.ValidateTombstone(line.Object, spec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line.Number, err)
			}
			key, err := recordmodel.ExtractKey(line.Object, spec)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line.Number, err)
			}
			delete(out, key)
			continue
		}

		if err := recordmodel.ValidateRecord(line.Object, spec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Number, err)
		}
		key, err := recordmodel.ExtractKey(line.Object, spec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Number, err)
		}
		out[key] = line.Object
	}
	return out, nil
}
