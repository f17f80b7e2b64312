package keymodel

import (
	"fmt"
	"math"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
)

// FromJSON maps a parsed JSON value back to a Key (spec §4.3
// key_from_json): strings and in-range non-bool integers pass through
// unchanged; integer-valued floats are coerced to Integer; arrays recurse
// element-wise into a Tuple; any other shape -- bool, null, object, a
// float with a non-zero fractional part, an out-of-range integer, or a
// nested array -- is a type error.
func FromJSON(v jsonval.Value) (Key, error) {
	switch t := v.(type) {
	case string:
		return NewString(t), nil
	case jsonval.Int64:
		return NewInteger(int64(t))
	case int64:
		return NewInteger(t)
	case int:
		return NewInteger(int64(t))
	case float64:
		i, err := floatToInt(t)
		if err != nil {
			return Key{}, err
		}
		return NewInteger(i)
	case jsonval.Array:
		elems := make([]Element, len(t))
		for i, e := range t {
			el, err := ElementToValue(e)
			if err != nil {
				return Key{}, fmt.Errorf("tuple element %d: %w", i, err)
			}
			elems[i] = el
		}
		return NewTuple(elems)
	default:
		return Key{}, jsonlterr.NewInvalidKeyError(fmt.Sprintf("value of type %T cannot be used as a key", v))
	}
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, jsonlterr.NewInvalidKeyError("non-finite number cannot be used as a key")
	}
	if f != math.Trunc(f) {
		return 0, jsonlterr.NewInvalidKeyError(fmt.Sprintf("non-integer-valued number %v cannot be used as a key", f))
	}
	return int64(f), nil
}
