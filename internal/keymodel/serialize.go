package keymodel

import (
	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
)

// Serialize produces k's canonical on-disk encoding: an Integer serializes
// as a decimal literal, a String as a canonical JSON string, and a Tuple as
// a canonical JSON array of its elements.
func Serialize(k Key) (string, error) {
	return canon.Serialize(toJSON(k))
}

// Length returns the byte length of k's canonical serialization, the
// "key length" bounded at 1024 bytes by spec §3 invariant 6.
func Length(k Key) (int, error) {
	s, err := Serialize(k)
	if err != nil {
		return 0, err
	}
	return len(s), nil
}

func toJSON(k Key) jsonval.Value {
	switch k.kind {
	case KindInteger:
		return jsonval.Int64(k.i)
	case KindString:
		return k.s
	case KindTuple:
		arr := make(jsonval.Array, k.arity)
		for i, e := range k.tuple[:k.arity] {
			if e.Kind == KindInteger {
				arr[i] = jsonval.Int64(e.Int)
			} else {
				arr[i] = e.Str
			}
		}
		return arr
	default:
		return nil
	}
}
