package jsonlt

import (
	"sort"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
)

// stateView is the read contract Table and Transaction both serve (spec
// §9's "two-tier polymorphism"): a logical Key -> Record state plus the
// key specifier that produced it. Table serves it from its cached
// logical state; Transaction serves it from snapshot+write_buffer.
type stateView interface {
	viewState() map[keymodel.Key]jsonval.Object
	viewSpec() keymodel.Specifier
}

// Item is one (Key, Record) pair, as returned by Items.
type Item struct {
	Key    Key
	Record Record
}

func checkKey(key Key) error {
	if key.Kind() == keymodel.KindTuple && key.Arity() == 0 {
		return jsonlterr.NewInvalidKeyError("empty tuple is not a valid key")
	}
	return nil
}

func viewGet(v stateView, key Key) (Record, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	r, ok := v.viewState()[key]
	if !ok {
		return nil, false, nil
	}
	return jsonval.DeepCopy(r).(jsonval.Object), true, nil
}

func viewHas(v stateView, key Key) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	_, ok := v.viewState()[key]
	return ok, nil
}

func viewCount(v stateView) int { return len(v.viewState()) }

func viewKeys(v stateView) []Key {
	state := v.viewState()
	keys := make([]Key, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keymodel.Compare(keys[i], keys[j]) < 0 })
	return keys
}

func viewAll(v stateView) []Record {
	keys := viewKeys(v)
	state := v.viewState()
	out := make([]Record, len(keys))
	for i, k := range keys {
		out[i] = jsonval.DeepCopy(state[k]).(jsonval.Object)
	}
	return out
}

func viewItems(v stateView) []Item {
	keys := viewKeys(v)
	state := v.viewState()
	out := make([]Item, len(keys))
	for i, k := range keys {
		out[i] = Item{Key: k, Record: jsonval.DeepCopy(state[k]).(jsonval.Object)}
	}
	return out
}

// viewFind scans in key order, collecting records for which pred
// returns true. limit <= 0 means unlimited.
func viewFind(v stateView, pred func(Record) bool, limit int) []Record {
	keys := viewKeys(v)
	state := v.viewState()
	var out []Record
	for _, k := range keys {
		r := state[k]
		if pred(r) {
			out = append(out, jsonval.DeepCopy(r).(jsonval.Object))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func viewFindOne(v stateView, pred func(Record) bool) (Record, bool) {
	found := viewFind(v, pred, 1)
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}
