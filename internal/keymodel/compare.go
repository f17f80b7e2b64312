package keymodel

import "sort"

// Compare implements the total order of spec §4.3: type buckets order
// Integer < String < Tuple; within a bucket, numeric order for Integer,
// code-point lexicographic order for String, and element-wise comparison
// (with shorter-is-smaller on a common prefix) for Tuple.
//
// Compare returns a negative number if a < b, zero if a == b, and a
// positive number if a > b.
func Compare(a, b Key) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	switch a.kind {
	case KindInteger:
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		default:
			return 0
		}
	case KindString:
		return compareStrings(a.s, b.s)
	case KindTuple:
		return compareTuples(a.tuple[:a.arity], b.tuple[:b.arity])
	default:
		return 0
	}
}

// Equal reports whether a and b are the same key.
func Equal(a, b Key) bool { return Compare(a, b) == 0 }

func compareStrings(a, b string) int {
	ar, br := []rune(a), []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	for i := 0; i < n; i++ {
		if ar[i] != br[i] {
			return int(ar[i]) - int(br[i])
		}
	}
	return len(ar) - len(br)
}

func compareTuples(a, b []Element) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareElements(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareElements(a, b Element) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	if a.Kind == KindInteger {
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		default:
			return 0
		}
	}
	return compareStrings(a.Str, b.Str)
}

// SortKeys sorts keys in place using Compare, matching the total order
// callers must always observe when iterating a table's keys.
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return Compare(keys[i], keys[j]) < 0 })
}
