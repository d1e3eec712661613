package utils

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Reverse returns a reversed copy of s, e.g. to turn a bdaddr_t into the
// usual most significant byte first address order.
func Reverse[S ~[]E, E any](s S) S {
	out := make(S, len(s))

	for i, v := range s {
		out[len(s)-1-i] = v
	}

	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[M ~map[K]V, K constraints.Ordered, V any](m M) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)

	return keys
}
