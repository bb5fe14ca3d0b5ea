package internal

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// IterSeq2Concat yields each key/value sequence in turn.
// Later sequences may repeat keys of earlier ones; consumers that
// collect into a map see the last value.
func IterSeq2Concat[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, val := range seq {
				if !yield(key, val) {
					return
				}
			}
		}
	}
}

// IterSorted yields the entries of a map in key order.
func IterSorted[K cmp.Ordered, V any](m map[K]V) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, key := range slices.Sorted(maps.Keys(m)) {
			if !yield(key, m[key]) {
				return
			}
		}
	}
}
