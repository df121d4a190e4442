// Package registry provides a keyed container iterated in value order.
package registry

import (
	"iter"
	"slices"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Ordered maps keys to values and iterates them in ascending value order.
//
// Lookups go through a map. Iteration and positional access go through a
// slice kept sorted by compare, so Nth is O(1) and mutations are O(n).
// Entries whose values compare equal keep their insertion order.
//
// Ordered is not safe for concurrent use.
type Ordered[K comparable, V any] struct {
	index   map[K]V
	sorted  []entry[K, V]
	compare func(a, b V) int
}

// NewOrdered creates an empty registry ordered by compare.
func NewOrdered[K comparable, V any](compare func(a, b V) int) *Ordered[K, V] {
	return &Ordered[K, V]{
		index:   make(map[K]V),
		compare: compare,
	}
}

// Len returns the number of entries.
func (o *Ordered[K, V]) Len() int {
	return len(o.sorted)
}

// Get returns the value stored under key.
func (o *Ordered[K, V]) Get(key K) (V, bool) {
	v, ok := o.index[key]
	return v, ok
}

// Contains reports whether key is present.
func (o *Ordered[K, V]) Contains(key K) bool {
	_, ok := o.index[key]
	return ok
}

// Insert stores value under key, replacing and repositioning any previous value.
// It returns the previous value and whether one existed.
func (o *Ordered[K, V]) Insert(key K, value V) (V, bool) {
	prev, existed := o.Remove(key)

	// Upper bound: after every element that does not sort after value.
	i, _ := slices.BinarySearchFunc(o.sorted, value, func(e entry[K, V], target V) int {
		if o.compare(e.value, target) <= 0 {
			return -1
		}
		return 1
	})
	o.sorted = slices.Insert(o.sorted, i, entry[K, V]{key: key, value: value})
	o.index[key] = value
	return prev, existed
}

// Remove deletes key and returns the value it held.
func (o *Ordered[K, V]) Remove(key K) (V, bool) {
	value, ok := o.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(o.index, key)

	if i := o.position(key, value); i >= 0 {
		o.sorted = slices.Delete(o.sorted, i, i+1)
	}
	return value, true
}

// Retain keeps only the entries for which keep returns true.
func (o *Ordered[K, V]) Retain(keep func(key K, value V) bool) {
	o.sorted = slices.DeleteFunc(o.sorted, func(e entry[K, V]) bool {
		if keep(e.key, e.value) {
			return false
		}
		delete(o.index, e.key)
		return true
	})
}

// Nth returns the entry at position i in ascending value order.
func (o *Ordered[K, V]) Nth(i int) (K, V, bool) {
	if i < 0 || i >= len(o.sorted) {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	e := o.sorted[i]
	return e.key, e.value, true
}

// Index returns the position of key in ascending value order, or -1.
func (o *Ordered[K, V]) Index(key K) int {
	value, ok := o.index[key]
	if !ok {
		return -1
	}
	return o.position(key, value)
}

// All iterates entries in ascending value order.
// The registry must not be mutated during iteration.
func (o *Ordered[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range o.sorted {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Values returns a snapshot of the values in ascending value order.
func (o *Ordered[K, V]) Values() []V {
	out := make([]V, len(o.sorted))
	for i, e := range o.sorted {
		out[i] = e.value
	}
	return out
}

// Keys returns a snapshot of the keys in ascending value order.
func (o *Ordered[K, V]) Keys() []K {
	out := make([]K, len(o.sorted))
	for i, e := range o.sorted {
		out[i] = e.key
	}
	return out
}

// position locates the slice index holding key, whose stored value is value.
func (o *Ordered[K, V]) position(key K, value V) int {
	i, _ := slices.BinarySearchFunc(o.sorted, value, func(e entry[K, V], target V) int {
		return o.compare(e.value, target)
	})
	for ; i < len(o.sorted) && o.compare(o.sorted[i].value, value) == 0; i++ {
		if o.sorted[i].key == key {
			return i
		}
	}
	return -1
}
