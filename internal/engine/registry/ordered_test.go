package registry_test

import (
	"cmp"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hangar/internal/engine/registry"
	"pgregory.net/rapid"
)

type item struct {
	rank int
	name string
}

func compareItems(a, b item) int {
	return cmp.Compare(a.rank, b.rank)
}

func TestOrdered_InsertGetRemove(t *testing.T) {
	o := registry.NewOrdered[string](compareItems)

	_, existed := o.Insert("a", item{rank: 3, name: "a"})
	assert.False(t, existed)
	o.Insert("b", item{rank: 1, name: "b"})
	o.Insert("c", item{rank: 2, name: "c"})

	require.Equal(t, 3, o.Len())
	assert.Equal(t, []string{"b", "c", "a"}, o.Keys())

	got, ok := o.Get("c")
	require.True(t, ok)
	assert.Equal(t, item{rank: 2, name: "c"}, got)

	prev, existed := o.Insert("b", item{rank: 9, name: "b2"})
	assert.True(t, existed)
	assert.Equal(t, item{rank: 1, name: "b"}, prev)
	assert.Equal(t, []string{"c", "a", "b"}, o.Keys())

	removed, ok := o.Remove("a")
	require.True(t, ok)
	assert.Equal(t, 3, removed.rank)
	assert.False(t, o.Contains("a"))
	assert.Equal(t, []string{"c", "b"}, o.Keys())

	_, ok = o.Remove("missing")
	assert.False(t, ok)
}

func TestOrdered_EqualValuesKeepInsertionOrder(t *testing.T) {
	o := registry.NewOrdered[string](compareItems)
	o.Insert("x", item{rank: 1})
	o.Insert("y", item{rank: 1})
	o.Insert("z", item{rank: 1})

	assert.Equal(t, []string{"x", "y", "z"}, o.Keys())

	o.Remove("y")
	assert.Equal(t, []string{"x", "z"}, o.Keys())
	assert.Equal(t, 1, o.Index("z"))
}

func TestOrdered_Nth(t *testing.T) {
	o := registry.NewOrdered[string](compareItems)
	o.Insert("a", item{rank: 2})
	o.Insert("b", item{rank: 1})

	k, v, ok := o.Nth(0)
	require.True(t, ok)
	assert.Equal(t, "b", k)
	assert.Equal(t, 1, v.rank)

	_, _, ok = o.Nth(2)
	assert.False(t, ok)
	_, _, ok = o.Nth(-1)
	assert.False(t, ok)
	assert.Equal(t, -1, o.Index("nope"))
}

func TestOrdered_Retain(t *testing.T) {
	o := registry.NewOrdered[string](compareItems)
	for i, k := range []string{"a", "b", "c", "d"} {
		o.Insert(k, item{rank: i})
	}

	o.Retain(func(_ string, v item) bool { return v.rank%2 == 0 })

	assert.Equal(t, []string{"a", "c"}, o.Keys())
	assert.False(t, o.Contains("b"))
	assert.False(t, o.Contains("d"))
}

func TestOrdered_AllStopsEarly(t *testing.T) {
	o := registry.NewOrdered[string](compareItems)
	o.Insert("a", item{rank: 1})
	o.Insert("b", item{rank: 2})

	var seen []string
	for k := range o.All() {
		seen = append(seen, k)
		break
	}
	assert.Equal(t, []string{"a"}, seen)
}

// checkInvariants verifies that the registry agrees with a plain map model.
func checkInvariants(rt *rapid.T, o *registry.Ordered[string, item], model map[string]item) {
	if o.Len() != len(model) {
		rt.Fatalf("len %d, model %d", o.Len(), len(model))
	}

	values := o.Values()
	if !slices.IsSortedFunc(values, compareItems) {
		rt.Fatalf("values not sorted: %v", values)
	}

	keys := o.Keys()
	if !slices.Equal(slices.Sorted(slices.Values(keys)), slices.Sorted(maps.Keys(model))) {
		rt.Fatalf("keys %v, model %v", keys, slices.Sorted(maps.Keys(model)))
	}

	for i, k := range keys {
		want := model[k]
		got, ok := o.Get(k)
		if !ok || got != want {
			rt.Fatalf("get %q: got %v (%v), want %v", k, got, ok, want)
		}
		if values[i] != want {
			rt.Fatalf("position %d holds %v, want %v", i, values[i], want)
		}
		if o.Index(k) != i {
			rt.Fatalf("index of %q is %d, want %d", k, o.Index(k), i)
		}
	}
}

func TestOrdered_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		o := registry.NewOrdered[string](compareItems)
		model := make(map[string]item)

		keyGen := rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "f", "g", "h"})
		steps := rapid.IntRange(0, 60).Draw(rt, "steps")

		for range steps {
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				k := keyGen.Draw(rt, "key")
				v := item{rank: rapid.IntRange(0, 5).Draw(rt, "rank"), name: k}
				o.Insert(k, v)
				model[k] = v
				if got, _ := o.Get(k); got != v {
					rt.Fatalf("get after insert: got %v, want %v", got, v)
				}
			case 1:
				k := keyGen.Draw(rt, "key")
				_, ok := o.Remove(k)
				_, inModel := model[k]
				if ok != inModel {
					rt.Fatalf("remove %q reported %v, model has %v", k, ok, inModel)
				}
				delete(model, k)
				if o.Contains(k) || o.Index(k) != -1 {
					rt.Fatalf("key %q still present after remove", k)
				}
			case 2:
				threshold := rapid.IntRange(0, 5).Draw(rt, "threshold")
				keep := func(_ string, v item) bool { return v.rank >= threshold }
				o.Retain(keep)
				maps.DeleteFunc(model, func(k string, v item) bool { return !keep(k, v) })
			}
			checkInvariants(rt, o, model)
		}
	})
}
