package orderedmap_test

import (
	"reflect"
	"testing"

	"github.com/evetabi/hotornot/internal/orderedmap"
)

func TestMap_PreservesInsertionOrder(t *testing.T) {
	m := orderedmap.New[string, int]()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)

	want := []string{"c", "a", "b"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestMap_SetOnExistingKeyKeepsPosition(t *testing.T) {
	m := orderedmap.New[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99)

	want := []string{"a", "b"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after re-Set = %v, want %v", got, want)
	}
	if v, _ := m.Get("a"); v != 99 {
		t.Errorf("Get(a) = %d, want 99", v)
	}
}

func TestMap_GetAndHas(t *testing.T) {
	m := orderedmap.New[string, int]()
	if _, ok := m.Get("missing"); ok {
		t.Error("Get on empty map returned ok=true")
	}
	if m.Has("missing") {
		t.Error("Has on empty map returned true")
	}

	m.Set("x", 10)
	v, ok := m.Get("x")
	if !ok || v != 10 {
		t.Errorf("Get(x) = (%d, %v), want (10, true)", v, ok)
	}
	if !m.Has("x") {
		t.Error("Has(x) = false, want true")
	}
}

func TestMap_Last(t *testing.T) {
	m := orderedmap.New[uint64, string]()
	if _, _, ok := m.Last(); ok {
		t.Error("Last on empty map returned ok=true")
	}

	m.Set(5, "first")
	m.Set(2, "second")
	key, val, ok := m.Last()
	if !ok || key != 2 || val != "second" {
		t.Errorf("Last() = (%d, %s, %v), want (2, second, true)", key, val, ok)
	}
}

func TestMap_RangeStopsEarly(t *testing.T) {
	m := orderedmap.New[int, int]()
	for i := 0; i < 5; i++ {
		m.Set(i, i*i)
	}

	var seen []int
	m.Range(func(key int, value int) bool {
		seen = append(seen, key)
		return key < 2
	})

	want := []int{0, 1, 2}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("Range visited %v, want %v", seen, want)
	}
}

func TestSortedKeysUint64_IgnoresInsertionOrder(t *testing.T) {
	m := orderedmap.New[uint64, string]()
	m.Set(3, "c")
	m.Set(1, "a")
	m.Set(2, "b")

	want := []uint64{1, 2, 3}
	if got := orderedmap.SortedKeysUint64(m); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedKeysUint64() = %v, want %v", got, want)
	}
}
