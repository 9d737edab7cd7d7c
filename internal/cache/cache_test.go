package cache

import (
	"strconv"
	"testing"
)

func TestNewClampsCapacity(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if got := New[string, int](n, nil).Capacity(); got != 1 {
			t.Errorf("New(%d).Capacity() = %d, want 1", n, got)
		}
	}
}

func TestGetPut(t *testing.T) {
	c := New[string, int](4, nil)
	c.Put("a", 1)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) found a missing key")
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Len != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](3, func(k string, _ int) { evicted = append(evicted, k) })

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Get("a") // b is now the oldest
	c.Put("d", 4)

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v, want [b]", evicted)
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s missing after eviction", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestPutReplaceEvictsOldValue(t *testing.T) {
	var got []int
	c := New[string, int](2, func(_ string, v int) { got = append(got, v) })
	c.Put("a", 1)
	c.Put("a", 2)

	if len(got) != 1 || got[0] != 1 {
		t.Errorf("evicted values = %v, want [1]", got)
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestPutSameValueKeepsIt(t *testing.T) {
	type res struct{ released bool }
	c := New[string, *res](2, func(_ string, r *res) { r.released = true })
	a, b := &res{}, &res{}
	c.Put("a", a)
	c.Put("b", b)
	c.Put("a", a) // a is live again and must not be released

	if a.released {
		t.Error("re-putting the held value released it")
	}
	if n := c.Stats().Evictions; n != 0 {
		t.Errorf("Evictions = %d, want 0", n)
	}
	c.Put("c", &res{})
	if !b.released || a.released {
		t.Errorf("after overflow released a=%v b=%v, want only b", a.released, b.released)
	}
}

func TestRemoveAndClear(t *testing.T) {
	count := 0
	c := New[int, string](8, func(int, string) { count++ })
	for i := 0; i < 5; i++ {
		c.Put(i, strconv.Itoa(i))
	}
	if !c.Remove(2) {
		t.Error("Remove(2) = false")
	}
	if c.Remove(2) {
		t.Error("second Remove(2) = true")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if count != 5 {
		t.Errorf("eviction callback ran %d times, want 5", count)
	}
	if c.Stats().Evictions != 5 {
		t.Errorf("Evictions = %d, want 5", c.Stats().Evictions)
	}

	// The cache stays usable after Clear.
	c.Put(9, "nine")
	if v, ok := c.Get(9); !ok || v != "nine" {
		t.Errorf("Get(9) = %q, %v", v, ok)
	}
}

func TestLRUListOrder(t *testing.T) {
	var l lruList[int]
	n1 := l.PushFront(1)
	l.PushFront(2)
	n3 := l.PushFront(3)

	if k, _ := l.Oldest(); k != 1 {
		t.Errorf("Oldest() = %d, want 1", k)
	}
	l.MoveToFront(n1)
	if k, _ := l.Oldest(); k != 2 {
		t.Errorf("Oldest() after MoveToFront = %d, want 2", k)
	}
	l.Remove(n3)
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
	l.Clear()
	if _, ok := l.Oldest(); ok {
		t.Error("Oldest() on empty list reported a key")
	}
}
