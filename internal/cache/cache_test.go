package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10)
	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok || val != 42 {
		t.Errorf("Get(key1) = %d, %v; want 42, true", val, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected missing key to be absent")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", s.Hits, s.Misses)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, string](3)
	for i := 0; i < 3; i++ {
		c.Set(i, strconv.Itoa(i))
	}

	// Touch 0 so 1 becomes the oldest.
	c.Get(0)
	c.Set(3, "3")

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Error("expected 1 to be evicted")
	}
	for _, k := range []int{0, 2, 3} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %d to survive", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheSetExistingMovesToFront(t *testing.T) {
	c := New[int, int](2)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(1, 10)
	c.Set(3, 3)

	if v, ok := c.Get(1); !ok || v != 10 {
		t.Errorf("Get(1) = %d, %v; want 10, true", v, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("expected 2 to be evicted")
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[Key, []uint32](4)
	calls := 0
	create := func() ([]uint32, error) {
		calls++
		return []uint32{0x07230203}, nil
	}

	key := KeyOf("@vertex fn vs_main() {}")
	for i := 0; i < 3; i++ {
		words, err := c.GetOrCreate(key, create)
		if err != nil {
			t.Fatal(err)
		}
		if len(words) != 1 {
			t.Fatalf("got %d words", len(words))
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestCacheGetOrCreateErrorNotCached(t *testing.T) {
	c := New[string, int](4)
	errBoom := errors.New("boom")

	if _, err := c.GetOrCreate("k", func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed create was cached")
	}
	v, err := c.GetOrCreate("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("GetOrCreate = %d, %v; want 7, nil", v, err)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string, int](4)
	c.Set("a", 1)
	c.Set("b", 2)

	if !c.Delete("a") {
		t.Error("Delete(a) = false")
	}
	if c.Delete("a") {
		t.Error("second Delete(a) = true")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Error("cache unusable after Clear")
	}
}

func TestCacheMinimumCapacity(t *testing.T) {
	c := New[int, int](0)
	c.Set(1, 1)
	c.Set(2, 2)
	if c.Len() != 1 || c.Stats().Capacity != 1 {
		t.Errorf("Len = %d, Capacity = %d; want 1, 1", c.Len(), c.Stats().Capacity)
	}
}

func TestKeyOf(t *testing.T) {
	if KeyOf("a") == KeyOf("b") {
		t.Error("distinct sources share a key")
	}
	if KeyOf("a") != KeyOf("a") {
		t.Error("key is not deterministic")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int, int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				k := (g*100 + i) % 32
				_, _ = c.GetOrCreate(k, func() (int, error) { return k, nil })
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}
