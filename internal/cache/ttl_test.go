// internal/cache/ttl_test.go
//
// Unit-tests for the TTL store.
//
// Run: go test ./internal/cache -v

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTTL_SetGet(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Set("a", 1)

	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Fatalf("Get = (%d, %v), want (1, true)", got, ok)
	}
}

func TestTTL_StaleEntryIsMiss(t *testing.T) {
	c := NewTTL[int](10 * time.Millisecond)
	c.Set("a", 1)
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("stale entry returned as hit")
	}
}

func TestTTL_DeleteIsImmediate(t *testing.T) {
	c := NewTTL[string](time.Minute)
	c.Set("a", "x")
	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry still visible")
	}
}

func TestTTL_Purge(t *testing.T) {
	c := NewTTL[string](time.Minute)
	c.Set("a", "x")
	c.Set("b", "y")
	c.Purge()

	if c.Len() != 0 {
		t.Fatalf("Len = %d after Purge, want 0", c.Len())
	}
}

func TestTTL_Sweep(t *testing.T) {
	c := NewTTL[int](10 * time.Millisecond)
	c.Set("old", 1)
	time.Sleep(25 * time.Millisecond)
	c.Set("fresh", 2)

	var evicted []string
	n := c.Sweep(func(key string, _ int) { evicted = append(evicted, key) })

	if n != 1 || len(evicted) != 1 || evicted[0] != "old" {
		t.Fatalf("Sweep removed %d (%v), want just \"old\"", n, evicted)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatal("Sweep evicted a live entry")
	}
}

func TestTTL_ConcurrentAccess(t *testing.T) {
	c := NewTTL[int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			for j := 0; j < 100; j++ {
				c.Set(key, j)
				c.Get(key)
				if j%10 == 0 {
					c.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()
}
