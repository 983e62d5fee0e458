package flagcache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(ttl, clock.Now), clock
}

func TestGetPut(t *testing.T) {
	cache, _ := newTestCache(DefaultTTL)

	if _, ok := cache.Get("f", "u1"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	cache.Put("f", "u1", true)
	cache.Put("f", "u2", false)

	if v, ok := cache.Get("f", "u1"); !ok || !v {
		t.Fatalf("expected cached true, got %v %v", v, ok)
	}
	if v, ok := cache.Get("f", "u2"); !ok || v {
		t.Fatalf("expected cached false, got %v %v", v, ok)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestExpiryBoundary(t *testing.T) {
	cache, clock := newTestCache(5 * time.Minute)
	cache.Put("f", "u1", true)

	clock.Advance(5*time.Minute - time.Nanosecond)
	if _, ok := cache.Get("f", "u1"); !ok {
		t.Fatalf("entry just under the TTL must still hit")
	}

	clock.Advance(time.Nanosecond)
	if _, ok := cache.Get("f", "u1"); ok {
		t.Fatalf("entry at exactly the TTL must miss")
	}

	// the expired entry is dropped, not just hidden
	if cache.Len() != 0 {
		t.Fatalf("expected lazy eviction, %d entries left", cache.Len())
	}
}

func TestPutRefreshesAge(t *testing.T) {
	cache, clock := newTestCache(5 * time.Minute)
	cache.Put("f", "u1", true)

	clock.Advance(4 * time.Minute)
	cache.Put("f", "u1", false)

	clock.Advance(4 * time.Minute)
	v, ok := cache.Get("f", "u1")
	if !ok {
		t.Fatalf("rewritten entry must live a full TTL from the rewrite")
	}
	if v {
		t.Fatalf("expected the rewritten value")
	}
}

func TestInvalidateFlagScope(t *testing.T) {
	cache, _ := newTestCache(DefaultTTL)
	cache.Put("f1", "u1", true)
	cache.Put("f1", "u2", true)
	cache.Put("f2", "u1", true)

	cache.Invalidate("f1")

	if _, ok := cache.Get("f1", "u1"); ok {
		t.Fatalf("expected f1/u1 invalidated")
	}
	if _, ok := cache.Get("f1", "u2"); ok {
		t.Fatalf("expected f1/u2 invalidated")
	}
	if _, ok := cache.Get("f2", "u1"); !ok {
		t.Fatalf("unrelated flag must survive")
	}
}

func TestInvalidateUserScope(t *testing.T) {
	cache, _ := newTestCache(DefaultTTL)
	cache.Put("f1", "u1", true)
	cache.Put("f1", "u2", false)

	cache.InvalidateUser("f1", "u1")

	if _, ok := cache.Get("f1", "u1"); ok {
		t.Fatalf("expected f1/u1 invalidated")
	}
	if _, ok := cache.Get("f1", "u2"); !ok {
		t.Fatalf("other users of the flag must survive")
	}

	// unknown pairs are a no-op
	cache.InvalidateUser("f1", "nobody")
	cache.InvalidateUser("missing", "u1")
}

func TestClear(t *testing.T) {
	cache, _ := newTestCache(DefaultTTL)
	cache.Put("f1", "u1", true)
	cache.Put("f2", "u2", false)

	cache.Clear()

	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	cache, _ := newTestCache(DefaultTTL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				user := fmt.Sprintf("u%d-%d", n, j%10)
				cache.Put("f", user, j%2 == 0)
				cache.Get("f", user)
				if j%100 == 0 {
					cache.Invalidate("f")
				}
			}
		}(i)
	}
	wg.Wait()
}
