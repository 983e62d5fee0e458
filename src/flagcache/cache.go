package flagcache

import (
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

type entry struct {
	value     bool
	writtenAt time.Time
}

// Cache holds per-user flag verdicts for a fixed TTL. An entry whose age has
// reached the TTL is reported absent and dropped lazily; there is no
// background sweeper. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]map[string]entry // flag key -> user id -> verdict
}

func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock builds a cache on an explicit clock so expiry can be tested
// without sleeping.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]map[string]entry),
	}
}

func (t *Cache) Get(flagKey string, userID string) (bool, bool) {
	t.mu.RLock()
	e, ok := t.entries[flagKey][userID]
	t.mu.RUnlock()
	if !ok {
		return false, false
	}
	if t.now().Sub(e.writtenAt) >= t.ttl {
		t.mu.Lock()
		// a fresh verdict may have landed between the locks
		if cur, ok := t.entries[flagKey][userID]; ok && t.now().Sub(cur.writtenAt) >= t.ttl {
			t.dropLocked(flagKey, userID)
		}
		t.mu.Unlock()
		return false, false
	}
	return e.value, true
}

func (t *Cache) Put(flagKey string, userID string, value bool) {
	t.mu.Lock()
	users, ok := t.entries[flagKey]
	if !ok {
		users = make(map[string]entry)
		t.entries[flagKey] = users
	}
	users[userID] = entry{value: value, writtenAt: t.now()}
	t.mu.Unlock()
}

// Invalidate drops every cached verdict for a flag.
func (t *Cache) Invalidate(flagKey string) {
	t.mu.Lock()
	delete(t.entries, flagKey)
	t.mu.Unlock()
}

// InvalidateUser drops the verdict for a single (flag, user) pair.
func (t *Cache) InvalidateUser(flagKey string, userID string) {
	t.mu.Lock()
	t.dropLocked(flagKey, userID)
	t.mu.Unlock()
}

func (t *Cache) Clear() {
	t.mu.Lock()
	t.entries = make(map[string]map[string]entry)
	t.mu.Unlock()
}

// Len counts live entries, expired ones included until they are touched.
func (t *Cache) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, users := range t.entries {
		n += len(users)
	}
	return n
}

func (t *Cache) dropLocked(flagKey string, userID string) {
	users, ok := t.entries[flagKey]
	if !ok {
		return
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(t.entries, flagKey)
	}
}
