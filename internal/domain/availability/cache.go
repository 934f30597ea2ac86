package availability

import (
	"sync"
	"time"

	"github.com/clinicdesk/api/internal/domain/schedule"
	"github.com/google/uuid"
)

// SpecialDateCache caches special-date lookups with a per-instance TTL. A nil
// value is cached too, so the common "no special date" case also avoids
// repeated storage reads. It is an optimization only; entries expire lazily.
type SpecialDateCache struct {
	entries map[string]*specialDateEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

type specialDateEntry struct {
	value     *schedule.SpecialDate
	expiresAt time.Time
}

// NewSpecialDateCache creates a cache with the given TTL. A zero TTL disables
// caching entirely.
func NewSpecialDateCache(ttl time.Duration) *SpecialDateCache {
	return &SpecialDateCache{
		entries: make(map[string]*specialDateEntry),
		ttl:     ttl,
	}
}

func cacheKey(doctorID uuid.UUID, date string) string {
	return doctorID.String() + ":" + date
}

// Get returns the cached value for (doctor, date). The second return reports
// whether a live entry was found; the value itself may be nil.
func (c *SpecialDateCache) Get(doctorID uuid.UUID, date string) (*schedule.SpecialDate, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	key := cacheKey(doctorID, date)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores the lookup result for (doctor, date).
func (c *SpecialDateCache) Set(doctorID uuid.UUID, date string, value *schedule.SpecialDate) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(doctorID, date)] = &specialDateEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate drops the entry for (doctor, date), if any. Called when staff
// change special dates so bookings see the change immediately.
func (c *SpecialDateCache) Invalidate(doctorID uuid.UUID, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(doctorID, date))
}
