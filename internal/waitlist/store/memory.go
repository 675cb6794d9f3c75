package store

import (
	"context"
	"sync"
	"time"
)

type rateEntry struct {
	bucket     RateBucket
	expiration time.Time
}

// Memory is an in-memory implementation of Store using maps with mutex
// protection.
//
// WARNING: This implementation is NOT suitable for replicated deployments.
// Each instance maintains its own separate state, so duplicate detection and
// rate limits are not shared across instances.
//
// Use Memory only for:
//   - Local development and testing
//   - Single-instance deployments where horizontal scaling is not needed
//
// For production deployments, use the Redis store instead.
type Memory struct {
	mu      sync.RWMutex
	markers map[string]string
	signups []Signup
	count   int64
	rates   map[string]*rateEntry
	stopCh  chan struct{}
}

// NewMemory creates a new in-memory store with automatic cleanup of expired
// rate-limit buckets. A background goroutine runs every minute to remove
// expired entries and prevent unbounded growth.
//
// Important: You must call Close() when done to stop the cleanup goroutine.
func NewMemory() *Memory {
	m := &Memory{
		markers: make(map[string]string),
		rates:   make(map[string]*rateEntry),
		stopCh:  make(chan struct{}),
	}

	go m.cleanup()
	return m
}

// AddSignup claims the membership marker and appends the record under a
// single write lock, so the duplicate check and counter increment cannot
// interleave with a concurrent signup for the same email.
func (m *Memory) AddSignup(_ context.Context, rec Signup) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.markers[rec.Email]; exists {
		return 0, ErrDuplicateEmail
	}

	m.markers[rec.Email] = rec.Timestamp
	m.signups = append(m.signups, rec)
	m.count++
	return m.count, nil
}

// Exists reports whether a membership marker is present for the email.
func (m *Memory) Exists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.markers[email]
	return ok, nil
}

// Count returns the current signup counter value.
func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.count, nil
}

// Signups returns a copy of the stored records in signup order.
func (m *Memory) Signups(_ context.Context) ([]Signup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Signup, len(m.signups))
	copy(out, m.signups)
	return out, nil
}

// Clear deletes all markers, empties the list, and resets the counter.
// Rate-limit buckets are left in place, matching the Redis backend.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.markers = make(map[string]string)
	m.signups = nil
	m.count = 0
	return nil
}

// RateStatus returns the accepted-signup count for ip within the given hour.
func (m *Memory) RateStatus(_ context.Context, ip string, hour int) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.rates[ip]
	if !ok || time.Now().After(entry.expiration) || entry.bucket.Hour != hour {
		return 0, nil
	}
	return entry.bucket.Count, nil
}

// RateBump records one accepted signup for ip, resetting the bucket on an
// hour mismatch and refreshing the one-hour expiry.
func (m *Memory) RateBump(_ context.Context, ip string, hour int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	entry, ok := m.rates[ip]
	if !ok || now.After(entry.expiration) || entry.bucket.Hour != hour {
		m.rates[ip] = &rateEntry{
			bucket:     RateBucket{Hour: hour, Count: 1},
			expiration: now.Add(time.Hour),
		}
		return nil
	}

	entry.bucket.Count++
	entry.expiration = now.Add(time.Hour)
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *Memory) Ping(_ context.Context) error {
	return nil
}

// Close stops the background cleanup goroutine and releases resources.
func (m *Memory) Close() error {
	close(m.stopCh)
	m.mu.Lock()
	m.markers = nil
	m.signups = nil
	m.rates = nil
	m.mu.Unlock()
	return nil
}

// runCleanup executes a single cleanup cycle, removing all expired rate
// buckets. Exposed for testing to trigger cleanup without waiting for the
// ticker.
func (m *Memory) runCleanup() {
	now := time.Now()
	var expiredKeys []string

	m.mu.RLock()
	for key, entry := range m.rates {
		if now.After(entry.expiration) {
			expiredKeys = append(expiredKeys, key)
		}
	}
	m.mu.RUnlock()

	if len(expiredKeys) > 0 {
		m.mu.Lock()
		now := time.Now()
		for _, key := range expiredKeys {
			if entry, exists := m.rates[key]; exists && now.After(entry.expiration) {
				delete(m.rates, key)
			}
		}
		m.mu.Unlock()
	}
}

func (m *Memory) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runCleanup()
		case <-m.stopCh:
			return
		}
	}
}
