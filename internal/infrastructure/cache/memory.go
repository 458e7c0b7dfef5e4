package cache

import (
	"strings"
	"sync"
	"time"
)

// ttlEntry is a value with an expiry
type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e ttlEntry[V]) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// ttlMap is a mutex-guarded map whose entries expire. A background
// goroutine sweeps expired entries until Close.
type ttlMap[V any] struct {
	mu        sync.Mutex
	entries   map[string]ttlEntry[V]
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newTTLMap[V any](sweepEvery time.Duration) *ttlMap[V] {
	m := &ttlMap[V]{
		entries:  make(map[string]ttlEntry[V]),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	m.wg.Add(1)
	go m.sweepLoop(sweepEvery)
	return m
}

// setNX stores v unless a live entry exists. Returns true if stored.
func (m *ttlMap[V]) setNX(key string, v V, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.entries[key]; ok && e.live(now) {
		return false
	}
	m.entries[key] = ttlEntry[V]{value: v, expiresAt: now.Add(ttl)}
	return true
}

func (m *ttlMap[V]) set(key string, v V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = ttlEntry[V]{value: v, expiresAt: m.now().Add(ttl)}
}

func (m *ttlMap[V]) get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !e.live(m.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (m *ttlMap[V]) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// deleteIf removes key only when match accepts its value
func (m *ttlMap[V]) deleteIf(key string, match func(V) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !match(e.value) {
		return false
	}
	delete(m.entries, key)
	return true
}

func (m *ttlMap[V]) deletePrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			n++
		}
	}
	return n
}

func (m *ttlMap[V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *ttlMap[V]) close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
}

func (m *ttlMap[V]) sweepLoop(every time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *ttlMap[V]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, e := range m.entries {
		if !e.live(now) {
			delete(m.entries, key)
		}
	}
}
