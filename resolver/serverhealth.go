package resolver

import (
	"sync"
	"time"
)

// serverHealthEntry tracks recent failures for one upstream server.
type serverHealthEntry struct {
	consecutiveFailures int
	cooldownExpiry      time.Time
	lastSeen            time.Time
}

// serverHealth is a bounded, per-server failure tracker: a server that
// times out repeatedly is put into cooldown so a retry loop doesn't keep
// hammering a host that is down, and least-recently-seen entries are
// evicted once the map grows past maxEntries.
//
// Adapted from the request-rate cooldown tracker this library's teacher
// used for multicast storm protection — same bounded-map-plus-cooldown
// shape, repurposed here to track outbound failures per server instead of
// inbound query rate per source.
type serverHealth struct {
	threshold  int
	cooldown   time.Duration
	maxEntries int

	mu      sync.Mutex
	servers map[string]*serverHealthEntry
}

func newServerHealth(threshold int, cooldown time.Duration, maxEntries int) *serverHealth {
	return &serverHealth{
		threshold:  threshold,
		cooldown:   cooldown,
		maxEntries: maxEntries,
		servers:    make(map[string]*serverHealthEntry),
	}
}

// Allow reports whether server may be contacted right now, i.e. it is not
// in cooldown after too many consecutive failures.
func (h *serverHealth) Allow(server string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.servers[server]
	if !ok {
		return true
	}
	now := time.Now()
	if !entry.cooldownExpiry.IsZero() && now.Before(entry.cooldownExpiry) {
		return false
	}
	return true
}

// RecordFailure notes a timed-out or errored exchange with server,
// starting a cooldown once threshold consecutive failures accumulate.
func (h *serverHealth) RecordFailure(server string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	entry, ok := h.servers[server]
	if !ok {
		if len(h.servers) >= h.maxEntries {
			h.evictOldest()
		}
		entry = &serverHealthEntry{}
		h.servers[server] = entry
	}
	entry.consecutiveFailures++
	entry.lastSeen = now
	if entry.consecutiveFailures >= h.threshold {
		entry.cooldownExpiry = now.Add(h.cooldown)
	}
}

// RecordSuccess clears server's failure count — a working exchange means
// whatever cooldown logic exists shouldn't hold the next query back.
func (h *serverHealth) RecordSuccess(server string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry, ok := h.servers[server]; ok {
		entry.consecutiveFailures = 0
		entry.cooldownExpiry = time.Time{}
		entry.lastSeen = time.Now()
	}
}

// evictOldest removes the least-recently-seen entry. Must be called with
// h.mu held.
func (h *serverHealth) evictOldest() {
	var oldestKey string
	var oldestSeen time.Time
	first := true
	for k, v := range h.servers {
		if first || v.lastSeen.Before(oldestSeen) {
			oldestKey, oldestSeen, first = k, v.lastSeen, false
		}
	}
	if !first {
		delete(h.servers, oldestKey)
	}
}
