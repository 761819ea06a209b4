package jobs

import (
	"context"
	"log"
	"time"
)

// SessionRegistry defines the interface for idle session eviction
type SessionRegistry interface {
	EvictIdle(ttl time.Duration) int
	Len() int
}

// SessionReaper evicts sessions that have been idle longer than the
// configured TTL. It runs under a Worker; the eviction itself is an
// explicit registry operation.
type SessionReaper struct {
	registry SessionRegistry
	ttl      time.Duration
}

// NewSessionReaper creates a new SessionReaper instance
func NewSessionReaper(registry SessionRegistry, ttl time.Duration) *SessionReaper {
	return &SessionReaper{
		registry: registry,
		ttl:      ttl,
	}
}

// Sweep implements the Sweeper interface
func (r *SessionReaper) Sweep(ctx context.Context) error {
	if r.ttl <= 0 {
		return nil
	}

	evicted := r.registry.EvictIdle(r.ttl)
	if evicted > 0 {
		log.Printf("evicted %d idle sessions (%d remaining)", evicted, r.registry.Len())
	}
	return nil
}
