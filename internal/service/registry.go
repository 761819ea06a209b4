package service

import (
	"sync"
	"time"

	"github.com/paperchat-ai/paperchat/internal/domain"
)

// EngineFactory builds a conversation engine for a new session id.
type EngineFactory func(sessionID string) *Engine

// RegistryConfig controls session lifecycle policy. The policy values
// come from configuration; the registry only exposes the mechanism.
type RegistryConfig struct {
	// MaxSessions caps the number of live sessions. When the cap is
	// reached, the least recently used session is evicted to make room.
	// <= 0 means unbounded.
	MaxSessions int
}

// Registry maps session ids to live conversation engines. The same id
// always yields the same logical session until it is explicitly reset or
// evicted. Map-structural changes are serialized here, independently of
// the per-session serialization inside each engine, so one session's ask
// never blocks another's.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*Engine
	factory EngineFactory
	cfg     RegistryConfig
}

// NewRegistry creates a Registry with the given engine factory.
func NewRegistry(factory EngineFactory, cfg RegistryConfig) *Registry {
	return &Registry{
		engines: make(map[string]*Engine),
		factory: factory,
		cfg:     cfg,
	}
}

// GetOrCreate returns the engine for the session id, creating it lazily
// on first use. Idempotent.
func (r *Registry) GetOrCreate(sessionID string) (*Engine, error) {
	if sessionID == "" {
		return nil, domain.ErrEmptySessionID
	}

	r.mu.RLock()
	engine, ok := r.engines[sessionID]
	r.mu.RUnlock()
	if ok {
		return engine, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if engine, ok := r.engines[sessionID]; ok {
		return engine, nil
	}

	if r.cfg.MaxSessions > 0 && len(r.engines) >= r.cfg.MaxSessions {
		r.evictOldestLocked()
	}

	engine = r.factory(sessionID)
	r.engines[sessionID] = engine
	return engine, nil
}

// Lookup returns the engine for the session id without creating one.
func (r *Registry) Lookup(sessionID string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engine, ok := r.engines[sessionID]
	return engine, ok
}

// Reset clears the session's history while keeping the mapping.
// Resetting an unknown session is a no-op success.
func (r *Registry) Reset(sessionID string) {
	r.mu.RLock()
	engine, ok := r.engines[sessionID]
	r.mu.RUnlock()
	if ok {
		engine.Reset()
	}
}

// Evict removes the mapping entirely. Distinct from Reset, which keeps
// the mapping but empties history. Returns whether the session existed.
func (r *Registry) Evict(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.engines[sessionID]
	delete(r.engines, sessionID)
	return ok
}

// EvictIdle removes every session whose last access is older than ttl
// and returns the number evicted.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, engine := range r.engines {
		if engine.LastAccess().Before(cutoff) {
			delete(r.engines, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

func (r *Registry) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, engine := range r.engines {
		last := engine.LastAccess()
		if oldestID == "" || last.Before(oldest) {
			oldestID = id
			oldest = last
		}
	}
	if oldestID != "" {
		delete(r.engines, oldestID)
	}
}
