package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFactory() EngineFactory {
	return func(sessionID string) *Engine {
		retriever := &stubRetriever{result: retrievalResult("context passage")}
		chat := &stubChat{complete: answerWith("answer for " + sessionID)}
		return NewEngine(sessionID, retriever, chat, EngineConfig{})
	}
}

func TestRegistryGetOrCreateIdempotent(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	first, err := registry.GetOrCreate("s1")
	require.NoError(t, err)
	second, err := registry.GetOrCreate("s1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryEmptySessionID(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	_, err := registry.GetOrCreate("")
	assert.ErrorIs(t, err, domain.ErrEmptySessionID)
}

func TestRegistrySessionsAreIndependent(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	a, err := registry.GetOrCreate("alice")
	require.NoError(t, err)
	b, err := registry.GetOrCreate("bob")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, engine := range []*Engine{a, b} {
		wg.Add(1)
		go func(e *Engine) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				answer, err := e.Ask(context.Background(), fmt.Sprintf("question %d", i))
				assert.NoError(t, err)
				assert.Equal(t, "answer for "+e.SessionID(), answer)
			}
		}(engine)
	}
	wg.Wait()

	assert.Len(t, a.History(), 10)
	assert.Len(t, b.History(), 10)
	for _, turn := range a.History() {
		assert.NotContains(t, turn.Text, "bob")
	}
}

func TestRegistryResetKeepsMapping(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	engine, err := registry.GetOrCreate("s1")
	require.NoError(t, err)
	_, err = engine.Ask(context.Background(), "Q1")
	require.NoError(t, err)

	registry.Reset("s1")

	same, ok := registry.Lookup("s1")
	require.True(t, ok)
	assert.Same(t, engine, same)
	assert.Empty(t, same.History())
}

func TestRegistryResetUnknownSessionIsNoop(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	registry.Reset("ghost")
	registry.Reset("ghost")
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryDoubleResetEqualsSingleReset(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	engine, err := registry.GetOrCreate("s1")
	require.NoError(t, err)
	_, err = engine.Ask(context.Background(), "Q1")
	require.NoError(t, err)

	registry.Reset("s1")
	registry.Reset("s1")

	assert.Empty(t, engine.History())
	assert.Equal(t, domain.SessionIdle, engine.State())
}

func TestRegistryEvictRemovesMapping(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	_, err := registry.GetOrCreate("s1")
	require.NoError(t, err)

	assert.True(t, registry.Evict("s1"))
	_, ok := registry.Lookup("s1")
	assert.False(t, ok)

	assert.False(t, registry.Evict("s1"))
}

func TestRegistryEvictIdle(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	stale, err := registry.GetOrCreate("stale")
	require.NoError(t, err)
	_, err = registry.GetOrCreate("fresh")
	require.NoError(t, err)

	// Age the stale session past the TTL.
	stale.mu.Lock()
	stale.session.LastAccess = time.Now().UTC().Add(-time.Hour)
	stale.mu.Unlock()

	evicted := registry.EvictIdle(30 * time.Minute)
	assert.Equal(t, 1, evicted)

	_, ok := registry.Lookup("stale")
	assert.False(t, ok)
	_, ok = registry.Lookup("fresh")
	assert.True(t, ok)
}

func TestRegistryEvictIdleZeroTTL(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})
	_, err := registry.GetOrCreate("s1")
	require.NoError(t, err)

	assert.Equal(t, 0, registry.EvictIdle(0))
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryMaxSessionsEvictsLRU(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{MaxSessions: 2})

	oldest, err := registry.GetOrCreate("oldest")
	require.NoError(t, err)
	_, err = registry.GetOrCreate("middle")
	require.NoError(t, err)

	// Make "oldest" clearly the least recently used.
	oldest.mu.Lock()
	oldest.session.LastAccess = time.Now().UTC().Add(-time.Hour)
	oldest.mu.Unlock()

	_, err = registry.GetOrCreate("newest")
	require.NoError(t, err)

	assert.Equal(t, 2, registry.Len())
	_, ok := registry.Lookup("oldest")
	assert.False(t, ok)
	_, ok = registry.Lookup("middle")
	assert.True(t, ok)
	_, ok = registry.Lookup("newest")
	assert.True(t, ok)
}

func TestRegistryConcurrentGetOrCreate(t *testing.T) {
	registry := NewRegistry(testFactory(), RegistryConfig{})

	engines := make([]*Engine, 16)
	var wg sync.WaitGroup
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine, err := registry.GetOrCreate("shared")
			assert.NoError(t, err)
			engines[i] = engine
		}(i)
	}
	wg.Wait()

	for _, engine := range engines[1:] {
		assert.Same(t, engines[0], engine)
	}
	assert.Equal(t, 1, registry.Len())
}
