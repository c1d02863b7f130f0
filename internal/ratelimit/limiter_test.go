package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, userMax, globalMax int) (*Limiter, *time.Time) {
	t.Helper()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(Options{
		UserMaxRequests:   userMax,
		UserWindow:        time.Minute,
		GlobalMaxRequests: globalMax,
		GlobalWindow:      time.Minute,
	})
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowWithinBurst(t *testing.T) {
	l, _ := newTestLimiter(t, 3, 100)

	for i := 0; i < 3; i++ {
		ok, scope := l.Allow(1)
		require.True(t, ok, "request %d should pass", i)
		assert.Equal(t, ScopeNone, scope)
	}

	ok, scope := l.Allow(1)
	assert.False(t, ok)
	assert.Equal(t, ScopeUser, scope)
}

func TestUsersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 2, 100)

	ok, _ := l.Allow(1)
	require.True(t, ok)
	ok, _ = l.Allow(1)
	require.True(t, ok)
	ok, _ = l.Allow(1)
	require.False(t, ok)

	ok, scope := l.Allow(2)
	assert.True(t, ok)
	assert.Equal(t, ScopeNone, scope)
}

func TestGlobalCapWins(t *testing.T) {
	l, _ := newTestLimiter(t, 10, 2)

	ok, _ := l.Allow(1)
	require.True(t, ok)
	ok, _ = l.Allow(2)
	require.True(t, ok)

	ok, scope := l.Allow(3)
	assert.False(t, ok)
	assert.Equal(t, ScopeGlobal, scope)
}

func TestRejectionConsumesNothing(t *testing.T) {
	l, now := newTestLimiter(t, 1, 100)

	ok, _ := l.Allow(1)
	require.True(t, ok)

	before := l.GlobalTokens()
	ok, _ = l.Allow(1)
	require.False(t, ok)
	assert.InDelta(t, before, l.GlobalTokens(), 0.001)

	// after a full window the user bucket refills
	*now = now.Add(time.Minute)
	ok, scope := l.Allow(1)
	assert.True(t, ok)
	assert.Equal(t, ScopeNone, scope)
}

func TestRefillOverTime(t *testing.T) {
	l, now := newTestLimiter(t, 4, 100)

	for i := 0; i < 4; i++ {
		ok, _ := l.Allow(1)
		require.True(t, ok)
	}
	ok, _ := l.Allow(1)
	require.False(t, ok)

	// a quarter window refills one token
	*now = now.Add(15 * time.Second)
	ok, _ = l.Allow(1)
	assert.True(t, ok)
	ok, _ = l.Allow(1)
	assert.False(t, ok)
}

func TestPrune(t *testing.T) {
	l, now := newTestLimiter(t, 5, 100)

	l.Allow(1)
	l.Allow(2)
	require.Equal(t, 2, l.TrackedUsers())

	*now = now.Add(20 * time.Minute)
	l.Allow(3)

	removed := l.Prune(10 * time.Minute)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, l.TrackedUsers())
}
