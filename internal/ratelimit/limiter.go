package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Scope names the bucket that rejected a request.
type Scope string

const (
	ScopeNone   Scope = ""
	ScopeGlobal Scope = "global"
	ScopeUser   Scope = "user"
)

type userBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter gates requests with a global token bucket plus lazily created
// per-user buckets. Bucket capacity equals the allowed request count per
// rolling window, so a full burst is admitted and then refills evenly.
type Limiter struct {
	mu     sync.Mutex
	global *rate.Limiter
	users  map[int64]*userBucket

	userLimit rate.Limit
	userBurst int

	now func() time.Time
}

type Options struct {
	UserMaxRequests   int
	UserWindow        time.Duration
	GlobalMaxRequests int
	GlobalWindow      time.Duration
}

func New(opts Options) *Limiter {
	return &Limiter{
		global:    rate.NewLimiter(perWindow(opts.GlobalMaxRequests, opts.GlobalWindow), opts.GlobalMaxRequests),
		users:     make(map[int64]*userBucket),
		userLimit: perWindow(opts.UserMaxRequests, opts.UserWindow),
		userBurst: opts.UserMaxRequests,
		now:       time.Now,
	}
}

func perWindow(n int, window time.Duration) rate.Limit {
	return rate.Limit(float64(n) / window.Seconds())
}

// Allow reports whether a request from userID may proceed. Checks run
// global first; tokens are consumed from both buckets only when both
// have capacity, so a rejected request costs nothing.
func (l *Limiter) Allow(userID int64) (bool, Scope) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if l.global.TokensAt(now) < 1 {
		return false, ScopeGlobal
	}

	ub, ok := l.users[userID]
	if !ok {
		ub = &userBucket{lim: rate.NewLimiter(l.userLimit, l.userBurst)}
		l.users[userID] = ub
	}
	ub.lastSeen = now

	if ub.lim.TokensAt(now) < 1 {
		return false, ScopeUser
	}

	l.global.AllowN(now, 1)
	ub.lim.AllowN(now, 1)
	return true, ScopeNone
}

// Prune drops per-user buckets idle longer than maxIdle and returns how
// many were removed.
func (l *Limiter) Prune(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	removed := 0
	for id, ub := range l.users {
		if ub.lastSeen.Before(cutoff) {
			delete(l.users, id)
			removed++
		}
	}
	return removed
}

// TrackedUsers returns the number of live per-user buckets.
func (l *Limiter) TrackedUsers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

// GlobalTokens returns the current global bucket fill, for /stats.
func (l *Limiter) GlobalTokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.global.TokensAt(l.now())
}
