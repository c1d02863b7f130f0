package telegram

import (
	"sync"
	"time"
)

// Awaiting-input states: the next plain message from the user is
// consumed as the value for the pending setting.
const (
	stateAwaitingModel        = "awaiting_model"
	stateAwaitingSystemPrompt = "awaiting_system_prompt"
	stateAwaitingTemperature  = "awaiting_temperature"
	stateAwaitingTopP         = "awaiting_top_p"
	stateAwaitingMaxTokens    = "awaiting_max_tokens"
)

const stateTimeout = 5 * time.Minute

type stateEntry struct {
	state   string
	expires time.Time
}

type stateStore struct {
	mu      sync.Mutex
	entries map[int64]stateEntry
	ttl     time.Duration

	now func() time.Time
}

func newStateStore(ttl time.Duration) *stateStore {
	return &stateStore{
		entries: make(map[int64]stateEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *stateStore) Set(userID int64, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = stateEntry{state: state, expires: s.now().Add(s.ttl)}
}

// Get returns the pending state, dropping it when expired.
func (s *stateStore) Get(userID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return "", false
	}
	if s.now().After(e.expires) {
		delete(s.entries, userID)
		return "", false
	}
	return e.state, true
}

func (s *stateStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}
