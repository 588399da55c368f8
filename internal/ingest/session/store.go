// Package session holds conversation state between Telegram updates: one
// FSM position plus one draft per (chat, user) key.
package session

import (
	"sync"

	"github.com/avilchesko/betsheet/internal/pkg/models"
)

// State is the conversation's position in the ingest flow.
type State int

const (
	StateTeams State = iota
	StateSelection
	StateFreeSelection
	StateOdds
	StateStake
	StateConfirm
)

func (s State) String() string {
	switch s {
	case StateTeams:
		return "teams"
	case StateSelection:
		return "selection"
	case StateFreeSelection:
		return "free_selection"
	case StateOdds:
		return "odds"
	case StateStake:
		return "stake"
	case StateConfirm:
		return "confirm"
	}
	return "unknown"
}

// Session is one conversation's state. AwaitingAmount is a one-shot flag set
// when the user asked to type a custom stake; the next input goes straight
// to the stake parser.
type Session struct {
	Key            models.SessionKey
	State          State
	Draft          models.Draft
	AwaitingAmount bool
}

// Store keeps at most one session per key and serializes handling per key:
// two updates for the same key never interleave, different keys proceed in
// parallel.
type Store struct {
	mu      sync.Mutex
	entries map[models.SessionKey]*entry
	active  int
}

// entry outlives its session so the per-key lock stays stable. The key set
// is bounded by the number of distinct chat members who ever talked to the
// bot, which for this bot is tiny.
type entry struct {
	mu sync.Mutex
	s  *Session
}

func NewStore() *Store {
	return &Store{entries: make(map[models.SessionKey]*entry)}
}

func (st *Store) entryFor(key models.SessionKey) *entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[key]
	if !ok {
		e = &entry{}
		st.entries[key] = e
	}
	return e
}

// Do runs fn while holding the key's lock. fn receives the current session,
// nil when the key has none, and returns the session to keep; returning nil
// clears the key.
func (st *Store) Do(key models.SessionKey, fn func(*Session) *Session) {
	e := st.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	had := e.s != nil
	e.s = fn(e.s)
	if has := e.s != nil; has != had {
		st.mu.Lock()
		if has {
			st.active++
		} else {
			st.active--
		}
		st.mu.Unlock()
	}
}

// Get returns a snapshot of the key's session, or nil. Intended for tests
// and introspection; mutation goes through Do.
func (st *Store) Get(key models.SessionKey) *Session {
	e := st.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s == nil {
		return nil
	}
	copied := *e.s
	return &copied
}

// Active returns the number of keys with a live session.
func (st *Store) Active() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.active
}
