// Package flash holds short-lived, navigation-scoped notifications.
//
// Messages are set by HTTP response handling or explicit actions and
// decay on each guarded navigation: a set with persist count N survives N
// navigations and is cleared on the next one.
package flash

import (
	"slices"
	"sync"
)

// Severity is the style tag of a message set.
type Severity string

// Known severities.
const (
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// Class returns the presentation class of the severity.
func (s Severity) Class() string {
	switch s {
	case SeverityError:
		return "flash-message--red"
	case SeverityWarning:
		return "flash-message--orange"
	case SeveritySuccess:
		return "flash-message--green"
	default:
		return "flash-message--blue"
	}
}

// Snapshot is a copy of the store's state.
type Snapshot struct {
	Messages []string
	Severity Severity
	Persist  int
}

// Empty reports whether there is nothing to show.
func (s Snapshot) Empty() bool {
	return len(s.Messages) == 0
}

// Store is the flash message store. It is safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	messages    []string
	severity    Severity
	persist     int
	subscribers map[int]func(Snapshot)
	nextID      int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		severity:    SeverityInfo,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Set replaces the messages with info severity.
func (s *Store) Set(messages ...string) {
	s.SetSeverity(SeverityInfo, messages...)
}

// SetSeverity replaces the messages and their severity.
func (s *Store) SetSeverity(sev Severity, messages ...string) {
	s.mu.Lock()
	s.messages = slices.Clone(messages)
	s.severity = sev
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// SetPersist sets how many navigations the current messages survive.
func (s *Store) SetPersist(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.persist = n
	s.mu.Unlock()
}

// Clear removes every message and resets severity.
func (s *Store) Clear() {
	s.mu.Lock()
	s.clearLocked()
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Decay is called once per navigation attempt. It clears the messages when
// the persist count is zero and otherwise decrements it.
func (s *Store) Decay() {
	s.mu.Lock()
	if s.persist > 0 {
		s.persist--
		s.mu.Unlock()
		return
	}
	changed := len(s.messages) > 0
	s.clearLocked()
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if changed {
		notify(subs, snap)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Messages returns the current messages.
func (s *Store) Messages() []string {
	return s.Snapshot().Messages
}

// Subscribe registers fn to be called after every change. The returned
// function unregisters it.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) clearLocked() {
	s.messages = nil
	s.severity = SeverityInfo
	s.persist = 0
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Messages: slices.Clone(s.messages),
		Severity: s.severity,
		Persist:  s.persist,
	}
}

func (s *Store) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

// Subscribers run outside the lock so they may read the store.
func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
