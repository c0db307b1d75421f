// Package variables implements the dialogue variable stores.
//
// A run sees two Stores: a session-local one, cleared at dialogue start and
// discarded at the end, and a global one initialized from authored defaults
// that persists across runs. Scopes routes reads and writes between them.
package variables

import (
	"sort"
	"sync"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Store holds integer, boolean and string variables by name.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	ints    map[string]int
	bools   map[string]bool
	strings map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		ints:    make(map[string]int),
		bools:   make(map[string]bool),
		strings: make(map[string]string),
	}
}

// NewStoreFrom creates a store declaring every entry of the snapshot.
func NewStoreFrom(s domain.VariableSnapshot) *Store {
	st := NewStore()
	st.Load(s)
	return st
}

func (s *Store) GetInt(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ints[name]
}

func (s *Store) SetInt(name string, v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints[name] = v
}

// AddInt adds delta and returns the new value.
func (s *Store) AddInt(name string, delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints[name] += delta
	return s.ints[name]
}

func (s *Store) HasInt(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ints[name]
	return ok
}

func (s *Store) GetBool(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bools[name]
}

func (s *Store) SetBool(name string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bools[name] = v
}

// ToggleBool flips the value and returns the new one.
func (s *Store) ToggleBool(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bools[name] = !s.bools[name]
	return s.bools[name]
}

func (s *Store) HasBool(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bools[name]
	return ok
}

func (s *Store) GetString(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strings[name]
}

func (s *Store) SetString(name, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[name] = v
}

func (s *Store) HasString(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.strings[name]
	return ok
}

// Clear removes every variable.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ints)
	clear(s.bools)
	clear(s.strings)
}

// Len returns the total number of declared variables.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ints) + len(s.bools) + len(s.strings)
}

// Export returns the store as flat key/value lists, sorted by key.
func (s *Store) Export() domain.VariableSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap domain.VariableSnapshot
	for k, v := range s.ints {
		snap.Ints = append(snap.Ints, domain.IntEntry{Key: k, Value: v})
	}
	for k, v := range s.bools {
		snap.Bools = append(snap.Bools, domain.BoolEntry{Key: k, Value: v})
	}
	for k, v := range s.strings {
		snap.Strings = append(snap.Strings, domain.StringEntry{Key: k, Value: v})
	}
	sort.Slice(snap.Ints, func(i, j int) bool { return snap.Ints[i].Key < snap.Ints[j].Key })
	sort.Slice(snap.Bools, func(i, j int) bool { return snap.Bools[i].Key < snap.Bools[j].Key })
	sort.Slice(snap.Strings, func(i, j int) bool { return snap.Strings[i].Key < snap.Strings[j].Key })
	return snap
}

// Load declares every entry of the snapshot, overwriting existing values.
// Used for authored defaults.
func (s *Store) Load(snap domain.VariableSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range snap.Ints {
		s.ints[e.Key] = e.Value
	}
	for _, e := range snap.Bools {
		s.bools[e.Key] = e.Value
	}
	for _, e := range snap.Strings {
		s.strings[e.Key] = e.Value
	}
}

// Restore applies persisted values for keys the store already declares.
// Unknown keys are ignored and returned so callers can log them.
func (s *Store) Restore(snap domain.VariableSnapshot) (ignored []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range snap.Ints {
		if _, ok := s.ints[e.Key]; !ok {
			ignored = append(ignored, e.Key)
			continue
		}
		s.ints[e.Key] = e.Value
	}
	for _, e := range snap.Bools {
		if _, ok := s.bools[e.Key]; !ok {
			ignored = append(ignored, e.Key)
			continue
		}
		s.bools[e.Key] = e.Value
	}
	for _, e := range snap.Strings {
		if _, ok := s.strings[e.Key]; !ok {
			ignored = append(ignored, e.Key)
			continue
		}
		s.strings[e.Key] = e.Value
	}
	return ignored
}

// Declare adds the entries of the snapshot whose keys are not declared yet.
// Existing values are kept, so declaring a graph's defaults twice never
// resets progress.
func (s *Store) Declare(snap domain.VariableSnapshot) (added int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range snap.Ints {
		if _, ok := s.ints[e.Key]; !ok {
			s.ints[e.Key] = e.Value
			added++
		}
	}
	for _, e := range snap.Bools {
		if _, ok := s.bools[e.Key]; !ok {
			s.bools[e.Key] = e.Value
			added++
		}
	}
	for _, e := range snap.Strings {
		if _, ok := s.strings[e.Key]; !ok {
			s.strings[e.Key] = e.Value
			added++
		}
	}
	return added
}
