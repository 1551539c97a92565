// Package memory provides the in-memory storage.Store implementation.
// Streams live only for the lifetime of the process; restarting clears them.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/loansplit/loansplit/internal/event"
	"github.com/loansplit/loansplit/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps completed streams in a map guarded by a read-write mutex.
// Streams are immutable once built, so readers only need the map lock.
type Store struct {
	mu      sync.RWMutex
	streams map[string]*event.Stream
}

// New creates an empty store.
func New() *Store {
	return &Store{streams: make(map[string]*event.Stream)}
}

// Add replays the events and stores the resulting stream under a fresh UUID.
func (s *Store) Add(events []event.Event) (string, error) {
	stream, err := event.Replay(events)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()

	s.mu.Lock()
	s.streams[id] = stream
	s.mu.Unlock()

	return id, nil
}

// Get returns the stream stored under the id.
func (s *Store) Get(id string) (*event.Stream, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream, ok := s.streams[id]
	return stream, ok
}
