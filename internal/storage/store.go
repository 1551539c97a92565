// Package storage provides the catalog that keeps replayed event streams
// accessible to the API.
package storage

import "github.com/loansplit/loansplit/internal/event"

// Store holds completed, immutable event streams keyed by an opaque id.
// Implementations must construct each stream at most once and allow safe
// concurrent reads.
type Store interface {
	// Add replays the events into a new stream and returns its id. A replay
	// failure means no stream is stored.
	Add(events []event.Event) (string, error)

	// Get returns the stream for the id, or false if unknown.
	Get(id string) (*event.Stream, bool)
}
