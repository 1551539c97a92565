package event

import (
	"time"

	"github.com/loansplit/loansplit/internal/domain"
)

// Event is an immutable fact with a date that deterministically transforms
// state when applied. Apply is pure: no I/O, no mutation of the input state.
type Event interface {
	// EventType returns the wire discriminator for the event.
	EventType() string

	// When returns the event's date.
	When() time.Time

	// Apply computes the event's effect on the state.
	Apply(state domain.State) (Outcome, error)
}

// Outcome is the result of applying one event.
type Outcome struct {
	// Updates are the entity changes to merge into the state.
	Updates map[string]domain.Entity

	// Deferred optionally schedules future work with the replay engine.
	Deferred *MaybeEvent

	// Inline events are applied immediately within the same replay step,
	// bypassing the scheduler's merge logic.
	Inline []Event
}

// MaybeEvent is a deferred, conditionally realized event. The factory is
// evaluated lazily against the state current at its turn in the replay loop
// and may return nil to decline, in which case the entry is discarded.
type MaybeEvent struct {
	CheckDate time.Time
	Factory   func(state domain.State) Event
}
