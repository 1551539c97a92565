package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/loansplit/loansplit/internal/domain"
)

// maxReplaySteps caps the merge loop. A well-formed event sequence finishes
// far below this; hitting the cap means an event keeps rescheduling itself
// without making progress.
const maxReplaySteps = 5000

// ErrRunawayReplay is returned when replay exceeds maxReplaySteps.
var ErrRunawayReplay = errors.New("replay exceeded maximum step count")

// Snapshot pairs an applied event's date with the state it produced.
type Snapshot struct {
	Date  time.Time
	State domain.State
}

// Stream is the fully materialized replay of one event sequence: every
// applied event (user-supplied and system-generated, in application order)
// plus the immutable state snapshot after each step. A Stream is built once
// and is read-only afterwards, so concurrent queries need no locking.
type Stream struct {
	history []Snapshot
	applied []Event
	system  []Event
}

// Replay merges the user events (assumed date-sorted; the order is not
// changed) with events synthesized during replay and applies them all.
//
// Each iteration first looks for a pending deferred event, in insertion
// order, whose check date is strictly before the next user event's date (the
// user event wins a same-day collision). A deferred event that fires stays
// in the pending set; it is only dropped once its factory declines. When no
// deferred event is eligible the next user event is consumed. Replay ends
// when both sources are exhausted.
func Replay(userEvents []Event) (*Stream, error) {
	s := &Stream{}
	state := domain.NewState()

	var pending []MaybeEvent
	cursor := 0

	for steps := 0; ; steps++ {
		if steps >= maxReplaySteps {
			return nil, fmt.Errorf("%w (%d)", ErrRunawayReplay, maxReplaySteps)
		}

		var nextUser Event
		if cursor < len(userEvents) {
			nextUser = userEvents[cursor]
		}

		eligible := -1
		for i, m := range pending {
			if nextUser == nil || m.CheckDate.Before(nextUser.When()) {
				eligible = i
				break
			}
		}

		if eligible >= 0 {
			generated := pending[eligible].Factory(state)
			if generated == nil {
				// Declined: discard without producing a step.
				pending = append(pending[:eligible], pending[eligible+1:]...)
				continue
			}
			s.system = append(s.system, generated)
			var err error
			state, pending, err = s.step(state, pending, generated)
			if err != nil {
				return nil, err
			}
			continue
		}

		if nextUser == nil {
			// No user events left and nothing pending is eligible, which
			// with no user event means the pending set is empty.
			return s, nil
		}

		cursor++
		var err error
		state, pending, err = s.step(state, pending, nextUser)
		if err != nil {
			return nil, err
		}
	}
}

// step applies one event plus any inline events it emits, then records the
// resulting snapshot. Inline events run through a worklist within the
// current step; they never pass through the merge loop's selection logic.
func (s *Stream) step(state domain.State, pending []MaybeEvent, ev Event) (domain.State, []MaybeEvent, error) {
	outcome, err := ev.Apply(state)
	if err != nil {
		return state, pending, fmt.Errorf("applying %s at %s: %w", ev.EventType(), ev.When().Format(dateLayout), err)
	}
	state = state.WithUpdates(outcome.Updates)
	if outcome.Deferred != nil {
		pending = append(pending, *outcome.Deferred)
	}
	s.applied = append(s.applied, ev)

	worklist := append([]Event(nil), outcome.Inline...)
	for len(worklist) > 0 {
		inline := worklist[0]
		worklist = worklist[1:]

		inlineOutcome, err := inline.Apply(state)
		if err != nil {
			return state, pending, fmt.Errorf("applying inline %s at %s: %w", inline.EventType(), inline.When().Format(dateLayout), err)
		}
		state = state.WithUpdates(inlineOutcome.Updates)
		if inlineOutcome.Deferred != nil {
			pending = append(pending, *inlineOutcome.Deferred)
		}
		worklist = append(worklist, inlineOutcome.Inline...)

		s.system = append(s.system, inline)
		s.applied = append(s.applied, inline)
	}

	s.history = append(s.history, Snapshot{Date: ev.When(), State: state})
	return state, pending, nil
}

// StateForDate returns the latest snapshot on or before the date. The second
// return is false when no snapshot qualifies.
func (s *Stream) StateForDate(date time.Time) (domain.State, bool) {
	for i := len(s.history) - 1; i >= 0; i-- {
		if !s.history[i].Date.After(date) {
			return s.history[i].State, true
		}
	}
	return domain.State{}, false
}

// EventsUpToDate returns every applied event (user and system-generated, in
// application order) dated on or before the given date.
func (s *Stream) EventsUpToDate(date time.Time) []Event {
	var out []Event
	for _, ev := range s.applied {
		if !ev.When().After(date) {
			out = append(out, ev)
		}
	}
	return out
}

// Events returns all applied events in application order.
func (s *Stream) Events() []Event {
	out := make([]Event, len(s.applied))
	copy(out, s.applied)
	return out
}

// SystemEvents returns the events synthesized during replay, in order.
func (s *Stream) SystemEvents() []Event {
	out := make([]Event, len(s.system))
	copy(out, s.system)
	return out
}

// Snapshots returns the full historical timeline in application order.
func (s *Stream) Snapshots() []Snapshot {
	out := make([]Snapshot, len(s.history))
	copy(out, s.history)
	return out
}
