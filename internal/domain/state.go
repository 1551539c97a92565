package domain

import "fmt"

// State is an immutable snapshot of every named entity at one point in the
// replayed timeline. A new State is produced for every applied event via
// WithUpdates; older snapshots stay valid indefinitely.
type State struct {
	entities map[string]Entity
}

// NewState returns an empty state.
func NewState() State {
	return State{entities: map[string]Entity{}}
}

// WithUpdates merges the updates into the state copy-on-write: updated keys
// win, untouched entities are shared with the prior snapshot.
func (s State) WithUpdates(updates map[string]Entity) State {
	merged := make(map[string]Entity, len(s.entities)+len(updates))
	for name, entity := range updates {
		merged[name] = entity
	}
	for name, entity := range s.entities {
		if _, ok := merged[name]; ok {
			continue
		}
		merged[name] = entity
	}
	return State{entities: merged}
}

// Entities returns a copy of the name -> entity mapping for projection into
// response shapes.
func (s State) Entities() map[string]Entity {
	out := make(map[string]Entity, len(s.entities))
	for name, entity := range s.entities {
		out[name] = entity
	}
	return out
}

// Account returns the named account, materializing an empty one if the name
// is unbound. Account lookups are total.
func (s State) Account(name string) *Account {
	if entity, ok := s.entities[name]; ok {
		if account, ok := entity.(*Account); ok {
			return account
		}
	}
	return NewAccount()
}

// Balances returns the balance ledger, materializing an empty one on first
// reference.
func (s State) Balances() *PersonBalances {
	if entity, ok := s.entities[BalancesKey]; ok {
		if balances, ok := entity.(*PersonBalances); ok {
			return balances
		}
	}
	return NewPersonBalances()
}

// Loan returns the named loan, or an error if the name is unbound or bound
// to a different entity kind.
func (s State) Loan(name string) (*Loan, error) {
	entity, ok := s.entities[name]
	if !ok {
		return nil, fmt.Errorf("loan %q not found", name)
	}
	loan, ok := entity.(*Loan)
	if !ok {
		return nil, fmt.Errorf("entity %q is a %s, not a loan", name, entity.Kind())
	}
	return loan, nil
}

// Bill returns the named bill, or an error if the name is unbound or bound
// to a different entity kind.
func (s State) Bill(name string) (*Bill, error) {
	entity, ok := s.entities[name]
	if !ok {
		return nil, fmt.Errorf("bill %q not found", name)
	}
	bill, ok := entity.(*Bill)
	if !ok {
		return nil, fmt.Errorf("entity %q is a %s, not a bill", name, entity.Kind())
	}
	return bill, nil
}
