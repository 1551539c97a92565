package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// shareTolerance is how far a share map's sum may drift from 1.0.
const shareTolerance = 1e-4

// BillItem is a single line on a bill, attributed to one person.
type BillItem struct {
	Amount   float64 `json:"amount"`
	Person   string  `json:"person"`
	Category string  `json:"category"`
}

// Bill is an immutable record of a monetary event for one or more
// participants. A bill is either itemized (a list of BillItems) or
// share-based (a total plus a per-person share map summing to 1.0).
// PaidBy names the account or person that fronted the money.
type Bill struct {
	description string
	date        time.Time
	paidBy      string
	items       []BillItem
	total       float64
	shares      map[string]float64
}

// NewItemizedBill creates a bill from explicit line items. The total is the
// sum of the item amounts.
func NewItemizedBill(description string, date time.Time, paidBy string, items []BillItem) *Bill {
	b := &Bill{
		description: description,
		date:        date,
		paidBy:      paidBy,
		items:       make([]BillItem, len(items)),
	}
	copy(b.items, items)
	for _, item := range items {
		b.total += item.Amount
	}
	return b
}

// NewShareBill creates a share-based bill without itemization. Shares must
// sum to 1.0 within tolerance.
func NewShareBill(description string, date time.Time, paidBy string, total float64, shares map[string]float64) (*Bill, error) {
	if err := validateShares(shares); err != nil {
		return nil, err
	}
	return &Bill{
		description: description,
		date:        date,
		paidBy:      paidBy,
		total:       total,
		shares:      copyShares(shares),
	}, nil
}

// NewSplitBill creates an itemized bill by dividing a total across
// participants by share, one item per person under the given category.
func NewSplitBill(description string, date time.Time, category string, total float64, shares map[string]float64, paidBy string) (*Bill, error) {
	if err := validateShares(shares); err != nil {
		return nil, err
	}
	items := make([]BillItem, 0, len(shares))
	for _, person := range sortedKeys(shares) {
		items = append(items, BillItem{
			Amount:   total * shares[person],
			Person:   person,
			Category: category,
		})
	}
	return NewItemizedBill(description, date, paidBy, items), nil
}

// Kind implements Entity.
func (b *Bill) Kind() Kind { return KindBill }

func (b *Bill) Description() string { return b.description }
func (b *Bill) Date() time.Time     { return b.date }
func (b *Bill) PaidBy() string      { return b.paidBy }

// Total returns the bill total: the sum of item amounts for itemized bills,
// or the declared total for share-based ones.
func (b *Bill) Total() float64 { return b.total }

// Items returns a copy of the bill's line items.
func (b *Bill) Items() []BillItem {
	out := make([]BillItem, len(b.items))
	copy(out, b.items)
	return out
}

// Shares returns a copy of the share map, or nil for itemized bills.
func (b *Bill) Shares() map[string]float64 {
	if b.shares == nil {
		return nil
	}
	return copyShares(b.shares)
}

// Debts computes how much each participant owes the payer: their item total
// for itemized bills, or total*share for share-based ones. The payer itself
// never appears as a debtor.
func (b *Bill) Debts() map[string]float64 {
	debts := make(map[string]float64)
	if len(b.items) > 0 {
		for _, item := range b.items {
			if item.Person == b.paidBy {
				continue
			}
			debts[item.Person] += item.Amount
		}
		return debts
	}
	for person, share := range b.shares {
		if person == b.paidBy {
			continue
		}
		debts[person] = b.total * share
	}
	return debts
}

// ApplyToAccount appends one transaction per participant charge to the
// account, in deterministic order.
func (b *Bill) ApplyToAccount(account *Account) *Account {
	updated := account
	if len(b.items) > 0 {
		for _, item := range b.items {
			updated = updated.WithTransaction(Transaction{Amount: item.Amount, Person: item.Person})
		}
		return updated
	}
	for _, person := range sortedKeys(b.shares) {
		updated = updated.WithTransaction(Transaction{Amount: b.total * b.shares[person], Person: person})
	}
	return updated
}

func validateShares(shares map[string]float64) error {
	if len(shares) == 0 {
		return fmt.Errorf("shares must contain at least one entry")
	}
	var sum float64
	for _, share := range shares {
		sum += share
	}
	if math.Abs(sum-1.0) > shareTolerance {
		return fmt.Errorf("shares must sum to 1.0, but sum is %v", sum)
	}
	return nil
}

func copyShares(shares map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(shares))
	for person, share := range shares {
		out[person] = share
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
