package event

import (
	"maps"
	"slices"
	"time"

	"github.com/loansplit/loansplit/internal/domain"
)

// BillCreated tracks an itemized expenditure against an account ledger: the
// bill entity is added and one transaction per item lands on the account.
type BillCreated struct {
	Date        Date              `json:"date"`
	BillName    string            `json:"billName"`
	Description string            `json:"description"`
	Items       []domain.BillItem `json:"items"`
	AccountName string            `json:"acctName"`
}

func (e *BillCreated) EventType() string { return "BillCreated" }
func (e *BillCreated) When() time.Time   { return e.Date.Time }

func (e *BillCreated) Apply(state domain.State) (Outcome, error) {
	bill := domain.NewItemizedBill(e.Description, e.When(), e.AccountName, e.Items)
	account := bill.ApplyToAccount(state.Account(e.AccountName))

	return Outcome{Updates: map[string]domain.Entity{
		e.BillName:    bill,
		e.AccountName: account,
	}}, nil
}

// BillAdded records an expenditure against the person-balance ledger. The
// bill is either itemized or share-based (total + shares summing to 1.0);
// every participant other than the payer ends up owing the payer their part.
type BillAdded struct {
	Date        Date               `json:"date"`
	BillName    string             `json:"billName"`
	Description string             `json:"description"`
	PaidBy      string             `json:"paidBy"`
	Items       []domain.BillItem  `json:"items,omitempty"`
	Total       float64            `json:"total,omitempty"`
	Shares      map[string]float64 `json:"shares,omitempty"`
}

func (e *BillAdded) EventType() string { return "BillAdded" }
func (e *BillAdded) When() time.Time   { return e.Date.Time }

func (e *BillAdded) Apply(state domain.State) (Outcome, error) {
	var bill *domain.Bill
	if len(e.Items) > 0 {
		bill = domain.NewItemizedBill(e.Description, e.When(), e.PaidBy, e.Items)
	} else {
		var err error
		bill, err = domain.NewShareBill(e.Description, e.When(), e.PaidBy, e.Total, e.Shares)
		if err != nil {
			return Outcome{}, err
		}
	}

	balances := state.Balances()
	debts := bill.Debts()
	for _, debtor := range slices.Sorted(maps.Keys(debts)) {
		balances = balances.WithDebt(debtor, e.PaidBy, debts[debtor])
	}

	return Outcome{Updates: map[string]domain.Entity{
		e.BillName:         bill,
		domain.BalancesKey: balances,
	}}, nil
}
