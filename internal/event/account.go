package event

import (
	"time"

	"github.com/loansplit/loansplit/internal/domain"
)

// AccountCreated bootstraps a staging account before any money flows.
// Binding the name is idempotent: re-creating resets to an empty account.
type AccountCreated struct {
	Date        Date   `json:"date"`
	AccountName string `json:"acctName"`
}

func (e *AccountCreated) EventType() string { return "AccountCreated" }
func (e *AccountCreated) When() time.Time   { return e.Date.Time }

func (e *AccountCreated) Apply(domain.State) (Outcome, error) {
	return Outcome{Updates: map[string]domain.Entity{
		e.AccountName: domain.NewAccount(),
	}}, nil
}

// AccountTransaction records a manual deposit or withdrawal outside the
// automated loan flow.
type AccountTransaction struct {
	Date        Date               `json:"date"`
	AccountName string             `json:"acctName"`
	Transaction domain.Transaction `json:"transaction"`
}

func (e *AccountTransaction) EventType() string { return "AccountTransaction" }
func (e *AccountTransaction) When() time.Time   { return e.Date.Time }

func (e *AccountTransaction) Apply(state domain.State) (Outcome, error) {
	account := state.Account(e.AccountName).WithTransaction(e.Transaction)
	return Outcome{Updates: map[string]domain.Entity{
		e.AccountName: account,
	}}, nil
}
