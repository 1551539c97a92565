package domain

import "testing"

func TestWithUpdates(t *testing.T) {
	base := NewState().WithUpdates(map[string]Entity{
		"Joint": NewAccount(),
		"House": NewLoan(1_000_000, 4.5, 360, "Alice", "Bob"),
	})

	updated := base.WithUpdates(map[string]Entity{
		"Joint": NewAccount().WithTransaction(Transaction{Amount: 100, Person: "Alice"}),
	})

	// The new snapshot sees the transaction, the old one does not.
	if got := len(updated.Account("Joint").Transactions()); got != 1 {
		t.Errorf("updated Joint has %d transactions, want 1", got)
	}
	if got := len(base.Account("Joint").Transactions()); got != 0 {
		t.Errorf("base Joint has %d transactions, want 0", got)
	}

	// Untouched entities carry over.
	if _, err := updated.Loan("House"); err != nil {
		t.Errorf("Loan(House) error = %v", err)
	}
}

func TestAccountMaterializesEmpty(t *testing.T) {
	account := NewState().Account("Nowhere")
	if account == nil {
		t.Fatal("Account() = nil, want empty account")
	}
	if got := len(account.Transactions()); got != 0 {
		t.Errorf("len(Transactions()) = %d, want 0", got)
	}
}

func TestBalancesMaterializeEmpty(t *testing.T) {
	balances := NewState().Balances()
	if balances == nil {
		t.Fatal("Balances() = nil, want empty ledger")
	}
	if got := len(balances.Balances()); got != 0 {
		t.Errorf("len(Balances()) = %d, want 0", got)
	}
}

func TestLoanLookupErrors(t *testing.T) {
	state := NewState().WithUpdates(map[string]Entity{
		"Joint": NewAccount(),
	})

	if _, err := state.Loan("House"); err == nil {
		t.Error("Loan(House) error = nil, want not-found error")
	}
	if _, err := state.Loan("Joint"); err == nil {
		t.Error("Loan(Joint) error = nil, want wrong-kind error")
	}
}

func TestBillLookupErrors(t *testing.T) {
	state := NewState()
	if _, err := state.Bill("dinner"); err == nil {
		t.Error("Bill(dinner) error = nil, want not-found error")
	}
}
