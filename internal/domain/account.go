package domain

// Transaction records a single movement of money attributed to one person.
type Transaction struct {
	// Amount is the transaction value.
	Amount float64 `json:"amount"`

	// Person is the name of the participant the transaction belongs to.
	Person string `json:"person"`
}

// Account is an append-only ledger of transactions. The zero value is an
// empty, usable account; State materializes one on first reference.
type Account struct {
	transactions []Transaction
}

// NewAccount returns an empty account.
func NewAccount() *Account {
	return &Account{}
}

// Kind implements Entity.
func (a *Account) Kind() Kind { return KindAccount }

// Transactions returns a copy of the recorded transactions in order.
func (a *Account) Transactions() []Transaction {
	out := make([]Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// WithTransaction returns a new account with the transaction appended.
func (a *Account) WithTransaction(tx Transaction) *Account {
	updated := &Account{transactions: make([]Transaction, 0, len(a.transactions)+1)}
	updated.transactions = append(updated.transactions, a.transactions...)
	updated.transactions = append(updated.transactions, tx)
	return updated
}
