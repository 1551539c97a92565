package domain

// Kind discriminates the closed set of entity types a State can hold.
type Kind string

const (
	KindAccount  Kind = "account"
	KindLoan     Kind = "loan"
	KindBill     Kind = "bill"
	KindBalances Kind = "balances"
)

// Entity is implemented by every value stored in a State.
type Entity interface {
	Kind() Kind
}
