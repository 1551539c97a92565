package domain

// BalancesKey is the fixed State key the balance ledger lives under.
const BalancesKey = "Balances"

// DebtEdge is a settlement transfer from one person to another.
type DebtEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// PersonBalances tracks cumulative debts between participants, accumulated
// from bills: debtor -> creditor -> net amount owed. The zero value is an
// empty ledger; State materializes one on first reference. Immutable:
// WithDebt returns a replacement ledger.
type PersonBalances struct {
	balances map[string]map[string]float64
}

// NewPersonBalances returns an empty ledger.
func NewPersonBalances() *PersonBalances {
	return &PersonBalances{}
}

// Kind implements Entity.
func (p *PersonBalances) Kind() Kind { return KindBalances }

// Balances returns a deep copy of the ledger: debtor -> creditor -> amount.
func (p *PersonBalances) Balances() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(p.balances))
	for debtor, creditors := range p.balances {
		row := make(map[string]float64, len(creditors))
		for creditor, amount := range creditors {
			row[creditor] = amount
		}
		out[debtor] = row
	}
	return out
}

// Owed returns how much the debtor currently owes the creditor.
func (p *PersonBalances) Owed(debtor, creditor string) float64 {
	return p.balances[debtor][creditor]
}

// WithDebt returns a new ledger with the delta added to the debtor's running
// total towards the creditor.
func (p *PersonBalances) WithDebt(debtor, creditor string, amount float64) *PersonBalances {
	updated := p.Balances()
	row, ok := updated[debtor]
	if !ok {
		row = make(map[string]float64)
		updated[debtor] = row
	}
	row[creditor] += amount
	return &PersonBalances{balances: updated}
}

// NetBalances collapses the ledger into one net figure per participant:
// positive means the person is owed money overall, negative means they owe.
func (p *PersonBalances) NetBalances() map[string]float64 {
	net := make(map[string]float64)
	for debtor, creditors := range p.balances {
		for creditor, amount := range creditors {
			net[debtor] -= amount
			net[creditor] += amount
		}
	}
	return net
}

// SimplifiedDebts reduces the ledger to a minimal set of transfers using a
// greedy matching of debtors against creditors. Amounts below a cent are
// treated as settled.
func (p *PersonBalances) SimplifiedDebts() []DebtEdge {
	const settled = 0.01

	net := p.NetBalances()

	var debtors, creditors []string
	for _, person := range sortedKeys(net) {
		switch {
		case net[person] < -settled:
			debtors = append(debtors, person)
		case net[person] > settled:
			creditors = append(creditors, person)
		}
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]

		amount := -net[debtor]
		if net[creditor] < amount {
			amount = net[creditor]
		}
		if amount > settled {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}

		net[debtor] += amount
		net[creditor] -= amount

		if -net[debtor] < settled {
			i++
		}
		if net[creditor] < settled {
			j++
		}
	}
	return edges
}
