package domain

import (
	"math"
	"testing"
)

func TestWithDebt(t *testing.T) {
	ledger := NewPersonBalances().
		WithDebt("Bob", "Alice", 30).
		WithDebt("Bob", "Alice", 20).
		WithDebt("Carol", "Bob", 10)

	if got := ledger.Owed("Bob", "Alice"); math.Abs(got-50) > 0.01 {
		t.Errorf("Owed(Bob, Alice) = %v, want 50", got)
	}
	if got := ledger.Owed("Carol", "Bob"); math.Abs(got-10) > 0.01 {
		t.Errorf("Owed(Carol, Bob) = %v, want 10", got)
	}
	if got := ledger.Owed("Alice", "Bob"); got != 0 {
		t.Errorf("Owed(Alice, Bob) = %v, want 0", got)
	}
}

func TestWithDebtDoesNotMutate(t *testing.T) {
	base := NewPersonBalances().WithDebt("Bob", "Alice", 10)
	base.WithDebt("Bob", "Alice", 90)

	if got := base.Owed("Bob", "Alice"); math.Abs(got-10) > 0.01 {
		t.Errorf("Owed(Bob, Alice) = %v, want 10", got)
	}
}

func TestNetBalances(t *testing.T) {
	ledger := NewPersonBalances().
		WithDebt("Bob", "Alice", 30).
		WithDebt("Alice", "Bob", 10).
		WithDebt("Carol", "Alice", 5)

	net := ledger.NetBalances()
	if got := net["Alice"]; math.Abs(got-25) > 0.01 {
		t.Errorf("Alice net = %v, want 25", got)
	}
	if got := net["Bob"]; math.Abs(got-(-20)) > 0.01 {
		t.Errorf("Bob net = %v, want -20", got)
	}
	if got := net["Carol"]; math.Abs(got-(-5)) > 0.01 {
		t.Errorf("Carol net = %v, want -5", got)
	}
}

func TestSimplifiedDebts(t *testing.T) {
	tests := []struct {
		name  string
		build func() *PersonBalances
		want  []DebtEdge
	}{
		{
			name: "chain collapses to one transfer",
			build: func() *PersonBalances {
				return NewPersonBalances().
					WithDebt("Alice", "Bob", 10).
					WithDebt("Bob", "Carol", 10)
			},
			want: []DebtEdge{{From: "Alice", To: "Carol", Amount: 10}},
		},
		{
			name: "opposite debts cancel",
			build: func() *PersonBalances {
				return NewPersonBalances().
					WithDebt("Alice", "Bob", 25).
					WithDebt("Bob", "Alice", 25)
			},
			want: nil,
		},
		{
			name: "one debtor pays two creditors",
			build: func() *PersonBalances {
				return NewPersonBalances().
					WithDebt("Carol", "Alice", 30).
					WithDebt("Carol", "Bob", 20)
			},
			want: []DebtEdge{
				{From: "Carol", To: "Alice", Amount: 30},
				{From: "Carol", To: "Bob", Amount: 20},
			},
		},
		{
			name: "sub-cent amounts are settled",
			build: func() *PersonBalances {
				return NewPersonBalances().WithDebt("Alice", "Bob", 0.005)
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build().SimplifiedDebts()
			if len(got) != len(tt.want) {
				t.Fatalf("SimplifiedDebts() = %v, want %v", got, tt.want)
			}
			for i, edge := range got {
				want := tt.want[i]
				if edge.From != want.From || edge.To != want.To || math.Abs(edge.Amount-want.Amount) > 0.01 {
					t.Errorf("edge %d = %+v, want %+v", i, edge, want)
				}
			}
		})
	}
}
