package event

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/loansplit/loansplit/internal/domain"
)

// loanPaymentCategory is the bill category for scheduled payments.
const loanPaymentCategory = "LoanPayment"

// LoanContracted represents signing a new loan contract. The loan entity is
// created with a sub-loan per borrower (principal split 50/50, remainder to
// the second name) and the first monthly payment is scheduled.
type LoanContracted struct {
	Date               Date    `json:"date"`
	LoanName           string  `json:"loanName"`
	Principal          float64 `json:"principal"`
	NominalRate        float64 `json:"nominalRate"`
	Term               int     `json:"term"`
	BackingAccountName string  `json:"backingAccountName"`
	Name1              string  `json:"name1"`
	Name2              string  `json:"name2"`
}

func (e *LoanContracted) EventType() string { return "LoanContracted" }
func (e *LoanContracted) When() time.Time   { return e.Date.Time }

func (e *LoanContracted) Apply(domain.State) (Outcome, error) {
	loan := domain.NewLoan(e.Principal, e.NominalRate, e.Term, e.Name1, e.Name2)

	return Outcome{
		Updates: map[string]domain.Entity{
			e.LoanName: loan,
		},
		Deferred: nextPaymentMaybeEvent(e.When(), e.BackingAccountName, e.LoanName, e.Term),
	}, nil
}

// AdvancePayment queues an extra principal payment by one participant. The
// loan's balances stay untouched until the next payment execution.
type AdvancePayment struct {
	Date        Date               `json:"date"`
	LoanName    string             `json:"loanName"`
	Transaction domain.Transaction `json:"transaction"`
}

func (e *AdvancePayment) EventType() string { return "AdvancePayment" }
func (e *AdvancePayment) When() time.Time   { return e.Date.Time }

func (e *AdvancePayment) Apply(state domain.State) (Outcome, error) {
	loan, err := state.Loan(e.LoanName)
	if err != nil {
		return Outcome{}, err
	}
	updated, err := loan.WithAdvancePayment(e.Transaction)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Updates: map[string]domain.Entity{e.LoanName: updated}}, nil
}

// InterestRateChanged marks the loan (and each sub-loan) with an upcoming
// rate that becomes active after the next payment.
type InterestRateChanged struct {
	Date     Date    `json:"date"`
	LoanName string  `json:"loanName"`
	Rate     float64 `json:"rate"`
}

func (e *InterestRateChanged) EventType() string { return "InterestRateChanged" }
func (e *InterestRateChanged) When() time.Time   { return e.Date.Time }

func (e *InterestRateChanged) Apply(state domain.State) (Outcome, error) {
	loan, err := state.Loan(e.LoanName)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Updates: map[string]domain.Entity{e.LoanName: loan.WithInterestRate(e.Rate)}}, nil
}

// CorrectNextLoanPayment overrides the next payment's computed
// principal/interest, for when the bank issues corrected numbers.
type CorrectNextLoanPayment struct {
	Date      Date    `json:"date"`
	LoanName  string  `json:"loanName"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
}

func (e *CorrectNextLoanPayment) EventType() string { return "CorrectNextLoanPayment" }
func (e *CorrectNextLoanPayment) When() time.Time   { return e.Date.Time }

func (e *CorrectNextLoanPayment) Apply(state domain.State) (Outcome, error) {
	loan, err := state.Loan(e.LoanName)
	if err != nil {
		return Outcome{}, err
	}
	updated := loan.WithCorrectNextPayment(e.Principal, e.Interest)
	return Outcome{Updates: map[string]domain.Entity{e.LoanName: updated}}, nil
}

// CorrectNextLoanPaymentSplit changes how the next payment is divided
// between participants, for when one person fronts more of an installment.
type CorrectNextLoanPaymentSplit struct {
	Date          Date               `json:"date"`
	LoanName      string             `json:"loanName"`
	Contributions map[string]float64 `json:"contributions"`
}

func (e *CorrectNextLoanPaymentSplit) EventType() string { return "CorrectNextLoanPaymentSplit" }
func (e *CorrectNextLoanPaymentSplit) When() time.Time   { return e.Date.Time }

func (e *CorrectNextLoanPaymentSplit) Apply(state domain.State) (Outcome, error) {
	loan, err := state.Loan(e.LoanName)
	if err != nil {
		return Outcome{}, err
	}
	updated, err := loan.WithCorrectNextPaymentSplit(e.Contributions)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Updates: map[string]domain.Entity{e.LoanName: updated}}, nil
}

// LoanPayment executes a scheduled monthly payment. The per-person split is
// recorded through an inline BillCreated event, which lands one transaction
// per participant on the backing account; the loan executes the payment, and
// the next payment is scheduled one month out.
type LoanPayment struct {
	Date            Date   `json:"date"`
	FromAccountName string `json:"fromAccountName"`
	LoanName        string `json:"loanName"`
}

func (e *LoanPayment) EventType() string { return "LoanPayment" }
func (e *LoanPayment) When() time.Time   { return e.Date.Time }

func (e *LoanPayment) Apply(state domain.State) (Outcome, error) {
	loan, err := state.Loan(e.LoanName)
	if err != nil {
		return Outcome{}, err
	}

	split := loan.NextMonthlySplitPayment()
	items := make([]domain.BillItem, 0, len(split))
	for _, person := range slices.Sorted(maps.Keys(split)) {
		items = append(items, domain.BillItem{
			Amount:   split[person].Total(),
			Person:   person,
			Category: loanPaymentCategory,
		})
	}

	bill := &BillCreated{
		Date:        e.Date,
		BillName:    fmt.Sprintf("%s_payment_%s", e.LoanName, e.Date.Format(dateLayout)),
		Description: fmt.Sprintf("Loan payment for %s", e.LoanName),
		Items:       items,
		AccountName: e.FromAccountName,
	}

	executed := loan.WithExecuteNextPayment()

	return Outcome{
		Updates: map[string]domain.Entity{
			e.LoanName: executed,
		},
		Deferred: nextPaymentMaybeEvent(e.When(), e.FromAccountName, e.LoanName, executed.RemainingTerm()),
		Inline:   []Event{bill},
	}, nil
}

// nextPaymentMaybeEvent schedules the next monthly payment for the last
// calendar day of the month following the given date. At fire time the
// factory re-checks that the loan's remaining term still matches what was
// expected when scheduling; a mismatch or a negative term means the loan was
// altered out from under the schedule and the recurrence stops.
func nextPaymentMaybeEvent(at time.Time, fromAccountName, loanName string, remainingTerm int) *MaybeEvent {
	firstOfMonth := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	checkDate := firstOfMonth.AddDate(0, 2, 0).AddDate(0, 0, -1)

	return &MaybeEvent{
		CheckDate: checkDate,
		Factory: func(state domain.State) Event {
			loan, err := state.Loan(loanName)
			if err != nil {
				return nil
			}
			if loan.RemainingTerm() != remainingTerm || loan.RemainingTerm() < 0 {
				return nil
			}
			return &LoanPayment{
				Date:            DateOf(checkDate),
				FromAccountName: fromAccountName,
				LoanName:        loanName,
			}
		},
	}
}
