package api

import (
	"maps"
	"slices"
	"time"

	"github.com/loansplit/loansplit/internal/domain"
)

const dateLayout = "2006-01-02"

// paymentJSON is the wire shape of one monthly installment.
type paymentJSON struct {
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Fee       float64 `json:"fee"`
	Total     float64 `json:"total"`
}

func paymentToJSON(p domain.Payment) paymentJSON {
	return paymentJSON{
		Principal: p.Principal,
		Interest:  p.Interest,
		Fee:       p.Fee,
		Total:     p.Total(),
	}
}

type loanJSON struct {
	RemainingAmount       float64             `json:"remainingAmount"`
	RemainingTermInMonths int                 `json:"remainingTermInMonths"`
	TotalInterestPaid     float64             `json:"totalInterestPaid"`
	TotalFeesPaid         float64             `json:"totalFeesPaid"`
	SubLoans              map[string]loanJSON `json:"subLoans,omitempty"`
}

func loanToJSON(loan *domain.Loan) loanJSON {
	out := loanJSON{
		RemainingAmount:       loan.Remaining(),
		RemainingTermInMonths: loan.RemainingTerm(),
		TotalInterestPaid:     loan.TotalInterestPaid(),
		TotalFeesPaid:         loan.TotalFeesPaid(),
	}
	subLoans := loan.SubLoans()
	if len(subLoans) > 0 {
		out.SubLoans = make(map[string]loanJSON, len(subLoans))
		for person, sub := range subLoans {
			out.SubLoans[person] = loanToJSON(sub)
		}
	}
	return out
}

type accountJSON struct {
	Transactions []domain.Transaction `json:"transactions"`
}

func accountToJSON(account *domain.Account) accountJSON {
	return accountJSON{Transactions: account.Transactions()}
}

type billJSON struct {
	Description string             `json:"description"`
	Date        string             `json:"date"`
	PaidBy      string             `json:"paidBy,omitempty"`
	TotalAmount float64            `json:"totalAmount"`
	Items       []domain.BillItem  `json:"items"`
	Shares      map[string]float64 `json:"shares,omitempty"`
}

func billToJSON(bill *domain.Bill) billJSON {
	return billJSON{
		Description: bill.Description(),
		Date:        bill.Date().Format(dateLayout),
		PaidBy:      bill.PaidBy(),
		TotalAmount: bill.Total(),
		Items:       bill.Items(),
		Shares:      bill.Shares(),
	}
}

type balancesJSON struct {
	Balances        map[string]map[string]float64 `json:"balances"`
	SimplifiedDebts []domain.DebtEdge             `json:"simplifiedDebts"`
}

func balancesToJSON(balances *domain.PersonBalances) balancesJSON {
	return balancesJSON{
		Balances:        balances.Balances(),
		SimplifiedDebts: balances.SimplifiedDebts(),
	}
}

func entityToJSON(entity domain.Entity) any {
	switch e := entity.(type) {
	case *domain.Loan:
		return loanToJSON(e)
	case *domain.Account:
		return accountToJSON(e)
	case *domain.Bill:
		return billToJSON(e)
	case *domain.PersonBalances:
		return balancesToJSON(e)
	default:
		return nil
	}
}

// stateResponse is the wire shape of GET /eventStream/{id}.
type stateResponse struct {
	Entities map[string]any `json:"entities"`
}

func stateToJSON(state domain.State) stateResponse {
	entities := state.Entities()
	out := stateResponse{Entities: make(map[string]any, len(entities))}
	for name, entity := range entities {
		out.Entities[name] = entityToJSON(entity)
	}
	return out
}

// loanSummaryResponse projects one loan into the UX-friendly shape served by
// /eventStream/{id}/loanSummary: next payment totals, remaining principal,
// and projected interest, aggregated and per borrower.
type loanSummaryResponse struct {
	LoanName                           string                 `json:"loanName"`
	NextPaymentTotal                   paymentJSON            `json:"nextPaymentTotal"`
	NextPaymentByPerson                map[string]paymentJSON `json:"nextPaymentByPerson"`
	RemainingAmount                    float64                `json:"remainingAmount"`
	RemainingAmountByPerson            map[string]float64     `json:"remainingAmountByPerson"`
	ProjectedInterestRemaining         float64                `json:"projectedInterestRemaining"`
	ProjectedInterestRemainingByPerson map[string]float64     `json:"projectedInterestRemainingByPerson"`
	SnapshotDate                       string                 `json:"snapshotDate"`
}

func loanSummaryToJSON(loanName string, loan *domain.Loan, snapshotDate time.Time) loanSummaryResponse {
	out := loanSummaryResponse{
		LoanName:                           loanName,
		NextPaymentTotal:                   paymentToJSON(loan.NextMonthlyPayment()),
		NextPaymentByPerson:                map[string]paymentJSON{},
		RemainingAmount:                    loan.Remaining(),
		RemainingAmountByPerson:            map[string]float64{},
		ProjectedInterestRemaining:         loan.ProjectedInterestRemaining(),
		ProjectedInterestRemainingByPerson: map[string]float64{},
		SnapshotDate:                       snapshotDate.Format(dateLayout),
	}

	subLoans := loan.SubLoans()
	if len(subLoans) > 0 {
		for person, payment := range loan.NextMonthlySplitPayment() {
			out.NextPaymentByPerson[person] = paymentToJSON(payment)
		}
	}
	for person, sub := range subLoans {
		out.RemainingAmountByPerson[person] = sub.Remaining()
		out.ProjectedInterestRemainingByPerson[person] = sub.ProjectedInterestRemaining()
	}
	return out
}

// snapshotResponse groups all entities by kind, the shape served by
// POST /eventStream/{id}/stateSnapshot.
type snapshotResponse struct {
	Loans        map[string]loanJSON    `json:"loans"`
	Accounts     map[string]accountJSON `json:"accounts"`
	Bills        map[string]billJSON    `json:"bills"`
	Balances     *balancesJSON          `json:"balances,omitempty"`
	SnapshotDate string                 `json:"snapshotDate"`
}

func snapshotToJSON(state domain.State, snapshotDate time.Time) snapshotResponse {
	out := snapshotResponse{
		Loans:        map[string]loanJSON{},
		Accounts:     map[string]accountJSON{},
		Bills:        map[string]billJSON{},
		SnapshotDate: snapshotDate.Format(dateLayout),
	}

	entities := state.Entities()
	for _, name := range slices.Sorted(maps.Keys(entities)) {
		switch e := entities[name].(type) {
		case *domain.Loan:
			out.Loans[name] = loanToJSON(e)
		case *domain.Account:
			out.Accounts[name] = accountToJSON(e)
		case *domain.Bill:
			out.Bills[name] = billToJSON(e)
		case *domain.PersonBalances:
			balances := balancesToJSON(e)
			out.Balances = &balances
		}
	}
	return out
}
