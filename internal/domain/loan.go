package domain

import (
	"fmt"
	"math"
)

// defaultMonthlyFee is the flat administration fee charged with every
// monthly payment. TODO: make this changeable through an event.
const defaultMonthlyFee = 65

// Payment is one monthly installment broken into its components.
type Payment struct {
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Fee       float64 `json:"fee"`
}

// Total returns the full installment amount.
func (p Payment) Total() float64 {
	return p.Principal + p.Interest + p.Fee
}

// split divides the payment across participants by share. Principal and
// interest scale with the share; the flat fee is split equally.
func (p Payment) split(shares map[string]float64) map[string]Payment {
	out := make(map[string]Payment, len(shares))
	feeShare := p.Fee / float64(len(shares))
	for person, share := range shares {
		out[person] = Payment{
			Principal: p.Principal * share,
			Interest:  p.Interest * share,
			Fee:       feeShare,
		}
	}
	return out
}

// Loan is a fixed-rate, fixed-term amortizing loan. A top-level loan carries
// one sub-loan per participant so each person's remaining balance and share
// of every payment can be tracked individually.
//
// Pending work (queued advance payments, a not-yet-effective rate change) and
// the one-shot overrides (next payment, next split) all live inside the value
// and are applied/cleared together when a payment executes.
type Loan struct {
	remaining  float64
	annualRate float64
	termMonths int
	monthlyFee float64

	totalInterestPaid float64
	totalFeesPaid     float64

	subLoans map[string]*Loan

	pendingRate     *float64
	advancePayments []Transaction
	paymentOverride *Payment
	splitOverride   map[string]float64
}

// NewLoan creates a loan. When two or more participant names are given, the
// principal is partitioned into sub-loans for the first two names: half to
// the first, the remainder to the second.
func NewLoan(principal, annualRate float64, termMonths int, participants ...string) *Loan {
	loan := &Loan{
		remaining:  principal,
		annualRate: annualRate,
		termMonths: termMonths,
		monthlyFee: defaultMonthlyFee,
		subLoans:   make(map[string]*Loan),
	}
	if len(participants) >= 2 {
		half := principal / 2
		loan.subLoans[participants[0]] = NewLoan(half, annualRate, termMonths)
		loan.subLoans[participants[1]] = NewLoan(principal-half, annualRate, termMonths)
	}
	return loan
}

// Kind implements Entity.
func (l *Loan) Kind() Kind { return KindLoan }

func (l *Loan) Remaining() float64         { return l.remaining }
func (l *Loan) AnnualRate() float64        { return l.annualRate }
func (l *Loan) RemainingTerm() int         { return l.termMonths }
func (l *Loan) MonthlyFee() float64        { return l.monthlyFee }
func (l *Loan) TotalInterestPaid() float64 { return l.totalInterestPaid }
func (l *Loan) TotalFeesPaid() float64     { return l.totalFeesPaid }

// SubLoans returns the per-participant partitions. The returned map is a
// copy; the loans it points at are immutable.
func (l *Loan) SubLoans() map[string]*Loan {
	out := make(map[string]*Loan, len(l.subLoans))
	for person, sub := range l.subLoans {
		out[person] = sub
	}
	return out
}

// Participants returns the sub-loan holders in sorted order.
func (l *Loan) Participants() []string {
	return sortedKeys(l.subLoans)
}

func (l *Loan) clone() *Loan {
	updated := &Loan{
		remaining:         l.remaining,
		annualRate:        l.annualRate,
		termMonths:        l.termMonths,
		monthlyFee:        l.monthlyFee,
		totalInterestPaid: l.totalInterestPaid,
		totalFeesPaid:     l.totalFeesPaid,
		subLoans:          make(map[string]*Loan, len(l.subLoans)),
	}
	for person, sub := range l.subLoans {
		updated.subLoans[person] = sub.clone()
	}
	if l.pendingRate != nil {
		rate := *l.pendingRate
		updated.pendingRate = &rate
	}
	if l.paymentOverride != nil {
		override := *l.paymentOverride
		updated.paymentOverride = &override
	}
	if len(l.advancePayments) > 0 {
		updated.advancePayments = make([]Transaction, len(l.advancePayments))
		copy(updated.advancePayments, l.advancePayments)
	}
	if l.splitOverride != nil {
		updated.splitOverride = copyShares(l.splitOverride)
	}
	return updated
}

// NextMonthlyPayment returns the upcoming installment. A one-shot override,
// if present, is returned verbatim. Otherwise the payment follows the annuity
// formula P = principal*r / (1 - (1+r)^-n) with monthly rate r.
func (l *Loan) NextMonthlyPayment() Payment {
	if l.paymentOverride != nil {
		return *l.paymentOverride
	}
	if l.termMonths <= 0 || l.remaining <= 0 {
		return Payment{Fee: l.monthlyFee}
	}

	monthlyRate := l.annualRate / 12 / 100
	if monthlyRate == 0 {
		// Zero-rate limit of the annuity formula.
		return Payment{Principal: l.remaining / float64(l.termMonths), Fee: l.monthlyFee}
	}

	payment := l.remaining * monthlyRate / (1 - math.Pow(1+monthlyRate, float64(-l.termMonths)))
	interest := l.remaining * monthlyRate
	return Payment{Principal: payment - interest, Interest: interest, Fee: l.monthlyFee}
}

// ProjectedInterestRemaining returns the total interest that would accrue
// over the rest of the term if nothing changes: payment*term - principal,
// floored at zero. Returns 0 for non-positive rate, term, or balance, where
// the annuity denominator is unstable.
func (l *Loan) ProjectedInterestRemaining() float64 {
	if l.termMonths <= 0 || l.remaining <= 0 || l.annualRate <= 0 {
		return 0
	}
	monthlyRate := l.annualRate / 12 / 100
	payment := l.remaining * monthlyRate / (1 - math.Pow(1+monthlyRate, float64(-l.termMonths)))
	projected := payment*float64(l.termMonths) - l.remaining
	if projected < 0 {
		return 0
	}
	return projected
}

// NextMonthlySplitPayment divides the next installment across sub-loans.
// Shares come from the one-shot split override when set, otherwise from each
// participant's remaining balance relative to the parent. Shares are
// recomputed on every call; they drift as advance payments shrink sub-loan
// balances at different rates.
func (l *Loan) NextMonthlySplitPayment() map[string]Payment {
	return l.NextMonthlyPayment().split(l.subLoanShares())
}

func (l *Loan) subLoanShares() map[string]float64 {
	if l.splitOverride != nil {
		return copyShares(l.splitOverride)
	}
	shares := make(map[string]float64, len(l.subLoans))
	for person, sub := range l.subLoans {
		shares[person] = sub.remaining / l.remaining
	}
	return shares
}

// WithAdvancePayment queues an extra principal payment. Balances stay
// untouched until the next payment execution. The payer must hold a sub-loan.
func (l *Loan) WithAdvancePayment(tx Transaction) (*Loan, error) {
	if len(l.subLoans) > 0 {
		if _, ok := l.subLoans[tx.Person]; !ok {
			return nil, fmt.Errorf("advance payment from %q: no such sub-loan participant", tx.Person)
		}
	}
	updated := l.clone()
	updated.advancePayments = append(updated.advancePayments, tx)
	return updated, nil
}

// WithInterestRate queues a rate change on the loan and every sub-loan. The
// new rate takes effect after the next payment execution, so the currently
// quoted installment is unaffected.
func (l *Loan) WithInterestRate(rate float64) *Loan {
	updated := l.clone()
	updated.pendingRate = &rate
	for _, sub := range updated.subLoans {
		subRate := rate
		sub.pendingRate = &subRate
	}
	return updated
}

// WithCorrectNextPayment installs a one-shot override of the next payment's
// principal and interest (the fee is unchanged). Pending advance payments and
// a pending rate change are applied first so the correction composes on top
// of adjustments already due.
func (l *Loan) WithCorrectNextPayment(principal, interest float64) *Loan {
	updated := l.clone()
	updated.applyAdvancePayments()
	updated.applyPendingRateChange()
	updated.paymentOverride = &Payment{Principal: principal, Interest: interest, Fee: l.monthlyFee}
	return updated
}

// WithCorrectNextPaymentSplit installs a one-shot override of how the next
// payment is divided between participants. Contributions are normalized to
// shares; participants left out contribute zero.
func (l *Loan) WithCorrectNextPaymentSplit(contributions map[string]float64) (*Loan, error) {
	if len(l.subLoans) == 0 {
		return nil, fmt.Errorf("loan has no sub-loans to split between")
	}
	if len(contributions) == 0 {
		return nil, fmt.Errorf("at least one contribution override is required")
	}

	var total float64
	for person, contribution := range contributions {
		if _, ok := l.subLoans[person]; !ok {
			return nil, fmt.Errorf("contribution for %q: no such sub-loan participant", person)
		}
		if contribution < 0 {
			return nil, fmt.Errorf("contribution for %q must not be negative", person)
		}
		total += contribution
	}
	if total <= 0 {
		return nil, fmt.Errorf("contribution total must be positive")
	}

	override := make(map[string]float64, len(l.subLoans))
	for person := range l.subLoans {
		override[person] = contributions[person] / total
	}

	updated := l.clone()
	updated.splitOverride = override
	return updated, nil
}

// WithExecuteNextPayment executes the upcoming installment: reduces parent
// and sub-loan balances by each principal share, accrues interest and fees,
// decrements the remaining term, then folds in queued advance payments and a
// pending rate change, and clears both one-shot overrides.
//
// The split is computed on balances before this cycle's advance payments are
// applied; advance payments affect the loan from the following cycle onward.
func (l *Loan) WithExecuteNextPayment() *Loan {
	updated := l.clone()

	split := updated.NextMonthlySplitPayment()
	for _, person := range sortedKeys(split) {
		payment := split[person]
		updated.remaining -= payment.Principal
		updated.totalInterestPaid += payment.Interest
		updated.totalFeesPaid += payment.Fee

		sub := updated.subLoans[person]
		sub.remaining -= payment.Principal
		sub.totalInterestPaid += payment.Interest
		sub.totalFeesPaid += payment.Fee
		sub.termMonths--
	}

	updated.termMonths--
	updated.applyAdvancePayments()
	updated.applyPendingRateChange()
	updated.paymentOverride = nil
	updated.splitOverride = nil
	return updated
}

func (l *Loan) applyAdvancePayments() {
	for _, tx := range l.advancePayments {
		l.remaining -= tx.Amount
		if sub, ok := l.subLoans[tx.Person]; ok {
			sub.remaining -= tx.Amount
		}
	}
	l.advancePayments = nil
}

func (l *Loan) applyPendingRateChange() {
	if l.pendingRate != nil {
		l.annualRate = *l.pendingRate
		l.pendingRate = nil
	}
	for _, sub := range l.subLoans {
		sub.applyPendingRateChange()
	}
}
