package models

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Signed returns amount with the sign the movement kind applies to a balance.
// Deposits credit the account; withdrawals and outgoing transfers debit it.
func (k MovementKind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == MovementDeposit {
		return amount
	}
	return amount.Neg()
}

// NextBalance applies a movement to balance. It reports false when a debit
// would leave the balance negative.
func NextBalance(balance decimal.Decimal, kind MovementKind, amount decimal.Decimal) (decimal.Decimal, bool) {
	next := balance.Add(kind.Signed(amount))
	if next.IsNegative() {
		return balance, false
	}
	return next, true
}

// LedgerBalance recomputes the balance from the movement history.
func (a *Account) LedgerBalance() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Movements {
		total = total.Add(m.Kind.Signed(m.Amount))
	}
	return total
}

func (a *Account) HasActiveLoan() bool {
	for _, l := range a.Loans {
		if l.Status == LoanActive {
			return true
		}
	}
	return false
}

func (a *Account) LoanIndex(id string) int {
	for i := range a.Loans {
		if a.Loans[i].ID == id {
			return i
		}
	}
	return -1
}

func (a *Account) CreditIndex(id string) int {
	for i := range a.Credits {
		if a.Credits[i].ID == id {
			return i
		}
	}
	return -1
}

// Available is the undrawn part of the credit line.
func (c Credit) Available() decimal.Decimal {
	return c.Limit.Sub(c.Amount)
}

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(hundred).Div(twelve)
}

// LoanMonthlyPayment is the standard amortised instalment
// P*r/(1-(1+r)^-n), written as P*r*g/(g-1) with g = (1+r)^n.
func LoanMonthlyPayment(principal, annualPercent decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(termMonths))
	r := MonthlyRate(annualPercent)
	if r.IsZero() {
		return principal.Div(n).Round(2)
	}
	growth := one.Add(r).Pow(n)
	return principal.Mul(r).Mul(growth).Div(growth.Sub(one)).Round(2)
}

// CreditMinimumPayment is one month of interest on the full limit plus 1% of it.
func CreditMinimumPayment(limit, annualPercent decimal.Decimal) decimal.Decimal {
	interest := limit.Mul(MonthlyRate(annualPercent))
	return interest.Add(limit.Div(hundred)).Round(2)
}

// CanTransitionTo enforces pending -> active -> paid.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	switch s {
	case LoanPending:
		return next == LoanActive
	case LoanActive:
		return next == LoanPaid
	}
	return false
}

// CanTransitionTo enforces pending -> active -> closed.
func (s CreditStatus) CanTransitionTo(next CreditStatus) bool {
	switch s {
	case CreditPending:
		return next == CreditActive
	case CreditActive:
		return next == CreditClosed
	}
	return false
}
