package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLoanMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		expected  string
	}{
		{name: "one percent monthly", principal: "1000", rate: "12", term: 12, expected: "88.85"},
		{name: "zero rate divides evenly", principal: "12000", rate: "0", term: 12, expected: "1000"},
		{name: "zero rate rounds to cents", principal: "100", rate: "0", term: 3, expected: "33.33"},
		{name: "non-positive term", principal: "100", rate: "5", term: 0, expected: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LoanMonthlyPayment(d(tt.principal), d(tt.rate), tt.term)
			assert.True(t, d(tt.expected).Equal(got), "expected %s got %s", tt.expected, got)
		})
	}
}

func TestCreditMinimumPayment(t *testing.T) {
	assert.True(t, d("30.21").Equal(CreditMinimumPayment(d("2500"), d("2.5"))))
	assert.True(t, d("10").Equal(CreditMinimumPayment(d("1000"), d("0"))))
}

func TestNextBalance(t *testing.T) {
	next, ok := NextBalance(d("100"), MovementDeposit, d("50"))
	assert.True(t, ok)
	assert.True(t, d("150").Equal(next))

	next, ok = NextBalance(d("100"), MovementWithdrawal, d("100"))
	assert.True(t, ok)
	assert.True(t, next.IsZero())

	next, ok = NextBalance(d("100"), MovementTransfer, d("100.01"))
	assert.False(t, ok)
	assert.True(t, d("100").Equal(next))
}

func TestLedgerBalance(t *testing.T) {
	a := Account{Movements: []Movement{
		{Kind: MovementDeposit, Amount: d("1000")},
		{Kind: MovementWithdrawal, Amount: d("250.50")},
		{Kind: MovementTransfer, Amount: d("49.50")},
		{Kind: MovementDeposit, Amount: d("0.01")},
	}}
	assert.True(t, d("700.01").Equal(a.LedgerBalance()))
}

func TestAvailableCredit(t *testing.T) {
	c := Credit{Amount: d("500"), Limit: d("2500")}
	assert.True(t, d("2000").Equal(c.Available()))
}

func TestLoanStatusTransitions(t *testing.T) {
	assert.True(t, LoanPending.CanTransitionTo(LoanActive))
	assert.True(t, LoanActive.CanTransitionTo(LoanPaid))
	assert.False(t, LoanPending.CanTransitionTo(LoanPaid))
	assert.False(t, LoanPaid.CanTransitionTo(LoanActive))
	assert.False(t, LoanPaid.CanTransitionTo(LoanPending))
}

func TestCreditStatusTransitions(t *testing.T) {
	assert.True(t, CreditPending.CanTransitionTo(CreditActive))
	assert.True(t, CreditActive.CanTransitionTo(CreditClosed))
	assert.False(t, CreditPending.CanTransitionTo(CreditClosed))
	assert.False(t, CreditClosed.CanTransitionTo(CreditActive))
}

func TestAccountLookups(t *testing.T) {
	a := Account{
		Loans:   []Loan{{ID: "loan_1", Status: LoanPaid}, {ID: "loan_2", Status: LoanActive}},
		Credits: []Credit{{ID: "credit_1"}},
	}
	assert.True(t, a.HasActiveLoan())
	assert.Equal(t, 1, a.LoanIndex("loan_2"))
	assert.Equal(t, -1, a.LoanIndex("loan_9"))
	assert.Equal(t, 0, a.CreditIndex("credit_1"))
	assert.Equal(t, -1, a.CreditIndex("missing"))
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, AccountTypeBusiness.Valid())
	assert.False(t, AccountType("personal").Valid())
	assert.True(t, MovementTransfer.Valid())
	assert.False(t, MovementKind("refund").Valid())
}
