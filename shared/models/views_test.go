package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	accounts := []Account{
		{
			IsActive: true,
			Balance:  decimal.NewFromInt(1000),
			Loans: []Loan{
				{Amount: decimal.NewFromInt(5000), Status: LoanActive},
				{Amount: decimal.NewFromInt(700), Status: LoanPaid},
			},
		},
		{
			IsActive: true,
			Balance:  decimal.NewFromInt(2000),
			Credits: []Credit{
				{Limit: decimal.NewFromInt(2500), Status: CreditActive},
				{Limit: decimal.NewFromInt(900), Status: CreditPending},
			},
		},
		{
			IsActive: false,
			Balance:  decimal.NewFromInt(99),
			Loans:    []Loan{{Amount: decimal.NewFromInt(1), Status: LoanActive}},
		},
	}

	stats := Summarize(accounts)
	assert.Equal(t, 2, stats.TotalAccounts)
	assert.Equal(t, "3000", stats.TotalBalance.String())
	assert.Equal(t, 1, stats.ActiveLoans)
	assert.Equal(t, "5000", stats.TotalLoanAmount.String())
	assert.Equal(t, 1, stats.ActiveCredits)
	assert.Equal(t, "2500", stats.TotalCreditLimit.String())
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil)
	assert.Zero(t, stats.TotalAccounts)
	assert.True(t, stats.TotalBalance.IsZero())
}
