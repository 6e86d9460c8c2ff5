package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statistics is the bank-wide summary folded over active accounts.
type Statistics struct {
	TotalAccounts    int             `json:"totalAccounts"`
	TotalBalance     decimal.Decimal `json:"totalBalance"`
	ActiveLoans      int             `json:"activeLoans"`
	ActiveCredits    int             `json:"activeCredits"`
	TotalLoanAmount  decimal.Decimal `json:"totalLoanAmount"`
	TotalCreditLimit decimal.Decimal `json:"totalCreditLimit"`
}

// Backup is the snapshot written by the backup command. The admin record is
// included without its password hash.
type Backup struct {
	Timestamp time.Time  `json:"timestamp"`
	Accounts  []Account  `json:"accounts"`
	Admin     AdminInfo  `json:"admin"`
	Stats     Statistics `json:"stats"`
	Version   string     `json:"version"`
}

// Session is returned by a successful login.
type Session struct {
	Token   string   `json:"token"`
	IsAdmin bool     `json:"isAdmin"`
	Account *Account `json:"user,omitempty"`
}

// Summarize folds the active accounts into Statistics.
func Summarize(accounts []Account) Statistics {
	stats := Statistics{
		TotalBalance:     decimal.Zero,
		TotalLoanAmount:  decimal.Zero,
		TotalCreditLimit: decimal.Zero,
	}
	for i := range accounts {
		a := &accounts[i]
		if !a.IsActive {
			continue
		}
		stats.TotalAccounts++
		stats.TotalBalance = stats.TotalBalance.Add(a.Balance)
		for _, l := range a.Loans {
			if l.Status == LoanActive {
				stats.ActiveLoans++
				stats.TotalLoanAmount = stats.TotalLoanAmount.Add(l.Amount)
			}
		}
		for _, c := range a.Credits {
			if c.Status == CreditActive {
				stats.ActiveCredits++
				stats.TotalCreditLimit = stats.TotalCreditLimit.Add(c.Limit)
			}
		}
	}
	return stats
}
