package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeBusiness   AccountType = "business"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeInvestment, AccountTypeBusiness:
		return true
	}
	return false
}

type MovementKind string

const (
	MovementDeposit    MovementKind = "deposit"
	MovementWithdrawal MovementKind = "withdrawal"
	MovementTransfer   MovementKind = "transfer"
)

func (k MovementKind) Valid() bool {
	switch k {
	case MovementDeposit, MovementWithdrawal, MovementTransfer:
		return true
	}
	return false
}

type LoanStatus string

const (
	LoanPending LoanStatus = "pending"
	LoanActive  LoanStatus = "active"
	LoanPaid    LoanStatus = "paid"
)

type CreditStatus string

const (
	CreditPending CreditStatus = "pending"
	CreditActive  CreditStatus = "active"
	CreditClosed  CreditStatus = "closed"
)

// Movement is an immutable ledger entry. BalanceAfter snapshots the account
// balance once this movement has been applied.
type Movement struct {
	ID           string          `json:"id"`
	Kind         MovementKind    `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
}

type Loan struct {
	ID                string          `json:"id"`
	Amount            decimal.Decimal `json:"amount"`
	MonthlyPayment    decimal.Decimal `json:"monthlyPayment"`
	RemainingPayments int             `json:"remainingPayments"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	Status            LoanStatus      `json:"status"`
	Purpose           string          `json:"purpose,omitempty"`
	ApprovalDate      *time.Time      `json:"approvalDate,omitempty"`
}

// Credit is a revolving line. Amount is the drawn balance and never exceeds Limit.
type Credit struct {
	ID              string           `json:"id"`
	Amount          decimal.Decimal  `json:"amount"`
	Limit           decimal.Decimal  `json:"limit"`
	InterestRate    decimal.Decimal  `json:"interestRate"`
	Status          CreditStatus     `json:"status"`
	MonthlyPayment  *decimal.Decimal `json:"monthlyPayment,omitempty"`
	NextPaymentDate *time.Time       `json:"nextPaymentDate,omitempty"`
	CreditScore     *int             `json:"creditScore,omitempty"`
	ApprovalDate    *time.Time       `json:"approvalDate,omitempty"`
}

// Account is the aggregate persisted as a single document. PasswordHash is
// carried in memory but never serialised to API responses; the repository
// persists it through its own record type.
type Account struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	FullName      string          `json:"fullName"`
	Email         string          `json:"email"`
	PasswordHash  string          `json:"-"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   AccountType     `json:"accountType"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	IsActive      bool            `json:"isActive"`
	Movements     []Movement      `json:"movements"`
	Loans         []Loan          `json:"loans"`
	Credits       []Credit        `json:"credits"`
}

type AdminInfo struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// ActivityEntry is one audit record of the per-day activity log.
type ActivityEntry struct {
	Action    string         `json:"action"`
	AccountID string         `json:"accountId"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}
