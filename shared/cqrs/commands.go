package cqrs

import (
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/shopspring/decimal"
)

// ---------- Account commands ----------

type CreateAccountCommand struct {
	FullName       string
	Email          string
	Password       string
	Phone          string
	Address        string
	AccountType    models.AccountType
	InitialBalance decimal.Decimal
}

// UpdateAccountCommand patches only the non-nil fields. A Balance that
// differs from the stored one becomes an adjustment movement.
type UpdateAccountCommand struct {
	AccountID   string
	FullName    *string
	Email       *string
	Phone       *string
	Address     *string
	Password    *string
	AccountType *models.AccountType
	Balance     *decimal.Decimal
	IsActive    *bool
}

type DeleteAccountCommand struct {
	AccountID string
}

// ---------- Ledger commands ----------

type RecordMovementCommand struct {
	AccountID   string
	Kind        models.MovementKind
	Amount      decimal.Decimal
	Description string
}

// CreateLoanCommand with Status pending files an application; active
// disburses immediately.
type CreateLoanCommand struct {
	AccountID    string
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	TermMonths   int
	Purpose      string
	Status       models.LoanStatus
}

type LoanCommand struct {
	AccountID string
	LoanID    string
}

type OpenCreditCommand struct {
	AccountID    string
	Limit        decimal.Decimal
	InterestRate decimal.Decimal
	CreditScore  *int
	Status       models.CreditStatus
}

type CreditCommand struct {
	AccountID string
	CreditID  string
}

type CreditAmountCommand struct {
	AccountID string
	CreditID  string
	Amount    decimal.Decimal
}

type AdjustCreditLimitCommand struct {
	AccountID string
	CreditID  string
	Limit     decimal.Decimal
}

// ---------- Admin commands ----------

type UpdateAdminCommand struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
}

// ---------- Auth commands ----------

type LoginCommand struct {
	Identifier string
	Password   string
}

type RefreshTokenCommand struct {
	Token string
}
