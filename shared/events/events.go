package events

import "time"

// Event types
const (
	AccountCreated = "account.created"
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"

	MovementRecorded = "movement.recorded"

	LoanCreated   = "loan.created"
	LoanUpdated   = "loan.updated"
	LoanDeleted   = "loan.deleted"
	CreditOpened  = "credit.opened"
	CreditUpdated = "credit.updated"
	CreditDeleted = "credit.deleted"
)

// Stream names
const (
	AccountEventsStream = "account.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Account events
type AccountCreatedEvent struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	FullName      string `json:"fullName"`
	AccountType   string `json:"accountType"`
}

type AccountUpdatedEvent struct {
	AccountID string   `json:"accountId"`
	Fields    []string `json:"fields"`
}

type AccountDeletedEvent struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
}

// Ledger events. Amounts travel as decimal strings.
type MovementRecordedEvent struct {
	AccountID    string `json:"accountId"`
	MovementID   string `json:"movementId"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	BalanceAfter string `json:"balanceAfter"`
}

type LoanEvent struct {
	AccountID string `json:"accountId"`
	LoanID    string `json:"loanId"`
	Status    string `json:"status"`
	Amount    string `json:"amount"`
}

type CreditEvent struct {
	AccountID string `json:"accountId"`
	CreditID  string `json:"creditId"`
	Status    string `json:"status"`
	Amount    string `json:"amount"`
	Limit     string `json:"limit"`
}
