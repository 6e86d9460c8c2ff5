package cqrs

import "time"

// ---------- Account queries ----------

// GetAccountQuery resolves by ID, account number or email, first match wins.
type GetAccountQuery struct {
	AccountID     string
	AccountNumber string
	Email         string
}

// ListAccountsQuery returns every account unless ActiveOnly is set.
type ListAccountsQuery struct {
	ActiveOnly bool
}

// ListMovementsQuery returns movements oldest first. A positive Limit keeps
// only the most recent ones.
type ListMovementsQuery struct {
	AccountID string
	Limit     int
}

// ---------- Admin queries ----------

// ActivityQuery reads one day of the activity log; zero Day means today.
type ActivityQuery struct {
	Day time.Time
}
