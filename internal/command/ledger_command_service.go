package command

import (
	"context"
	"strings"
	"time"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	descLoanPayment    = "Loan payment"
	descCreditDraw     = "Credit line draw"
	descCreditRepay    = "Credit line repayment"
	descAdjustment     = "Administrative balance adjustment"
	descInitialDeposit = "Initial deposit"
)

var defaultDescriptions = map[models.MovementKind]string{
	models.MovementDeposit:    "Deposit",
	models.MovementWithdrawal: "Withdrawal",
	models.MovementTransfer:   "Transfer",
}

// LoanPayment is the result of one instalment.
type LoanPayment struct {
	Loan     models.Loan     `json:"loan"`
	Movement models.Movement `json:"movement"`
}

// CreditMovement is the result of a draw or repayment.
type CreditMovement struct {
	Credit   models.Credit   `json:"credit"`
	Movement models.Movement `json:"movement"`
}

// LedgerCommandService owns every balance-affecting operation. Each one is
// a single read-modify-write of the account document.
type LedgerCommandService struct {
	w *accountWriter
}

func NewLedgerCommandService(store repository.Store, publisher EventPublisher, logger logrus.FieldLogger) *LedgerCommandService {
	return &LedgerCommandService{w: newAccountWriter(store, publisher, logger)}
}

func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.Validation("%s must be positive", field)
	}
	if !amount.Equal(amount.Round(2)) {
		return apperror.Validation("%s must have at most two decimals", field)
	}
	return nil
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return apperror.Validation("interestRate must not be negative")
	}
	return nil
}

// appendMovement applies a movement to the in-memory account. The caller
// persists balance and movement together.
func appendMovement(account *models.Account, id string, kind models.MovementKind, amount decimal.Decimal, description string, at time.Time) (models.Movement, error) {
	if !kind.Valid() {
		return models.Movement{}, apperror.Validation("unknown movement type %q", kind)
	}
	if err := validateAmount("amount", amount); err != nil {
		return models.Movement{}, err
	}
	next, ok := models.NextBalance(account.Balance, kind, amount)
	if !ok {
		return models.Movement{}, apperror.New(apperror.CodeInsufficientFunds,
			"balance %s cannot cover %s", account.Balance.StringFixed(2), amount.StringFixed(2))
	}
	if strings.TrimSpace(description) == "" {
		description = defaultDescriptions[kind]
	}
	m := models.Movement{
		ID:           id,
		Kind:         kind,
		Amount:       amount,
		Description:  description,
		Date:         at,
		BalanceAfter: next,
	}
	account.Balance = next
	account.Movements = append(account.Movements, m)
	return m, nil
}

func (s *LedgerCommandService) RecordMovement(ctx context.Context, cmd cqrs.RecordMovementCommand) (*models.Movement, error) {
	var movement models.Movement
	account, err := s.w.mutate(ctx, "record_movement", cmd.AccountID, func(a *models.Account) error {
		var err error
		movement, err = appendMovement(a, s.w.newID(ctx, "movement"), cmd.Kind, cmd.Amount, cmd.Description, s.w.now())
		return err
	})
	if err != nil {
		s.w.logger.WithFields(logrus.Fields{
			"operation":  "record_movement",
			"account_id": cmd.AccountID,
			"type":       cmd.Kind,
			"amount":     cmd.Amount.String(),
		}).WithError(err).Info("movement not recorded")
		return nil, err
	}
	s.movementRecorded(ctx, account, movement)
	return &movement, nil
}

func (s *LedgerCommandService) movementRecorded(ctx context.Context, account *models.Account, m models.Movement) {
	s.w.activity(ctx, ActionMovement, account.ID, map[string]any{
		"movementId":   m.ID,
		"type":         m.Kind,
		"amount":       m.Amount.StringFixed(2),
		"balanceAfter": m.BalanceAfter.StringFixed(2),
	})
	s.w.publish(ctx, events.MovementRecorded, events.MovementRecordedEvent{
		AccountID:    account.ID,
		MovementID:   m.ID,
		Type:         string(m.Kind),
		Amount:       m.Amount.StringFixed(2),
		BalanceAfter: m.BalanceAfter.StringFixed(2),
	})
}

// CreateLoan files a pending application or, with status active, disburses
// the loan. Disbursement creates no movement.
func (s *LedgerCommandService) CreateLoan(ctx context.Context, cmd cqrs.CreateLoanCommand) (*models.Loan, error) {
	if err := validateAmount("amount", cmd.Principal); err != nil {
		return nil, err
	}
	if err := validateRate(cmd.InterestRate); err != nil {
		return nil, err
	}
	if cmd.TermMonths <= 0 {
		return nil, apperror.Validation("termMonths must be positive")
	}
	status := cmd.Status
	if status == "" {
		status = models.LoanActive
	}
	if status != models.LoanPending && status != models.LoanActive {
		return nil, apperror.Validation("a new loan must be pending or active")
	}

	var loan models.Loan
	account, err := s.w.mutate(ctx, "create_loan", cmd.AccountID, func(a *models.Account) error {
		loan = models.Loan{
			ID:                s.w.newID(ctx, "loan"),
			Amount:            cmd.Principal,
			MonthlyPayment:    models.LoanMonthlyPayment(cmd.Principal, cmd.InterestRate, cmd.TermMonths),
			RemainingPayments: cmd.TermMonths,
			InterestRate:      cmd.InterestRate,
			Status:            status,
			Purpose:           strings.TrimSpace(cmd.Purpose),
		}
		if status == models.LoanActive {
			at := s.w.now()
			loan.ApprovalDate = &at
		}
		a.Loans = append(a.Loans, loan)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.w.activity(ctx, ActionCreateLoan, account.ID, map[string]any{
		"loanId": loan.ID,
		"amount": loan.Amount.StringFixed(2),
		"status": loan.Status,
	})
	s.w.publish(ctx, events.LoanCreated, loanEvent(account.ID, loan))
	return &loan, nil
}

// DisburseLoan appends an active loan to the account.
func (s *LedgerCommandService) DisburseLoan(ctx context.Context, accountID string, principal, rate decimal.Decimal, termMonths int, purpose string) (*models.Loan, error) {
	return s.CreateLoan(ctx, cqrs.CreateLoanCommand{
		AccountID:    accountID,
		Principal:    principal,
		InterestRate: rate,
		TermMonths:   termMonths,
		Purpose:      purpose,
		Status:       models.LoanActive,
	})
}

func (s *LedgerCommandService) ApproveLoan(ctx context.Context, cmd cqrs.LoanCommand) (*models.Loan, error) {
	return s.transitionLoan(ctx, cmd, models.LoanActive)
}

// CloseLoan marks an active loan paid. Paid is terminal.
func (s *LedgerCommandService) CloseLoan(ctx context.Context, cmd cqrs.LoanCommand) (*models.Loan, error) {
	return s.transitionLoan(ctx, cmd, models.LoanPaid)
}

func (s *LedgerCommandService) transitionLoan(ctx context.Context, cmd cqrs.LoanCommand, next models.LoanStatus) (*models.Loan, error) {
	var loan models.Loan
	account, err := s.w.mutate(ctx, "update_loan", cmd.AccountID, func(a *models.Account) error {
		i := a.LoanIndex(cmd.LoanID)
		if i < 0 {
			return apperror.NotFound("loan %s not found", cmd.LoanID)
		}
		l := &a.Loans[i]
		if !l.Status.CanTransitionTo(next) {
			return apperror.Conflict("loan %s cannot go from %s to %s", l.ID, l.Status, next)
		}
		l.Status = next
		switch next {
		case models.LoanActive:
			at := s.w.now()
			l.ApprovalDate = &at
		case models.LoanPaid:
			l.RemainingPayments = 0
		}
		loan = *l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.w.activity(ctx, ActionUpdateLoan, account.ID, map[string]any{"loanId": loan.ID, "status": loan.Status})
	s.w.publish(ctx, events.LoanUpdated, loanEvent(account.ID, loan))
	return &loan, nil
}

// RecordLoanPayment withdraws one monthly instalment. The loan becomes paid
// when no payments remain.
func (s *LedgerCommandService) RecordLoanPayment(ctx context.Context, cmd cqrs.LoanCommand) (*LoanPayment, error) {
	var result LoanPayment
	account, err := s.w.mutate(ctx, "loan_payment", cmd.AccountID, func(a *models.Account) error {
		i := a.LoanIndex(cmd.LoanID)
		if i < 0 {
			return apperror.NotFound("loan %s not found", cmd.LoanID)
		}
		l := &a.Loans[i]
		if l.Status != models.LoanActive {
			return apperror.Conflict("loan %s is %s", l.ID, l.Status)
		}
		m, err := appendMovement(a, s.w.newID(ctx, "movement"), models.MovementWithdrawal, l.MonthlyPayment, descLoanPayment+" "+l.ID, s.w.now())
		if err != nil {
			return err
		}
		// appendMovement may have grown Movements but Loans is untouched.
		l.RemainingPayments--
		if l.RemainingPayments <= 0 {
			l.RemainingPayments = 0
			l.Status = models.LoanPaid
		}
		result = LoanPayment{Loan: *l, Movement: m}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.movementRecorded(ctx, account, result.Movement)
	s.w.publish(ctx, events.LoanUpdated, loanEvent(account.ID, result.Loan))
	return &result, nil
}

// DeleteLoan removes a pending or paid loan. Active loans must be closed first.
func (s *LedgerCommandService) DeleteLoan(ctx context.Context, cmd cqrs.LoanCommand) error {
	var removed models.Loan
	account, err := s.w.mutate(ctx, "delete_loan", cmd.AccountID, func(a *models.Account) error {
		i := a.LoanIndex(cmd.LoanID)
		if i < 0 {
			return apperror.NotFound("loan %s not found", cmd.LoanID)
		}
		if a.Loans[i].Status == models.LoanActive {
			return apperror.Conflict("loan %s is active", cmd.LoanID)
		}
		removed = a.Loans[i]
		a.Loans = append(a.Loans[:i], a.Loans[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.w.activity(ctx, ActionDeleteLoan, account.ID, map[string]any{"loanId": removed.ID})
	s.w.publish(ctx, events.LoanDeleted, loanEvent(account.ID, removed))
	return nil
}

// OpenCredit adds a credit line with nothing drawn.
func (s *LedgerCommandService) OpenCredit(ctx context.Context, cmd cqrs.OpenCreditCommand) (*models.Credit, error) {
	if err := validateAmount("limit", cmd.Limit); err != nil {
		return nil, err
	}
	if err := validateRate(cmd.InterestRate); err != nil {
		return nil, err
	}
	if cmd.CreditScore != nil && (*cmd.CreditScore < 300 || *cmd.CreditScore > 850) {
		return nil, apperror.Validation("creditScore must be between 300 and 850")
	}
	status := cmd.Status
	if status == "" {
		status = models.CreditActive
	}
	if status != models.CreditPending && status != models.CreditActive {
		return nil, apperror.Validation("a new credit must be pending or active")
	}

	var credit models.Credit
	account, err := s.w.mutate(ctx, "open_credit", cmd.AccountID, func(a *models.Account) error {
		now := s.w.now()
		payment := models.CreditMinimumPayment(cmd.Limit, cmd.InterestRate)
		nextPayment := now.AddDate(0, 1, 0)
		credit = models.Credit{
			ID:              s.w.newID(ctx, "credit"),
			Amount:          decimal.Zero,
			Limit:           cmd.Limit,
			InterestRate:    cmd.InterestRate,
			Status:          status,
			MonthlyPayment:  &payment,
			NextPaymentDate: &nextPayment,
			CreditScore:     cmd.CreditScore,
		}
		if status == models.CreditActive {
			credit.ApprovalDate = &now
		}
		a.Credits = append(a.Credits, credit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.w.activity(ctx, ActionCreateCredit, account.ID, map[string]any{
		"creditId": credit.ID,
		"limit":    credit.Limit.StringFixed(2),
		"status":   credit.Status,
	})
	s.w.publish(ctx, events.CreditOpened, creditEvent(account.ID, credit))
	return &credit, nil
}

func (s *LedgerCommandService) ApproveCredit(ctx context.Context, cmd cqrs.CreditCommand) (*models.Credit, error) {
	return s.updateCredit(ctx, "approve_credit", cmd.AccountID, cmd.CreditID, func(c *models.Credit) error {
		if !c.Status.CanTransitionTo(models.CreditActive) {
			return apperror.Conflict("credit %s cannot go from %s to %s", c.ID, c.Status, models.CreditActive)
		}
		at := s.w.now()
		c.Status = models.CreditActive
		c.ApprovalDate = &at
		return nil
	})
}

// CloseCredit marks an active line closed. Closed is terminal.
func (s *LedgerCommandService) CloseCredit(ctx context.Context, cmd cqrs.CreditCommand) (*models.Credit, error) {
	return s.updateCredit(ctx, "close_credit", cmd.AccountID, cmd.CreditID, func(c *models.Credit) error {
		if !c.Status.CanTransitionTo(models.CreditClosed) {
			return apperror.Conflict("credit %s cannot go from %s to %s", c.ID, c.Status, models.CreditClosed)
		}
		c.Status = models.CreditClosed
		c.NextPaymentDate = nil
		return nil
	})
}

// AdjustCreditLimit changes the limit of a pending or active line and
// recomputes its minimum payment. The new limit must cover what is drawn.
func (s *LedgerCommandService) AdjustCreditLimit(ctx context.Context, cmd cqrs.AdjustCreditLimitCommand) (*models.Credit, error) {
	if err := validateAmount("limit", cmd.Limit); err != nil {
		return nil, err
	}
	return s.updateCredit(ctx, "adjust_credit_limit", cmd.AccountID, cmd.CreditID, func(c *models.Credit) error {
		if c.Status == models.CreditClosed {
			return apperror.Conflict("credit %s is closed", c.ID)
		}
		if cmd.Limit.LessThan(c.Amount) {
			return apperror.New(apperror.CodeCreditLimitExceeded,
				"limit %s is below the drawn amount %s", cmd.Limit.StringFixed(2), c.Amount.StringFixed(2))
		}
		payment := models.CreditMinimumPayment(cmd.Limit, c.InterestRate)
		c.Limit = cmd.Limit
		c.MonthlyPayment = &payment
		return nil
	})
}

func (s *LedgerCommandService) updateCredit(ctx context.Context, op, accountID, creditID string, fn func(*models.Credit) error) (*models.Credit, error) {
	var credit models.Credit
	account, err := s.w.mutate(ctx, op, accountID, func(a *models.Account) error {
		i := a.CreditIndex(creditID)
		if i < 0 {
			return apperror.NotFound("credit %s not found", creditID)
		}
		if err := fn(&a.Credits[i]); err != nil {
			return err
		}
		credit = a.Credits[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.w.activity(ctx, ActionUpdateCredit, account.ID, map[string]any{
		"creditId": credit.ID,
		"status":   credit.Status,
		"limit":    credit.Limit.StringFixed(2),
	})
	s.w.publish(ctx, events.CreditUpdated, creditEvent(account.ID, credit))
	return &credit, nil
}

// DrawCredit moves funds from an active line into the account balance.
// The drawn total may reach the limit but never exceed it.
func (s *LedgerCommandService) DrawCredit(ctx context.Context, cmd cqrs.CreditAmountCommand) (*CreditMovement, error) {
	if err := validateAmount("amount", cmd.Amount); err != nil {
		return nil, err
	}
	return s.creditMovement(ctx, "draw_credit", cmd, func(a *models.Account, c *models.Credit) (models.Movement, error) {
		if c.Amount.Add(cmd.Amount).GreaterThan(c.Limit) {
			return models.Movement{}, apperror.New(apperror.CodeCreditLimitExceeded,
				"draw of %s exceeds available credit %s", cmd.Amount.StringFixed(2), c.Available().StringFixed(2))
		}
		m, err := appendMovement(a, s.w.newID(ctx, "movement"), models.MovementDeposit, cmd.Amount, descCreditDraw+" "+c.ID, s.w.now())
		if err != nil {
			return m, err
		}
		c.Amount = c.Amount.Add(cmd.Amount)
		return m, nil
	})
}

// RepayCredit withdraws from the account to reduce the drawn amount.
func (s *LedgerCommandService) RepayCredit(ctx context.Context, cmd cqrs.CreditAmountCommand) (*CreditMovement, error) {
	if err := validateAmount("amount", cmd.Amount); err != nil {
		return nil, err
	}
	return s.creditMovement(ctx, "repay_credit", cmd, func(a *models.Account, c *models.Credit) (models.Movement, error) {
		if cmd.Amount.GreaterThan(c.Amount) {
			return models.Movement{}, apperror.Validation("repayment %s exceeds the drawn amount %s", cmd.Amount.StringFixed(2), c.Amount.StringFixed(2))
		}
		m, err := appendMovement(a, s.w.newID(ctx, "movement"), models.MovementWithdrawal, cmd.Amount, descCreditRepay+" "+c.ID, s.w.now())
		if err != nil {
			return m, err
		}
		c.Amount = c.Amount.Sub(cmd.Amount)
		return m, nil
	})
}

func (s *LedgerCommandService) creditMovement(ctx context.Context, op string, cmd cqrs.CreditAmountCommand, fn func(*models.Account, *models.Credit) (models.Movement, error)) (*CreditMovement, error) {
	var result CreditMovement
	account, err := s.w.mutate(ctx, op, cmd.AccountID, func(a *models.Account) error {
		i := a.CreditIndex(cmd.CreditID)
		if i < 0 {
			return apperror.NotFound("credit %s not found", cmd.CreditID)
		}
		c := &a.Credits[i]
		if c.Status != models.CreditActive {
			return apperror.Conflict("credit %s is %s", c.ID, c.Status)
		}
		m, err := fn(a, c)
		if err != nil {
			return err
		}
		result = CreditMovement{Credit: *c, Movement: m}
		return nil
	})
	if err != nil {
		s.w.logger.WithFields(logrus.Fields{
			"operation":  op,
			"account_id": cmd.AccountID,
			"credit_id":  cmd.CreditID,
			"amount":     cmd.Amount.String(),
		}).WithError(err).Info("credit movement not recorded")
		return nil, err
	}
	s.movementRecorded(ctx, account, result.Movement)
	s.w.publish(ctx, events.CreditUpdated, creditEvent(account.ID, result.Credit))
	return &result, nil
}

// DeleteCredit removes a pending or closed line.
func (s *LedgerCommandService) DeleteCredit(ctx context.Context, cmd cqrs.CreditCommand) error {
	var removed models.Credit
	account, err := s.w.mutate(ctx, "delete_credit", cmd.AccountID, func(a *models.Account) error {
		i := a.CreditIndex(cmd.CreditID)
		if i < 0 {
			return apperror.NotFound("credit %s not found", cmd.CreditID)
		}
		if a.Credits[i].Status == models.CreditActive {
			return apperror.Conflict("credit %s is active", cmd.CreditID)
		}
		removed = a.Credits[i]
		a.Credits = append(a.Credits[:i], a.Credits[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.w.activity(ctx, ActionDeleteCredit, account.ID, map[string]any{"creditId": removed.ID})
	s.w.publish(ctx, events.CreditDeleted, creditEvent(account.ID, removed))
	return nil
}

func loanEvent(accountID string, l models.Loan) events.LoanEvent {
	return events.LoanEvent{
		AccountID: accountID,
		LoanID:    l.ID,
		Status:    string(l.Status),
		Amount:    l.Amount.StringFixed(2),
	}
}

func creditEvent(accountID string, c models.Credit) events.CreditEvent {
	return events.CreditEvent{
		AccountID: accountID,
		CreditID:  c.ID,
		Status:    string(c.Status),
		Amount:    c.Amount.StringFixed(2),
		Limit:     c.Limit.StringFixed(2),
	}
}
