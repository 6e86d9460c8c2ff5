package command

import (
	"context"
	"errors"
	"strings"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/eaglebank/ledger-service/shared/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxAccountNumberAttempts = 50

var errPasswordTooLong = apperror.Validation("password must not exceed %d bytes", utils.MaxPasswordBytes)

// AccountCommandService creates, edits and soft-deletes accounts.
type AccountCommandService struct {
	w       *accountWriter
	numbers func() string
}

func NewAccountCommandService(store repository.Store, publisher EventPublisher, logger logrus.FieldLogger) *AccountCommandService {
	return &AccountCommandService{
		w:       newAccountWriter(store, publisher, logger),
		numbers: utils.GenerateAccountNumber,
	}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	fullName := strings.TrimSpace(cmd.FullName)
	email := strings.TrimSpace(cmd.Email)
	switch {
	case fullName == "":
		return nil, apperror.Validation("fullName is required")
	case email == "":
		return nil, apperror.Validation("email is required")
	case !cmd.AccountType.Valid():
		return nil, apperror.Validation("accountType must be checking, savings, investment or business")
	case cmd.InitialBalance.IsNegative():
		return nil, apperror.Validation("initialBalance must not be negative")
	case !cmd.InitialBalance.Equal(cmd.InitialBalance.Round(2)):
		return nil, apperror.Validation("initialBalance must have at most two decimals")
	case len(cmd.Password) > utils.MaxPasswordBytes:
		return nil, errPasswordTooLong
	}

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}
	number, err := s.freeAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := s.w.now()
	account := &models.Account{
		ID:            s.w.newID(ctx, "account"),
		AccountNumber: number,
		FullName:      fullName,
		Email:         email,
		Phone:         strings.TrimSpace(cmd.Phone),
		Address:       strings.TrimSpace(cmd.Address),
		Balance:       decimal.Zero,
		AccountType:   cmd.AccountType,
		CreatedAt:     now,
		UpdatedAt:     now,
		IsActive:      true,
		Movements:     []models.Movement{},
		Loans:         []models.Loan{},
		Credits:       []models.Credit{},
	}
	if cmd.Password != "" {
		hash, err := utils.HashPassword(cmd.Password)
		if err != nil {
			return nil, apperror.Storage("hash password", err)
		}
		account.PasswordHash = hash
	}
	if cmd.InitialBalance.IsPositive() {
		if _, err := appendMovement(account, s.w.newID(ctx, "movement"), models.MovementDeposit, cmd.InitialBalance, descInitialDeposit, now); err != nil {
			return nil, err
		}
	}

	if err := s.w.store.InsertAccount(ctx, account); err != nil {
		s.w.logger.WithFields(logrus.Fields{
			"operation":  "create_account",
			"account_id": account.ID,
			"amount":     cmd.InitialBalance.String(),
		}).WithError(err).Error("failed to insert account")
		return nil, err
	}

	s.w.activity(ctx, ActionCreateAccount, account.ID, map[string]any{
		"accountNumber": account.AccountNumber,
		"fullName":      account.FullName,
	})
	s.w.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		FullName:      account.FullName,
		AccountType:   string(account.AccountType),
	})
	return account, nil
}

// ensureEmailFree rejects an email already held by another active account.
func (s *AccountCommandService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.w.store.FindAccountByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.IsActive && existing.ID != selfID {
		return apperror.Conflict("email %s is already registered", email)
	}
	return nil
}

// freeAccountNumber draws numbers until one is unused across all accounts.
func (s *AccountCommandService) freeAccountNumber(ctx context.Context) (string, error) {
	for i := 0; i < maxAccountNumberAttempts; i++ {
		number := s.numbers()
		_, err := s.w.store.FindAccountByNumber(ctx, number)
		if errors.Is(err, apperror.ErrNotFound) {
			return number, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", apperror.Conflict("could not allocate a free account number")
}

// UpdateAccount merges the provided fields. A balance change is recorded
// as an adjustment movement, and deactivation follows DeleteAccount rules.
// Inactive accounts accept a patch only when it reactivates them.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
	if err := validatePatch(cmd); err != nil {
		return nil, err
	}
	if cmd.Email != nil {
		if err := s.ensureEmailFree(ctx, strings.TrimSpace(*cmd.Email), cmd.AccountID); err != nil {
			return nil, err
		}
	}

	var (
		fields     []string
		adjustment *models.Movement
	)
	reactivate := cmd.IsActive != nil && *cmd.IsActive
	account, err := s.w.modify(ctx, "update_account", cmd.AccountID, !reactivate, func(a *models.Account) error {
		if reactivate && !a.IsActive {
			if err := s.ensureEmailFree(ctx, a.Email, a.ID); err != nil {
				return err
			}
		}
		if cmd.FullName != nil {
			a.FullName = strings.TrimSpace(*cmd.FullName)
			fields = append(fields, "fullName")
		}
		if cmd.Email != nil {
			a.Email = strings.TrimSpace(*cmd.Email)
			fields = append(fields, "email")
		}
		if cmd.Phone != nil {
			a.Phone = strings.TrimSpace(*cmd.Phone)
			fields = append(fields, "phone")
		}
		if cmd.Address != nil {
			a.Address = strings.TrimSpace(*cmd.Address)
			fields = append(fields, "address")
		}
		if cmd.AccountType != nil {
			a.AccountType = *cmd.AccountType
			fields = append(fields, "accountType")
		}
		if cmd.Password != nil {
			hash, err := utils.HashPassword(*cmd.Password)
			if err != nil {
				return apperror.Storage("hash password", err)
			}
			a.PasswordHash = hash
			fields = append(fields, "password")
		}
		if cmd.Balance != nil && !cmd.Balance.Equal(a.Balance) {
			kind := models.MovementDeposit
			diff := cmd.Balance.Sub(a.Balance)
			if diff.IsNegative() {
				kind = models.MovementWithdrawal
			}
			m, err := appendMovement(a, s.w.newID(ctx, "movement"), kind, diff.Abs(), descAdjustment, s.w.now())
			if err != nil {
				return err
			}
			adjustment = &m
			fields = append(fields, "balance")
		}
		if cmd.IsActive != nil && *cmd.IsActive != a.IsActive {
			if !*cmd.IsActive {
				if err := checkDeletable(a); err != nil {
					return err
				}
			}
			a.IsActive = *cmd.IsActive
			fields = append(fields, "isActive")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if adjustment != nil {
		s.w.activity(ctx, ActionMovement, account.ID, map[string]any{
			"movementId":   adjustment.ID,
			"type":         adjustment.Kind,
			"amount":       adjustment.Amount.StringFixed(2),
			"balanceAfter": adjustment.BalanceAfter.StringFixed(2),
		})
		s.w.publish(ctx, events.MovementRecorded, events.MovementRecordedEvent{
			AccountID:    account.ID,
			MovementID:   adjustment.ID,
			Type:         string(adjustment.Kind),
			Amount:       adjustment.Amount.StringFixed(2),
			BalanceAfter: adjustment.BalanceAfter.StringFixed(2),
		})
	}
	s.w.activity(ctx, ActionUpdateAccount, account.ID, map[string]any{"changes": fields})
	s.w.publish(ctx, events.AccountUpdated, events.AccountUpdatedEvent{AccountID: account.ID, Fields: fields})
	return account, nil
}

func validatePatch(cmd cqrs.UpdateAccountCommand) error {
	switch {
	case cmd.FullName != nil && strings.TrimSpace(*cmd.FullName) == "":
		return apperror.Validation("fullName must not be empty")
	case cmd.Email != nil && strings.TrimSpace(*cmd.Email) == "":
		return apperror.Validation("email must not be empty")
	case cmd.AccountType != nil && !cmd.AccountType.Valid():
		return apperror.Validation("accountType must be checking, savings, investment or business")
	case cmd.Password != nil && *cmd.Password == "":
		return apperror.Validation("password must not be empty")
	case cmd.Password != nil && len(*cmd.Password) > utils.MaxPasswordBytes:
		return errPasswordTooLong
	case cmd.Balance != nil && cmd.Balance.IsNegative():
		return apperror.Validation("balance must not be negative")
	case cmd.Balance != nil && !cmd.Balance.Equal(cmd.Balance.Round(2)):
		return apperror.Validation("balance must have at most two decimals")
	}
	return nil
}

func checkDeletable(a *models.Account) error {
	if a.Balance.IsPositive() {
		return apperror.Conflict("account %s still holds a balance of %s", a.ID, a.Balance.StringFixed(2))
	}
	if a.HasActiveLoan() {
		return apperror.Conflict("account %s has an active loan", a.ID)
	}
	return nil
}

// DeleteAccount soft-deletes by clearing isActive. Records are never removed.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	account, err := s.w.mutate(ctx, "delete_account", cmd.AccountID, func(a *models.Account) error {
		if err := checkDeletable(a); err != nil {
			return err
		}
		a.IsActive = false
		return nil
	})
	if err != nil {
		return err
	}
	s.w.activity(ctx, ActionDeleteAccount, account.ID, map[string]any{"accountNumber": account.AccountNumber})
	s.w.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
	})
	return nil
}
