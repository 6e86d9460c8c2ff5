package query

import (
	"context"
	"strings"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/eaglebank/ledger-service/shared/utils"
)

// AccountQueryService reads accounts. Lookups return inactive accounts
// too; callers decide what isActive means for them.
type AccountQueryService struct {
	store repository.AccountStore
}

func NewAccountQueryService(store repository.AccountStore) *AccountQueryService {
	return &AccountQueryService{store: store}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	switch {
	case q.AccountID != "":
		return s.store.GetAccount(ctx, q.AccountID)
	case q.AccountNumber != "":
		if !utils.ValidateAccountNumber(q.AccountNumber) {
			return nil, apperror.Validation("account number must look like 4001-XXXX-XXXX")
		}
		return s.store.FindAccountByNumber(ctx, q.AccountNumber)
	case q.Email != "":
		return s.store.FindAccountByEmail(ctx, strings.TrimSpace(q.Email))
	}
	return nil, apperror.Validation("an account id, number or email is required")
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.Account, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if !q.ActiveOnly {
		return accounts, nil
	}
	active := accounts[:0]
	for _, a := range accounts {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (s *AccountQueryService) ListMovements(ctx context.Context, q cqrs.ListMovementsQuery) ([]models.Movement, error) {
	account, err := s.store.GetAccount(ctx, q.AccountID)
	if err != nil {
		return nil, err
	}
	movements := account.Movements
	if q.Limit > 0 && len(movements) > q.Limit {
		movements = movements[len(movements)-q.Limit:]
	}
	return movements, nil
}
