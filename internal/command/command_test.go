package command

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	mr       *miniredis.Miniredis
	client   *goredis.Client
	store    repository.Store
	accounts *AccountCommandService
	ledger   *LedgerCommandService
	admin    *AdminCommandService
	logs     *logtest.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return newTestEnvWithStore(t, mr, client, repository.NewRedisStore(client))
}

func newTestEnvWithStore(t *testing.T, mr *miniredis.Miniredis, client *goredis.Client, store repository.Store) *testEnv {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	publisher := events.NewPublisher(client, 0)

	accounts := NewAccountCommandService(store, publisher, logger)
	ledger := NewLedgerCommandService(store, publisher, logger)
	return &testEnv{
		mr:       mr,
		client:   client,
		store:    store,
		accounts: accounts,
		ledger:   ledger,
		admin:    NewAdminCommandService(store, accounts, ledger, "admin123", logger),
		logs:     hook,
	}
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (e *testEnv) createAccount(t *testing.T, initial string) *models.Account {
	t.Helper()
	account, err := e.accounts.CreateAccount(context.Background(), cqrs.CreateAccountCommand{
		FullName:       gofakeit.Name(),
		Email:          gofakeit.Email(),
		Phone:          gofakeit.Phone(),
		Address:        gofakeit.Street(),
		AccountType:    models.AccountTypeChecking,
		InitialBalance: money(initial),
	})
	require.NoError(t, err)
	return account
}

func (e *testEnv) reload(t *testing.T, id string) *models.Account {
	t.Helper()
	account, err := e.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return account
}

func (e *testEnv) move(kind models.MovementKind, accountID, amount string) (*models.Movement, error) {
	return e.ledger.RecordMovement(context.Background(), cqrs.RecordMovementCommand{
		AccountID: accountID,
		Kind:      kind,
		Amount:    money(amount),
	})
}

func assertLedgerInvariant(t *testing.T, a *models.Account) {
	t.Helper()
	assert.True(t, a.Balance.Equal(a.LedgerBalance()), "balance %s, ledger %s", a.Balance, a.LedgerBalance())
	if n := len(a.Movements); n > 0 {
		assert.True(t, a.Balance.Equal(a.Movements[n-1].BalanceAfter))
	}
}

type failingSequenceStore struct {
	*repository.RedisStore
}

func (failingSequenceStore) NextSequence(context.Context, string) (int64, error) {
	return 0, apperror.Storage("increment counter", errors.New("connection refused"))
}

type failingActivityStore struct {
	*repository.RedisStore
}

func (failingActivityStore) AppendActivity(context.Context, models.ActivityEntry) error {
	return apperror.Storage("append activity", errors.New("connection refused"))
}

type nopPublisher struct{ err error }

func (p nopPublisher) Publish(context.Context, string, string, any) error { return p.err }
