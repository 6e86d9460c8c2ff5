package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func accountDocument(t *testing.T, a *models.Account) []byte {
	t.Helper()
	data, err := json.Marshal(toRecord(a))
	require.NoError(t, err)
	return data
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAccount(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	account := sampleAccount("account_1_1", "4001-0001-0001", "a@example.com")

	mock.ExpectQuery("SELECT document FROM bank_accounts WHERE id").
		WithArgs("account_1_1").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(accountDocument(t, account)))

	got, err := store.GetAccount(context.Background(), "account_1_1")
	require.NoError(t, err)
	assert.Equal(t, "4001-0001-0001", got.AccountNumber)
	assert.Equal(t, account.PasswordHash, got.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAccountNotFound(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectQuery("SELECT document FROM bank_accounts WHERE account_number").
		WithArgs("4001-9999-9999").
		WillReturnError(sql.ErrNoRows)

	_, err := store.FindAccountByNumber(context.Background(), "4001-9999-9999")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPostgresListAccounts(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	a := sampleAccount("account_1_1", "4001-0001-0001", "a@example.com")
	b := sampleAccount("account_1_2", "4001-0001-0002", "b@example.com")

	mock.ExpectQuery("SELECT document FROM bank_accounts ORDER BY seq").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).
			AddRow(accountDocument(t, a)).
			AddRow(accountDocument(t, b)))

	accounts, err := store.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "account_1_1", accounts[0].ID)
	assert.Equal(t, "account_1_2", accounts[1].ID)
}

func TestPostgresInsertAccount(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	account := sampleAccount("account_1_1", "4001-0001-0001", "a@example.com")

	mock.ExpectExec("INSERT INTO bank_accounts").
		WithArgs(account.ID, account.AccountNumber, account.Email, sqlmock.AnyArg(), account.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, store.InsertAccount(context.Background(), account))

	mock.ExpectExec("INSERT INTO bank_accounts").
		WillReturnError(&pq.Error{Code: uniqueViolation})
	err := store.InsertAccount(context.Background(), account)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveAccountMissing(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectExec("UPDATE bank_accounts").WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SaveAccount(context.Background(), sampleAccount("account_1_1", "4001-0001-0001", "a@example.com"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPostgresNextSequence(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectQuery("INSERT INTO bank_counters").
		WithArgs("movement").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(7)))

	n, err := store.NextSequence(context.Background(), "movement")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestPostgresNextSequenceFailure(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectQuery("INSERT INTO bank_counters").WillReturnError(errors.New("connection reset"))

	_, err := store.NextSequence(context.Background(), "movement")
	assert.ErrorIs(t, err, apperror.ErrStorage)
	var pqErr *pq.Error
	assert.False(t, errors.As(err, &pqErr))
}

func TestPostgresAppendActivityTrims(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bank_activity_logs").
		WithArgs("2024-06-01", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM bank_activity_logs").
		WithArgs("2024-06-01", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.AppendActivity(context.Background(), models.ActivityEntry{Action: "create", AccountID: "account_1_1", Timestamp: at})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppendActivityRollsBack(t *testing.T) {
	store, mock := newTestPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bank_activity_logs").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.AppendActivity(context.Background(), models.ActivityEntry{Action: "create", Timestamp: time.Now()})
	assert.ErrorIs(t, err, apperror.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAdminMissing(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectQuery("SELECT document FROM bank_documents").
		WithArgs(adminKey).
		WillReturnError(sql.ErrNoRows)

	admin, ok, err := store.GetAdmin(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, admin)
}

func TestPostgresSaveBackup(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	at := time.UnixMilli(1718000000000)

	mock.ExpectExec("INSERT INTO bank_documents").
		WithArgs("bank:backup:1718000000000", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	key, err := store.SaveBackup(context.Background(), &models.Backup{Timestamp: at, Version: "1.0"})
	require.NoError(t, err)
	assert.Equal(t, "bank:backup:1718000000000", key)
}
