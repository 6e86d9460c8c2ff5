package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bank_accounts (
		seq            BIGSERIAL PRIMARY KEY,
		id             TEXT NOT NULL UNIQUE,
		account_number TEXT NOT NULL UNIQUE,
		email          TEXT NOT NULL,
		document       JSONB NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS bank_accounts_email_idx ON bank_accounts (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS bank_counters (
		kind  TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bank_documents (
		key        TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bank_activity_logs (
		id    BIGSERIAL PRIMARY KEY,
		day   DATE NOT NULL,
		entry JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS bank_activity_logs_day_idx ON bank_activity_logs (day, id DESC)`,
}

// Migrate creates the tables used by PostgresStore. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// PostgresStore is the relational backend. Accounts are still whole JSONB
// documents; the id, number and email columns exist for lookups.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.queryAccount(ctx, `SELECT document FROM bank_accounts WHERE id = $1`, id, "account "+id)
}

func (s *PostgresStore) FindAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	return s.queryAccount(ctx, `SELECT document FROM bank_accounts WHERE account_number = $1`, accountNumber, "account "+accountNumber)
}

func (s *PostgresStore) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.queryAccount(ctx, `SELECT document FROM bank_accounts WHERE LOWER(email) = LOWER($1) ORDER BY (document->>'isActive')::boolean DESC, seq LIMIT 1`, email, "account for "+email)
}

func (s *PostgresStore) queryAccount(ctx context.Context, query, arg, what string) (*models.Account, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("%s not found", what)
	}
	if err != nil {
		return nil, apperror.Storage("get account", err)
	}
	return decodeAccount(data)
}

func (s *PostgresStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM bank_accounts ORDER BY seq`)
	if err != nil {
		return nil, apperror.Storage("list accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, apperror.Storage("scan account", err)
		}
		account, err := decodeAccount(data)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("list accounts", err)
	}
	return accounts, nil
}

func (s *PostgresStore) InsertAccount(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(toRecord(account))
	if err != nil {
		return apperror.Storage("encode account", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bank_accounts (id, account_number, email, document, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.ID, account.AccountNumber, account.Email, data, account.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperror.Conflict("account %s or number %s already exists", account.ID, account.AccountNumber)
	}
	if err != nil {
		return apperror.Storage("insert account", err)
	}
	return nil
}

func (s *PostgresStore) SaveAccount(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(toRecord(account))
	if err != nil {
		return apperror.Storage("encode account", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE bank_accounts SET email = $2, document = $3, updated_at = $4
		WHERE id = $1
	`, account.ID, account.Email, data, account.UpdatedAt)
	if err != nil {
		return apperror.Storage("save account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Storage("save account", err)
	}
	if n == 0 {
		return apperror.NotFound("account %s not found", account.ID)
	}
	return nil
}

func (s *PostgresStore) NextSequence(ctx context.Context, kind string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bank_counters (kind, value) VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET value = bank_counters.value + 1
		RETURNING value
	`, kind).Scan(&n)
	if err != nil {
		return 0, apperror.Storage("increment counter", err)
	}
	return n, nil
}

func (s *PostgresStore) GetAdmin(ctx context.Context) (*models.AdminInfo, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM bank_documents WHERE key = $1`, adminKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperror.Storage("get admin", err)
	}
	var rec adminRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, apperror.Storage("decode admin", err)
	}
	return rec.toModel(), true, nil
}

func (s *PostgresStore) SaveAdmin(ctx context.Context, admin *models.AdminInfo) error {
	return s.putDocument(ctx, adminKey, toAdminRecord(admin), "save admin")
}

func (s *PostgresStore) SaveBackup(ctx context.Context, backup *models.Backup) (string, error) {
	key := backupKey(backup.Timestamp)
	if err := s.putDocument(ctx, key, backup, "save backup"); err != nil {
		return "", err
	}
	return key, nil
}

func (s *PostgresStore) putDocument(ctx context.Context, key string, v any, op string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperror.Storage(op, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bank_documents (key, document, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`, key, data)
	if err != nil {
		return apperror.Storage(op, err)
	}
	return nil
}

// AppendActivity inserts the entry and trims the day back to ActivityLogCap
// rows in one transaction.
func (s *PostgresStore) AppendActivity(ctx context.Context, entry models.ActivityEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return apperror.Storage("encode activity", err)
	}
	day := entry.Timestamp.UTC().Format(time.DateOnly)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Storage("append activity", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO bank_activity_logs (day, entry) VALUES ($1, $2)`, day, data); err != nil {
		return apperror.Storage("append activity", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM bank_activity_logs
		WHERE day = $1 AND id NOT IN (
			SELECT id FROM bank_activity_logs WHERE day = $1 ORDER BY id DESC LIMIT $2
		)
	`, day, ActivityLogCap); err != nil {
		return apperror.Storage("trim activity", err)
	}
	if err := tx.Commit(); err != nil {
		return apperror.Storage("append activity", err)
	}
	return nil
}

func (s *PostgresStore) ListActivity(ctx context.Context, day time.Time) ([]models.ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry FROM bank_activity_logs WHERE day = $1 ORDER BY id DESC LIMIT $2
	`, day.UTC().Format(time.DateOnly), ActivityLogCap)
	if err != nil {
		return nil, apperror.Storage("list activity", err)
	}
	defer rows.Close()

	entries := []models.ActivityEntry{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, apperror.Storage("scan activity", err)
		}
		var e models.ActivityEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, apperror.Storage("decode activity", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("list activity", err)
	}
	return entries, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
