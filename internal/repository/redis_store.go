package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/models"
	sharedredis "github.com/eaglebank/ledger-service/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

// RedisStore keeps accounts as JSON values of the bank:accounts hash, with
// a side list recording insertion order.
type RedisStore struct {
	client  *goredis.Client
	admin   *sharedredis.Document[adminRecord]
	backups *sharedredis.Document[models.Backup]
}

func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		admin:   sharedredis.NewDocument[adminRecord](client, 0),
		backups: sharedredis.NewDocument[models.Backup](client, 0),
	}
}

func (s *RedisStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	data, err := s.client.HGet(ctx, accountsKey, id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, apperror.NotFound("account %s not found", id)
	}
	if err != nil {
		return nil, apperror.Storage("get account", err)
	}
	return decodeAccount(data)
}

func (s *RedisStore) FindAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	return s.findAccount(ctx, func(a *models.Account) bool { return a.AccountNumber == accountNumber }, "account "+accountNumber)
}

func (s *RedisStore) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findAccount(ctx, func(a *models.Account) bool { return strings.EqualFold(a.Email, email) }, "account for "+email)
}

// findAccount scans the whole set. An active match wins over an earlier
// inactive one.
func (s *RedisStore) findAccount(ctx context.Context, match func(*models.Account) bool, what string) (*models.Account, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	var found *models.Account
	for i := range accounts {
		if !match(&accounts[i]) {
			continue
		}
		if accounts[i].IsActive {
			return &accounts[i], nil
		}
		if found == nil {
			found = &accounts[i]
		}
	}
	if found == nil {
		return nil, apperror.NotFound("%s not found", what)
	}
	return found, nil
}

func (s *RedisStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	ids, err := s.client.LRange(ctx, accountOrderKey, 0, -1).Result()
	if err != nil {
		return nil, apperror.Storage("list account order", err)
	}
	accounts := make([]models.Account, 0, len(ids))
	if len(ids) == 0 {
		return accounts, nil
	}

	values, err := s.client.HMGet(ctx, accountsKey, ids...).Result()
	if err != nil {
		return nil, apperror.Storage("list accounts", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// order entry without a document
			continue
		}
		account, err := decodeAccount([]byte(raw))
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, nil
}

// InsertAccount writes the document and its order entry in one MULTI block.
// An existing id is a conflict.
func (s *RedisStore) InsertAccount(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(toRecord(account))
	if err != nil {
		return apperror.Storage("encode account", err)
	}
	exists, err := s.client.HExists(ctx, accountsKey, account.ID).Result()
	if err != nil {
		return apperror.Storage("check account", err)
	}
	if exists {
		return apperror.Conflict("account %s already exists", account.ID)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, accountsKey, account.ID, data)
		pipe.RPush(ctx, accountOrderKey, account.ID)
		return nil
	})
	if err != nil {
		return apperror.Storage("insert account", err)
	}
	return nil
}

// SaveAccount replaces the whole document. Concurrent saves of the same
// account are last-write-wins.
func (s *RedisStore) SaveAccount(ctx context.Context, account *models.Account) error {
	exists, err := s.client.HExists(ctx, accountsKey, account.ID).Result()
	if err != nil {
		return apperror.Storage("check account", err)
	}
	if !exists {
		return apperror.NotFound("account %s not found", account.ID)
	}
	data, err := json.Marshal(toRecord(account))
	if err != nil {
		return apperror.Storage("encode account", err)
	}
	if err := s.client.HSet(ctx, accountsKey, account.ID, data).Err(); err != nil {
		return apperror.Storage("save account", err)
	}
	return nil
}

func (s *RedisStore) NextSequence(ctx context.Context, kind string) (int64, error) {
	n, err := s.client.HIncrBy(ctx, countersKey, kind, 1).Result()
	if err != nil {
		return 0, apperror.Storage("increment counter", err)
	}
	return n, nil
}

func (s *RedisStore) GetAdmin(ctx context.Context) (*models.AdminInfo, bool, error) {
	rec, ok, err := s.admin.Get(ctx, adminKey)
	if err != nil {
		return nil, false, apperror.Storage("get admin", err)
	}
	if !ok {
		return nil, false, nil
	}
	return rec.toModel(), true, nil
}

func (s *RedisStore) SaveAdmin(ctx context.Context, admin *models.AdminInfo) error {
	if err := s.admin.Set(ctx, adminKey, toAdminRecord(admin)); err != nil {
		return apperror.Storage("save admin", err)
	}
	return nil
}

func (s *RedisStore) AppendActivity(ctx context.Context, entry models.ActivityEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return apperror.Storage("encode activity", err)
	}
	key := activityKey(entry.Timestamp)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, ActivityLogCap-1)
		return nil
	})
	if err != nil {
		return apperror.Storage("append activity", err)
	}
	return nil
}

func (s *RedisStore) ListActivity(ctx context.Context, day time.Time) ([]models.ActivityEntry, error) {
	raw, err := s.client.LRange(ctx, activityKey(day), 0, -1).Result()
	if err != nil {
		return nil, apperror.Storage("list activity", err)
	}
	entries := make([]models.ActivityEntry, 0, len(raw))
	for _, r := range raw {
		var e models.ActivityEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, apperror.Storage("decode activity", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *RedisStore) SaveBackup(ctx context.Context, backup *models.Backup) (string, error) {
	key := backupKey(backup.Timestamp)
	if err := s.backups.Set(ctx, key, backup); err != nil {
		return "", apperror.Storage("save backup", err)
	}
	return key, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeAccount(data []byte) (*models.Account, error) {
	var rec accountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperror.Storage("decode account", err)
	}
	return rec.toModel(), nil
}
