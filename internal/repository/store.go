package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/eaglebank/ledger-service/shared/models"
)

// AccountStore persists whole account documents. Every method returns
// *apperror.Error values; adapter errors never cross this boundary.
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// ListAccounts returns every account, active or not, in insertion order.
	ListAccounts(ctx context.Context) ([]models.Account, error)
	InsertAccount(ctx context.Context, account *models.Account) error
	SaveAccount(ctx context.Context, account *models.Account) error
}

// SequenceStore hands out monotonically increasing per-kind counters.
type SequenceStore interface {
	NextSequence(ctx context.Context, kind string) (int64, error)
}

type AdminStore interface {
	GetAdmin(ctx context.Context) (*models.AdminInfo, bool, error)
	SaveAdmin(ctx context.Context, admin *models.AdminInfo) error
}

// ActivityStore keeps the newest ActivityLogCap entries per UTC day,
// newest first.
type ActivityStore interface {
	AppendActivity(ctx context.Context, entry models.ActivityEntry) error
	ListActivity(ctx context.Context, day time.Time) ([]models.ActivityEntry, error)
}

type BackupStore interface {
	SaveBackup(ctx context.Context, backup *models.Backup) (string, error)
}

type Store interface {
	AccountStore
	SequenceStore
	AdminStore
	ActivityStore
	BackupStore
	Close() error
}

const ActivityLogCap = 100

const (
	accountsKey     = "bank:accounts"
	accountOrderKey = "bank:accounts:order"
	adminKey        = "bank:admin"
	countersKey     = "bank:counters"
	logKeyPrefix    = "bank:logs:"
	backupKeyPrefix = "bank:backup:"
)

func activityKey(day time.Time) string {
	return logKeyPrefix + day.UTC().Format(time.DateOnly)
}

func backupKey(at time.Time) string {
	return backupKeyPrefix + strconv.FormatInt(at.UnixMilli(), 10)
}

// accountRecord is the persisted form of an account. It carries the
// password hash that models.Account hides from JSON.
type accountRecord struct {
	models.Account
	PasswordHash string `json:"passwordHash,omitempty"`
}

func toRecord(a *models.Account) *accountRecord {
	return &accountRecord{Account: *a, PasswordHash: a.PasswordHash}
}

func (r *accountRecord) toModel() *models.Account {
	a := r.Account
	a.PasswordHash = r.PasswordHash
	if a.Movements == nil {
		a.Movements = []models.Movement{}
	}
	if a.Loans == nil {
		a.Loans = []models.Loan{}
	}
	if a.Credits == nil {
		a.Credits = []models.Credit{}
	}
	return &a
}

type adminRecord struct {
	models.AdminInfo
	PasswordHash string `json:"passwordHash,omitempty"`
}

func toAdminRecord(a *models.AdminInfo) *adminRecord {
	return &adminRecord{AdminInfo: *a, PasswordHash: a.PasswordHash}
}

func (r *adminRecord) toModel() *models.AdminInfo {
	a := r.AdminInfo
	a.PasswordHash = r.PasswordHash
	return &a
}
