package command

import (
	"context"
	"strconv"
	"time"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/eaglebank/ledger-service/shared/utils"
	"github.com/sirupsen/logrus"
)

// Activity actions written to the per-day log.
const (
	ActionCreateAccount = "CREATE_ACCOUNT"
	ActionUpdateAccount = "UPDATE_ACCOUNT"
	ActionDeleteAccount = "DELETE_ACCOUNT"
	ActionMovement      = "RECORD_MOVEMENT"
	ActionCreateLoan    = "CREATE_LOAN"
	ActionUpdateLoan    = "UPDATE_LOAN"
	ActionDeleteLoan    = "DELETE_LOAN"
	ActionCreateCredit  = "CREATE_CREDIT"
	ActionUpdateCredit  = "UPDATE_CREDIT"
	ActionDeleteCredit  = "DELETE_CREDIT"
	ActionUpdateAdmin   = "UPDATE_ADMIN"
	ActionBackup        = "CREATE_BACKUP"
)

// EventPublisher is satisfied by *events.Publisher and events.Nop.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// accountWriter is the read-modify-write path shared by the command
// services. It never retries; storage errors reach the caller as-is.
type accountWriter struct {
	store     repository.Store
	publisher EventPublisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

func newAccountWriter(store repository.Store, publisher EventPublisher, logger logrus.FieldLogger) *accountWriter {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &accountWriter{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// newID builds {kind}_{ms}_{counter}. A failed increment falls back to a
// random suffix rather than failing the write.
func (w *accountWriter) newID(ctx context.Context, kind string) string {
	at := w.now()
	n, err := w.store.NextSequence(ctx, kind)
	if err != nil {
		w.logger.WithError(err).WithField("kind", kind).Warn("counter increment failed, using random id suffix")
		return utils.FormatID(kind, at, utils.RandomSuffix(9))
	}
	return utils.FormatID(kind, at, strconv.FormatInt(n, 10))
}

// mutate loads an active account, applies fn and saves the whole document
// once. Nothing is written when fn fails.
func (w *accountWriter) mutate(ctx context.Context, op, accountID string, fn func(*models.Account) error) (*models.Account, error) {
	return w.modify(ctx, op, accountID, true, fn)
}

func (w *accountWriter) modify(ctx context.Context, op, accountID string, requireActive bool, fn func(*models.Account) error) (*models.Account, error) {
	log := w.logger.WithFields(logrus.Fields{"operation": op, "account_id": accountID})

	account, err := w.store.GetAccount(ctx, accountID)
	if err != nil {
		log.WithError(err).Warn("account lookup failed")
		return nil, err
	}
	if requireActive && !account.IsActive {
		return nil, apperror.Conflict("account %s is inactive", accountID)
	}
	if err := fn(account); err != nil {
		log.WithError(err).Warn("operation rejected")
		return nil, err
	}
	account.UpdatedAt = w.now()
	if err := w.store.SaveAccount(ctx, account); err != nil {
		log.WithError(err).Error("failed to save account")
		return nil, err
	}
	return account, nil
}

// activity appends to the day log. Failures are logged only.
func (w *accountWriter) activity(ctx context.Context, action, accountID string, details map[string]any) {
	entry := models.ActivityEntry{
		Action:    action,
		AccountID: accountID,
		Timestamp: w.now(),
		Details:   details,
	}
	if err := w.store.AppendActivity(ctx, entry); err != nil {
		w.logger.WithError(err).WithFields(logrus.Fields{"action": action, "account_id": accountID}).Warn("failed to append activity")
	}
}

// publish emits a domain event. Failures are logged only.
func (w *accountWriter) publish(ctx context.Context, eventType string, data any) {
	if err := w.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		w.logger.WithError(err).WithField("event", eventType).Warn("failed to publish event")
	}
}
