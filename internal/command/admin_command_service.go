package command

import (
	"context"
	"strings"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/eaglebank/ledger-service/shared/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const BackupVersion = "1.0"

// Default admin profile written on first use.
const (
	DefaultAdminName  = "Administrador Principal"
	DefaultAdminEmail = "admin@bankofamerica.com"
	DefaultAdminPhone = "3001234567"
)

// AdminCommandService manages the single admin record, backups and the
// demo data set.
type AdminCommandService struct {
	w                    *accountWriter
	accounts             *AccountCommandService
	ledger               *LedgerCommandService
	defaultAdminPassword string
}

func NewAdminCommandService(
	store repository.Store,
	accounts *AccountCommandService,
	ledger *LedgerCommandService,
	defaultAdminPassword string,
	logger logrus.FieldLogger,
) *AdminCommandService {
	return &AdminCommandService{
		w:                    newAccountWriter(store, nil, logger),
		accounts:             accounts,
		ledger:               ledger,
		defaultAdminPassword: defaultAdminPassword,
	}
}

// EnsureAdmin returns the admin record, creating the default one when none
// is stored.
func (s *AdminCommandService) EnsureAdmin(ctx context.Context) (*models.AdminInfo, error) {
	admin, ok, err := s.w.store.GetAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return admin, nil
	}

	hash, err := utils.HashPassword(s.defaultAdminPassword)
	if err != nil {
		return nil, apperror.Storage("hash password", err)
	}
	admin = &models.AdminInfo{
		Name:         DefaultAdminName,
		Email:        DefaultAdminEmail,
		Phone:        DefaultAdminPhone,
		PasswordHash: hash,
	}
	if err := s.w.store.SaveAdmin(ctx, admin); err != nil {
		return nil, err
	}
	s.w.logger.WithField("operation", "ensure_admin").Info("default admin created")
	return admin, nil
}

func (s *AdminCommandService) UpdateAdmin(ctx context.Context, cmd cqrs.UpdateAdminCommand) (*models.AdminInfo, error) {
	switch {
	case cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "":
		return nil, apperror.Validation("name must not be empty")
	case cmd.Email != nil && strings.TrimSpace(*cmd.Email) == "":
		return nil, apperror.Validation("email must not be empty")
	case cmd.Password != nil && *cmd.Password == "":
		return nil, apperror.Validation("password must not be empty")
	case cmd.Password != nil && len(*cmd.Password) > utils.MaxPasswordBytes:
		return nil, errPasswordTooLong
	}

	admin, err := s.EnsureAdmin(ctx)
	if err != nil {
		return nil, err
	}
	var fields []string
	if cmd.Name != nil {
		admin.Name = strings.TrimSpace(*cmd.Name)
		fields = append(fields, "name")
	}
	if cmd.Email != nil {
		admin.Email = strings.TrimSpace(*cmd.Email)
		fields = append(fields, "email")
	}
	if cmd.Phone != nil {
		admin.Phone = strings.TrimSpace(*cmd.Phone)
		fields = append(fields, "phone")
	}
	if cmd.Password != nil {
		hash, err := utils.HashPassword(*cmd.Password)
		if err != nil {
			return nil, apperror.Storage("hash password", err)
		}
		admin.PasswordHash = hash
		fields = append(fields, "password")
	}
	if err := s.w.store.SaveAdmin(ctx, admin); err != nil {
		return nil, err
	}
	s.w.activity(ctx, ActionUpdateAdmin, "", map[string]any{"changes": fields})
	return admin, nil
}

// CreateBackup snapshots accounts, admin and statistics under
// bank:backup:<ms> and returns the key.
func (s *AdminCommandService) CreateBackup(ctx context.Context) (string, error) {
	accounts, err := s.w.store.ListAccounts(ctx)
	if err != nil {
		return "", err
	}
	admin, err := s.EnsureAdmin(ctx)
	if err != nil {
		return "", err
	}
	backup := &models.Backup{
		Timestamp: s.w.now(),
		Accounts:  accounts,
		Admin:     *admin,
		Stats:     models.Summarize(accounts),
		Version:   BackupVersion,
	}
	key, err := s.w.store.SaveBackup(ctx, backup)
	if err != nil {
		s.w.logger.WithError(err).WithField("operation", "create_backup").Error("backup failed")
		return "", err
	}
	s.w.activity(ctx, ActionBackup, "", map[string]any{"key": key, "accounts": len(accounts)})
	return key, nil
}

// InitializeDefaultData seeds two demo accounts when storage holds none.
// It reports whether anything was written.
func (s *AdminCommandService) InitializeDefaultData(ctx context.Context) (bool, error) {
	existing, err := s.w.store.ListAccounts(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := s.EnsureAdmin(ctx); err != nil {
		return false, err
	}

	valentina, err := s.accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{
		FullName:       "Valentina García",
		Email:          "valentina@email.com",
		Password:       "123456",
		Phone:          "3101234567",
		Address:        "Calle 123 # 45-67",
		AccountType:    models.AccountTypeSavings,
		InitialBalance: decimal.RequireFromString("25000.75"),
	})
	if err != nil {
		return false, err
	}
	if _, err := s.ledger.DisburseLoan(ctx, valentina.ID, decimal.NewFromInt(12500), decimal.RequireFromString("1.8"), 20, "Vivienda"); err != nil {
		return false, err
	}
	score := 750
	if _, err := s.ledger.OpenCredit(ctx, cqrs.OpenCreditCommand{
		AccountID:    valentina.ID,
		Limit:        decimal.NewFromInt(2500),
		InterestRate: decimal.RequireFromString("2.5"),
		CreditScore:  &score,
		Status:       models.CreditActive,
	}); err != nil {
		return false, err
	}

	if _, err := s.accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{
		FullName:       "Carlos Pérez",
		Email:          "carlos@email.com",
		Password:       "abcdef",
		Phone:          "3209876543",
		Address:        "Carrera 789 # 10-11",
		AccountType:    models.AccountTypeChecking,
		InitialBalance: decimal.NewFromInt(12500),
	}); err != nil {
		return false, err
	}

	s.w.logger.WithField("operation", "initialize_default_data").Info("demo data initialized")
	return true, nil
}
