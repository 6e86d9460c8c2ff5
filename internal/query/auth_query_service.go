package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/eaglebank/ledger-service/shared/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AdminIdentifier is the login name of the single admin role.
const AdminIdentifier = "admin"

const tokenIssuer = "eaglebank"

var errInvalidCredentials = apperror.New(apperror.CodeUnauthorized, "invalid credentials")

// AdminProvider returns the admin record, creating the default on first use.
type AdminProvider interface {
	EnsureAdmin(ctx context.Context) (*models.AdminInfo, error)
}

// AuthStore is what credential checks read and the lastLogin stamp writes.
type AuthStore interface {
	repository.AccountStore
	repository.AdminStore
}

// AuthQueryService verifies credentials and issues session tokens.
// Every failure looks the same to the caller; reasons are only logged.
type AuthQueryService struct {
	store    AuthStore
	admins   AdminProvider
	secret   []byte
	tokenTTL time.Duration
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewAuthQueryService(store AuthStore, admins AdminProvider, secret []byte, tokenTTL time.Duration, logger logrus.FieldLogger) *AuthQueryService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthQueryService{
		store:    store,
		admins:   admins,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnCompare runs a bcrypt comparison against a throwaway hash so a
// missing account costs about as much as a wrong password.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("not-a-real-password")
	})
	utils.CheckPassword(password, dummyHash)
}

// VerifyAdmin succeeds iff identifier is "admin" and password matches the
// stored admin hash.
func (s *AuthQueryService) VerifyAdmin(ctx context.Context, identifier, password string) (*models.AdminInfo, bool) {
	log := s.logger.WithField("operation", "verify_admin")
	if identifier != AdminIdentifier {
		burnCompare(password)
		log.Info("admin login rejected: unknown identifier")
		return nil, false
	}
	admin, err := s.admins.EnsureAdmin(ctx)
	if err != nil {
		log.WithError(err).Error("admin lookup failed")
		return nil, false
	}
	if admin.PasswordHash == "" || !utils.CheckPassword(password, admin.PasswordHash) {
		log.Info("admin login rejected: password mismatch")
		return nil, false
	}
	return admin, true
}

// VerifyUser looks the identifier up as an email, then as an account
// number. Only an active account with a matching hash passes.
func (s *AuthQueryService) VerifyUser(ctx context.Context, identifier, password string) (*models.Account, bool) {
	identifier = strings.TrimSpace(identifier)
	log := s.logger.WithField("operation", "verify_user")

	account, err := s.store.FindAccountByEmail(ctx, identifier)
	if errors.Is(err, apperror.ErrNotFound) && utils.ValidateAccountNumber(identifier) {
		account, err = s.store.FindAccountByNumber(ctx, identifier)
	}
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			log.WithError(err).Error("account lookup failed")
		} else {
			log.Info("user login rejected: no such account")
		}
		burnCompare(password)
		return nil, false
	}

	log = log.WithField("account_id", account.ID)
	if account.PasswordHash == "" {
		burnCompare(password)
		log.Info("user login rejected: account has no password")
		return nil, false
	}
	if !utils.CheckPassword(password, account.PasswordHash) {
		log.Info("user login rejected: password mismatch")
		return nil, false
	}
	if !account.IsActive {
		log.Info("user login rejected: account inactive")
		return nil, false
	}
	return account, true
}

// Login checks the admin credentials for the "admin" identifier and account
// credentials otherwise, then issues a token.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*models.Session, error) {
	if strings.TrimSpace(cmd.Identifier) == AdminIdentifier {
		admin, ok := s.VerifyAdmin(ctx, AdminIdentifier, cmd.Password)
		if !ok {
			return nil, errInvalidCredentials
		}
		at := s.now()
		admin.LastLogin = &at
		if err := s.store.SaveAdmin(ctx, admin); err != nil {
			s.logger.WithError(err).WithField("operation", "login").Warn("failed to stamp admin last login")
		}
		token, err := s.generateToken(AdminIdentifier, admin.Email, true)
		if err != nil {
			return nil, err
		}
		return &models.Session{Token: token, IsAdmin: true}, nil
	}

	account, ok := s.VerifyUser(ctx, cmd.Identifier, cmd.Password)
	if !ok {
		return nil, errInvalidCredentials
	}
	token, err := s.generateToken(account.ID, account.Email, false)
	if err != nil {
		return nil, err
	}
	return &models.Session{Token: token, Account: account}, nil
}

// RefreshToken reissues a valid token. Account tokens are only refreshed
// while the account is still active.
func (s *AuthQueryService) RefreshToken(ctx context.Context, cmd cqrs.RefreshTokenCommand) (string, error) {
	claims, err := middleware.ParseToken(cmd.Token, s.secret)
	if err != nil {
		return "", apperror.New(apperror.CodeUnauthorized, "invalid token")
	}
	if !claims.IsAdmin {
		account, err := s.store.GetAccount(ctx, claims.UserID)
		if err != nil || !account.IsActive {
			return "", apperror.New(apperror.CodeUnauthorized, "invalid token")
		}
	}
	return s.generateToken(claims.UserID, claims.Email, claims.IsAdmin)
}

func (s *AuthQueryService) generateToken(userID, email string, isAdmin bool) (string, error) {
	now := s.now()
	claims := middleware.Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperror.Storage("sign token", err)
	}
	return signed, nil
}
