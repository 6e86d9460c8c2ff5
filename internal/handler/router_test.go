package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routerSecret = []byte("router-test-secret")

func signedToken(t *testing.T, userID string, isAdmin bool) string {
	t.Helper()
	claims := middleware.Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(routerSecret)
	require.NoError(t, err)
	return token
}

func newFullTestRouter(logger logrus.FieldLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	accounts := &mockAccountQuerier{
		getFn:  func(cqrs.GetAccountQuery) (*models.Account, error) { return aTestAccount, nil },
		listFn: func(cqrs.ListAccountsQuery) ([]models.Account, error) { return []models.Account{*aTestAccount}, nil },
	}
	ledger := &mockLedgerCommander{
		recordFn: func(cqrs.RecordMovementCommand) (*models.Movement, error) { return aTestMovement, nil },
	}
	return NewRouter(RouterConfig{
		Accounts:       NewAccountHandler(&mockAccountCommander{}, accounts),
		Ledger:         NewLedgerHandler(ledger),
		Auth:           NewAuthHandler(&mockAuthQuerier{}, time.Hour, false),
		Admin:          NewAdminHandler(&mockAdminCommander{}, nil, nil),
		JWTSecret:      routerSecret,
		LoginRateLimit: 0,
		Logger:         logger,
	})
}

func TestRouterAuthorization(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	r := newFullTestRouter(logger)

	tests := []struct {
		name           string
		method         string
		url            string
		token          string
		body           interface{}
		expectedStatus int
	}{
		{name: "health is public", method: http.MethodGet, url: "/health", expectedStatus: http.StatusOK},
		{name: "no token", method: http.MethodGet, url: "/v1/accounts/account_1_1", expectedStatus: http.StatusUnauthorized},
		{name: "owner reads own account", method: http.MethodGet, url: "/v1/accounts/account_1_1", token: signedToken(t, "account_1_1", false), expectedStatus: http.StatusOK},
		{name: "owner reads other account", method: http.MethodGet, url: "/v1/accounts/account_2_2", token: signedToken(t, "account_1_1", false), expectedStatus: http.StatusForbidden},
		{name: "admin reads any account", method: http.MethodGet, url: "/v1/accounts/account_2_2", token: signedToken(t, "admin", true), expectedStatus: http.StatusOK},
		{name: "user lists accounts", method: http.MethodGet, url: "/v1/accounts", token: signedToken(t, "account_1_1", false), expectedStatus: http.StatusForbidden},
		{name: "admin lists accounts", method: http.MethodGet, url: "/v1/accounts", token: signedToken(t, "admin", true), expectedStatus: http.StatusOK},
		{
			name: "owner deposits", method: http.MethodPost, url: "/v1/accounts/account_1_1/movements",
			token: signedToken(t, "account_1_1", false), body: map[string]interface{}{"type": "deposit", "amount": 10},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "user cannot open loans", method: http.MethodPost, url: "/v1/accounts/account_1_1/loans",
			token: signedToken(t, "account_1_1", false), body: map[string]interface{}{"amount": 10, "termMonths": 1},
			expectedStatus: http.StatusForbidden,
		},
		{name: "user cannot read statistics", method: http.MethodGet, url: "/v1/statistics", token: signedToken(t, "account_1_1", false), expectedStatus: http.StatusForbidden},
		{name: "user cannot back up", method: http.MethodPost, url: "/v1/admin/backup", token: signedToken(t, "account_1_1", false), expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		w := doRequestWithToken(r, tt.method, tt.url, tt.token, tt.body)
		if w.Code != tt.expectedStatus {
			t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
		}
	}
}

func TestRouterLogsRequests(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := newFullTestRouter(logger)

	w := doRequestWithToken(r, http.MethodGet, "/v1/accounts/account_1_1", signedToken(t, "account_1_1", false), nil)
	require.Equal(t, http.StatusOK, w.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "/v1/accounts/:id", entry.Data["path"])
	assert.Equal(t, "account_1_1", entry.Data["user_id"])
}
