package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (*models.Account, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) error
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.Account, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.Account, error)
	ListMovements(context.Context, cqrs.ListMovementsQuery) ([]models.Movement, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type CreateAccountRequest struct {
	FullName       string          `json:"fullName" validate:"required,max=120"`
	Email          string          `json:"email" validate:"required,email"`
	Password       string          `json:"password" validate:"omitempty,min=6,max=72"`
	Phone          string          `json:"phone" validate:"omitempty,max=30"`
	Address        string          `json:"address" validate:"omitempty,max=200"`
	AccountType    string          `json:"accountType" validate:"required,oneof=checking savings investment business"`
	InitialBalance decimal.Decimal `json:"initialBalance" validate:"nonnegmoney"`
}

type SignupRequest struct {
	FullName    string `json:"fullName" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	Phone       string `json:"phone" validate:"omitempty,max=30"`
	Address     string `json:"address" validate:"omitempty,max=200"`
	AccountType string `json:"accountType" validate:"required,oneof=checking savings investment business"`
}

type UpdateAccountRequest struct {
	FullName    *string          `json:"fullName" validate:"omitempty,min=1,max=120"`
	Email       *string          `json:"email" validate:"omitempty,email"`
	Password    *string          `json:"password" validate:"omitempty,min=6,max=72"`
	Phone       *string          `json:"phone" validate:"omitempty,max=30"`
	Address     *string          `json:"address" validate:"omitempty,max=200"`
	AccountType *string          `json:"accountType" validate:"omitempty,oneof=checking savings investment business"`
	Balance     *decimal.Decimal `json:"balance" validate:"omitempty,nonnegmoney"`
	IsActive    *bool            `json:"isActive"`
}

type ListAccountsResponse struct {
	Accounts []models.Account `json:"accounts"`
}

type ListMovementsResponse struct {
	Movements []models.Movement `json:"movements"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       req.Password,
		Phone:          req.Phone,
		Address:        req.Address,
		AccountType:    models.AccountType(req.AccountType),
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// Signup is the public self-service path. New accounts start empty.
func (h *AccountHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.Phone,
		Address:     req.Address,
		AccountType: models.AccountType(req.AccountType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	accounts, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{ActiveOnly: activeOnly})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) ListMovements(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.RespondWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	movements, err := h.queries.ListMovements(c.Request.Context(), cqrs.ListMovementsQuery{AccountID: c.Param("id"), Limit: limit})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListMovementsResponse{Movements: movements})
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := cqrs.UpdateAccountCommand{
		AccountID: c.Param("id"),
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Address:   req.Address,
		Balance:   req.Balance,
		IsActive:  req.IsActive,
	}
	if req.AccountType != nil {
		t := models.AccountType(*req.AccountType)
		cmd.AccountType = &t
	}

	account, err := h.commands.UpdateAccount(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{AccountID: c.Param("id")}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
