package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/ledger-service/internal/command"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerCommander defines the balance-affecting operations used by LedgerHandler.
type LedgerCommander interface {
	RecordMovement(context.Context, cqrs.RecordMovementCommand) (*models.Movement, error)

	CreateLoan(context.Context, cqrs.CreateLoanCommand) (*models.Loan, error)
	ApproveLoan(context.Context, cqrs.LoanCommand) (*models.Loan, error)
	CloseLoan(context.Context, cqrs.LoanCommand) (*models.Loan, error)
	RecordLoanPayment(context.Context, cqrs.LoanCommand) (*command.LoanPayment, error)
	DeleteLoan(context.Context, cqrs.LoanCommand) error

	OpenCredit(context.Context, cqrs.OpenCreditCommand) (*models.Credit, error)
	ApproveCredit(context.Context, cqrs.CreditCommand) (*models.Credit, error)
	CloseCredit(context.Context, cqrs.CreditCommand) (*models.Credit, error)
	AdjustCreditLimit(context.Context, cqrs.AdjustCreditLimitCommand) (*models.Credit, error)
	DrawCredit(context.Context, cqrs.CreditAmountCommand) (*command.CreditMovement, error)
	RepayCredit(context.Context, cqrs.CreditAmountCommand) (*command.CreditMovement, error)
	DeleteCredit(context.Context, cqrs.CreditCommand) error
}

type LedgerHandler struct {
	commands LedgerCommander
}

type RecordMovementRequest struct {
	Type        string          `json:"type" validate:"required,oneof=deposit withdrawal transfer"`
	Amount      decimal.Decimal `json:"amount" validate:"money"`
	Description string          `json:"description" validate:"max=200"`
}

type CreateLoanRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"money"`
	InterestRate decimal.Decimal `json:"interestRate"`
	TermMonths   int             `json:"termMonths" validate:"required,gt=0,lte=480"`
	Purpose      string          `json:"purpose" validate:"max=200"`
	Status       string          `json:"status" validate:"omitempty,oneof=pending active"`
}

type OpenCreditRequest struct {
	Limit        decimal.Decimal `json:"limit" validate:"money"`
	InterestRate decimal.Decimal `json:"interestRate"`
	CreditScore  *int            `json:"creditScore" validate:"omitempty,gte=300,lte=850"`
	Status       string          `json:"status" validate:"omitempty,oneof=pending active"`
}

type AdjustCreditLimitRequest struct {
	Limit decimal.Decimal `json:"limit" validate:"money"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"money"`
}

func NewLedgerHandler(commands LedgerCommander) *LedgerHandler {
	return &LedgerHandler{commands: commands}
}

func (h *LedgerHandler) RecordMovement(c *gin.Context) {
	var req RecordMovementRequest
	if !bindJSON(c, &req) {
		return
	}

	movement, err := h.commands.RecordMovement(c.Request.Context(), cqrs.RecordMovementCommand{
		AccountID:   c.Param("id"),
		Kind:        models.MovementKind(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

func (h *LedgerHandler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if !bindJSON(c, &req) {
		return
	}

	loan, err := h.commands.CreateLoan(c.Request.Context(), cqrs.CreateLoanCommand{
		AccountID:    c.Param("id"),
		Principal:    req.Amount,
		InterestRate: req.InterestRate,
		TermMonths:   req.TermMonths,
		Purpose:      req.Purpose,
		Status:       models.LoanStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

func (h *LedgerHandler) loanRef(c *gin.Context) cqrs.LoanCommand {
	return cqrs.LoanCommand{AccountID: c.Param("id"), LoanID: c.Param("loanId")}
}

func (h *LedgerHandler) ApproveLoan(c *gin.Context) {
	loan, err := h.commands.ApproveLoan(c.Request.Context(), h.loanRef(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LedgerHandler) CloseLoan(c *gin.Context) {
	loan, err := h.commands.CloseLoan(c.Request.Context(), h.loanRef(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LedgerHandler) RecordLoanPayment(c *gin.Context) {
	payment, err := h.commands.RecordLoanPayment(c.Request.Context(), h.loanRef(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *LedgerHandler) DeleteLoan(c *gin.Context) {
	if err := h.commands.DeleteLoan(c.Request.Context(), h.loanRef(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LedgerHandler) OpenCredit(c *gin.Context) {
	var req OpenCreditRequest
	if !bindJSON(c, &req) {
		return
	}

	credit, err := h.commands.OpenCredit(c.Request.Context(), cqrs.OpenCreditCommand{
		AccountID:    c.Param("id"),
		Limit:        req.Limit,
		InterestRate: req.InterestRate,
		CreditScore:  req.CreditScore,
		Status:       models.CreditStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, credit)
}

func (h *LedgerHandler) creditRef(c *gin.Context) cqrs.CreditCommand {
	return cqrs.CreditCommand{AccountID: c.Param("id"), CreditID: c.Param("creditId")}
}

func (h *LedgerHandler) ApproveCredit(c *gin.Context) {
	credit, err := h.commands.ApproveCredit(c.Request.Context(), h.creditRef(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credit)
}

func (h *LedgerHandler) CloseCredit(c *gin.Context) {
	credit, err := h.commands.CloseCredit(c.Request.Context(), h.creditRef(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credit)
}

func (h *LedgerHandler) AdjustCreditLimit(c *gin.Context) {
	var req AdjustCreditLimitRequest
	if !bindJSON(c, &req) {
		return
	}

	credit, err := h.commands.AdjustCreditLimit(c.Request.Context(), cqrs.AdjustCreditLimitCommand{
		AccountID: c.Param("id"),
		CreditID:  c.Param("creditId"),
		Limit:     req.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credit)
}

func (h *LedgerHandler) DrawCredit(c *gin.Context) {
	h.creditMovement(c, h.commands.DrawCredit)
}

func (h *LedgerHandler) RepayCredit(c *gin.Context) {
	h.creditMovement(c, h.commands.RepayCredit)
}

func (h *LedgerHandler) creditMovement(c *gin.Context, fn func(context.Context, cqrs.CreditAmountCommand) (*command.CreditMovement, error)) {
	var req AmountRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := fn(c.Request.Context(), cqrs.CreditAmountCommand{
		AccountID: c.Param("id"),
		CreditID:  c.Param("creditId"),
		Amount:    req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *LedgerHandler) DeleteCredit(c *gin.Context) {
	if err := h.commands.DeleteCredit(c.Request.Context(), h.creditRef(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
