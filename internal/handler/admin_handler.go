package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
	"github.com/gin-gonic/gin"
)

// AdminCommander defines the admin-only write operations.
type AdminCommander interface {
	EnsureAdmin(context.Context) (*models.AdminInfo, error)
	UpdateAdmin(context.Context, cqrs.UpdateAdminCommand) (*models.AdminInfo, error)
	CreateBackup(context.Context) (string, error)
	InitializeDefaultData(context.Context) (bool, error)
}

type StatisticsQuerier interface {
	ComputeStatistics(context.Context) (*models.Statistics, error)
}

type ActivityQuerier interface {
	ListActivity(context.Context, cqrs.ActivityQuery) ([]models.ActivityEntry, error)
}

type AdminHandler struct {
	commands AdminCommander
	stats    StatisticsQuerier
	activity ActivityQuerier
}

type UpdateAdminRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

type ActivityResponse struct {
	Date    string                 `json:"date"`
	Entries []models.ActivityEntry `json:"entries"`
}

type BackupResponse struct {
	Key string `json:"key"`
}

type InitResponse struct {
	Initialized bool `json:"initialized"`
}

func NewAdminHandler(commands AdminCommander, stats StatisticsQuerier, activity ActivityQuerier) *AdminHandler {
	return &AdminHandler{commands: commands, stats: stats, activity: activity}
}

func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.stats.ComputeStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Activity reads ?date=YYYY-MM-DD, defaulting to today (UTC).
func (h *AdminHandler) Activity(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	entries, err := h.activity.ListActivity(c.Request.Context(), cqrs.ActivityQuery{Day: day})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ActivityResponse{Date: day.Format(time.DateOnly), Entries: entries})
}

func (h *AdminHandler) Backup(c *gin.Context) {
	key, err := h.commands.CreateBackup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, BackupResponse{Key: key})
}

func (h *AdminHandler) Initialize(c *gin.Context) {
	seeded, err := h.commands.InitializeDefaultData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, InitResponse{Initialized: seeded})
}

func (h *AdminHandler) GetProfile(c *gin.Context) {
	admin, err := h.commands.EnsureAdmin(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	var req UpdateAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	admin, err := h.commands.UpdateAdmin(c.Request.Context(), cqrs.UpdateAdminCommand{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}
