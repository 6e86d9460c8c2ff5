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

// AuthQuerier defines the operations used by AuthHandler.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (*models.Session, error)
	RefreshToken(context.Context, cqrs.RefreshTokenCommand) (string, error)
}

type AuthHandler struct {
	queries      AuthQuerier
	tokenTTL     time.Duration
	secureCookie bool
}

// LoginRequest takes "admin", an email or an account number as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(queries AuthQuerier, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{queries: queries, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, session.Token)
	c.JSON(http.StatusOK, session)
}

// RefreshToken accepts the token in the body or, failing that, the cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Token == "" {
		req.Token, _ = c.Cookie(middleware.AuthCookie)
	}
	if req.Token == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "token is required")
		return
	}

	token, err := h.queries.RefreshToken(c.Request.Context(), cqrs.RefreshTokenCommand{Token: req.Token})
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, token)
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, token, int(h.tokenTTL.Seconds()), "/", "", h.secureCookie, true)
}
