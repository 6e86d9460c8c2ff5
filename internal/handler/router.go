package handler

import (
	"net/http"
	"time"

	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterConfig carries the handlers and the auth settings the router needs.
type RouterConfig struct {
	Accounts *AccountHandler
	Ledger   *LedgerHandler
	Auth     *AuthHandler
	Admin    *AdminHandler

	JWTSecret      []byte
	LoginRateLimit float64
	LoginBurst     int
	Logger         logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(cfg.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/v1/auth")
	{
		auth.POST("/login", middleware.RateLimitMiddleware(cfg.LoginRateLimit, cfg.LoginBurst, time.Hour), cfg.Auth.Login)
		auth.POST("/refresh", cfg.Auth.RefreshToken)
		auth.POST("/logout", cfg.Auth.Logout)
	}
	router.POST("/v1/signup", cfg.Accounts.Signup)

	v1 := router.Group("/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	admin := middleware.RequireAdmin()
	owner := middleware.RequireOwnerOrAdmin("id")

	accounts := v1.Group("/accounts")
	{
		accounts.GET("", admin, cfg.Accounts.ListAccounts)
		accounts.POST("", admin, cfg.Accounts.CreateAccount)
		accounts.GET("/:id", owner, cfg.Accounts.GetAccount)
		accounts.PATCH("/:id", admin, cfg.Accounts.UpdateAccount)
		accounts.DELETE("/:id", admin, cfg.Accounts.DeleteAccount)

		accounts.GET("/:id/movements", owner, cfg.Accounts.ListMovements)
		accounts.POST("/:id/movements", owner, cfg.Ledger.RecordMovement)

		accounts.POST("/:id/loans", admin, cfg.Ledger.CreateLoan)
		accounts.POST("/:id/loans/:loanId/approve", admin, cfg.Ledger.ApproveLoan)
		accounts.POST("/:id/loans/:loanId/close", admin, cfg.Ledger.CloseLoan)
		accounts.POST("/:id/loans/:loanId/payments", owner, cfg.Ledger.RecordLoanPayment)
		accounts.DELETE("/:id/loans/:loanId", admin, cfg.Ledger.DeleteLoan)

		accounts.POST("/:id/credits", admin, cfg.Ledger.OpenCredit)
		accounts.POST("/:id/credits/:creditId/approve", admin, cfg.Ledger.ApproveCredit)
		accounts.POST("/:id/credits/:creditId/close", admin, cfg.Ledger.CloseCredit)
		accounts.PATCH("/:id/credits/:creditId", admin, cfg.Ledger.AdjustCreditLimit)
		accounts.POST("/:id/credits/:creditId/draw", owner, cfg.Ledger.DrawCredit)
		accounts.POST("/:id/credits/:creditId/repay", owner, cfg.Ledger.RepayCredit)
		accounts.DELETE("/:id/credits/:creditId", admin, cfg.Ledger.DeleteCredit)
	}

	v1.GET("/statistics", admin, cfg.Admin.Statistics)

	adm := v1.Group("/admin", admin)
	{
		adm.GET("/activity", cfg.Admin.Activity)
		adm.POST("/backup", cfg.Admin.Backup)
		adm.POST("/init", cfg.Admin.Initialize)
		adm.GET("/profile", cfg.Admin.GetProfile)
		adm.PATCH("/profile", cfg.Admin.UpdateProfile)
	}

	return router
}
