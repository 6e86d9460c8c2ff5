package handler

import (
	"errors"
	"net/http"

	"github.com/eaglebank/ledger-service/shared/apperror"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Code    apperror.Code `json:"code"`
	Message string        `json:"message"`
}

// respondError maps service errors onto HTTP. Storage failures are logged
// and replaced with a generic message.
func respondError(c *gin.Context, err error) {
	status := apperror.MapErrorToHTTPStatus(err)
	code := apperror.CodeOf(err)

	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"account_id": c.Param("id"),
		}).WithError(err).Error("request failed")
		c.JSON(status, ErrorResponse{Code: apperror.CodeStorage, Message: "Internal server error"})
		return
	}

	message := err.Error()
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	c.JSON(status, ErrorResponse{Code: code, Message: message})
}

// bindJSON decodes and validates the body, writing the 400 itself.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return false
	}
	return true
}
