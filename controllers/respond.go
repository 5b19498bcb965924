package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"infrasense-be/apperrors"
	"infrasense-be/middlewares"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto status codes and the
// {"error": ...} envelope. Causes of 5xx responses stay in the log.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		verr      *apperrors.ValidationError
		forbidden *apperrors.ForbiddenError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid fields", "fields": verr.Fields})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":    "Forbidden: this action requires government authorization",
			"userRole": forbidden.Role,
		})
	case errors.Is(err, apperrors.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Status transition not allowed"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	default:
		_ = c.Error(err)
		logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", middlewares.RequestID(c),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
