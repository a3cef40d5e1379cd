package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/services"
	"github.com/asgtransit/website-api/pkg/validator"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// SuccessResponse represents a plain acknowledgement
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// respondError maps a service error onto a status code. Storage details are
// logged, never returned.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var fieldErrs validator.FieldErrors
	var migrationErr *services.MigrationError

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "One or more fields are invalid",
			Fields:  fieldErrs,
		})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Record not found",
		})
	case errors.Is(err, database.ErrAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: "A record with this id already exists",
		})
	case errors.As(err, &migrationErr):
		logger.WithError(err).Error("Migration request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "migration_failed",
			Message: migrationErr.Error(),
		})
	default:
		logger.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}
