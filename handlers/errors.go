package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Machine-readable error codes returned in the error envelope. Clients are
// expected to branch on these and the HTTP status, never on message text.
const (
	CodeDuplicateResource    = "DUPLICATE_RESOURCE"
	CodeResourceNotFound     = "RESOURCE_NOT_FOUND"
	CodeForeignKeyConstraint = "FOREIGN_KEY_CONSTRAINT"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeDatabaseError        = "DATABASE_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// ErrorResponse is the envelope every failed request renders.
type ErrorResponse struct {
	StatusCode int         `json:"statusCode"`
	Timestamp  string      `json:"timestamp"`
	Path       string      `json:"path"`
	Method     string      `json:"method"`
	Error      string      `json:"error"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	respondErrorDetails(c, status, code, message, nil)
}

func respondErrorDetails(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Request.URL.Path,
		Method:     c.Request.Method,
		Error:      code,
		Message:    message,
		Details:    details,
	})
}

// respondDBError classifies an error surfaced by gorm and renders the
// matching envelope. notFoundMessage is used when the error is a missing row.
func respondDBError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, CodeResourceNotFound, notFoundMessage)
	case errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err):
		respondError(c, http.StatusConflict, CodeDuplicateResource, "Resource already exists")
	case isForeignKeyError(err):
		respondError(c, http.StatusBadRequest, CodeForeignKeyConstraint, "Foreign key constraint failed")
	default:
		respondError(c, http.StatusInternalServerError, CodeDatabaseError, "Database operation failed")
	}
}

// isDuplicateKeyError sniffs driver messages for unique violations that gorm
// did not translate (postgres 23505, sqlite UNIQUE constraint).
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// isForeignKeyError sniffs driver messages for FK violations
// (postgres 23503, sqlite FOREIGN KEY constraint).
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "violates foreign key constraint") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed")
}
