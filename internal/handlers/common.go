package handlers

import (
	"costseg-api/internal/costseg"
	"costseg-api/internal/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CommonServices holds shared dependencies used across handlers
type CommonServices struct {
	drafts *DraftStore
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(drafts *DraftStore) *CommonServices {
	return &CommonServices{
		drafts: drafts,
	}
}

// sendError is a helper function that combines logging and error response
// It logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// handleCalcError maps engine errors onto HTTP status codes. Input-shape
// problems are the caller's fault; contract and reconciliation failures are
// ours and surface as internal errors.
func handleCalcError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, costseg.ErrInvalidInput):
		sendError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, costseg.ErrReconciliation):
		sendError(c, http.StatusInternalServerError, "Internal calculation error", err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
