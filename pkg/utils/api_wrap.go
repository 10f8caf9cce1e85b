package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// RespondDenied renders an entitlement denial. The limits object rides in
// Data so the UI can show usage next to the upgrade prompt.
func RespondDenied(c *gin.Context, message string, limits interface{}) {
	c.JSON(http.StatusForbidden, APIResponse{
		Status:  "error",
		Code:    http.StatusForbidden,
		Message: message,
		TraceID: traceID(c),
		Data:    gin.H{"limits": limits, "requires_upgrade": true},
	})
}

func HandleServiceError(c *gin.Context, err error) {
	var quotaErr QuotaError

	switch {
	case errors.As(err, &quotaErr):
		RespondDenied(c, quotaErr.Reason, quotaErr.Limits)
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrAccountNotFound):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, ErrEmailAlreadyExists):
		RespondError(c, http.StatusConflict, "Email already exists")
	case errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, ErrWebhookSignature):
		RespondError(c, http.StatusBadRequest, "Signature verification failed")
	case errors.Is(err, ErrDatabaseError):
		log.Printf("Database error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Printf("Unknown error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
