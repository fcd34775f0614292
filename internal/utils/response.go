// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/models"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// kindHTTP maps domain error kinds to HTTP status codes and stable error
// codes for API clients.
var kindHTTP = map[models.ErrorKind]struct {
	status int
	code   string
}{
	models.KindInvalidInput:       {http.StatusBadRequest, "INVALID_INPUT"},
	models.KindBatchLimitExceeded: {http.StatusBadRequest, "BATCH_LIMIT_EXCEEDED"},
	models.KindUnauthorized:       {http.StatusForbidden, "UNAUTHORIZED"},
	models.KindNotFound:           {http.StatusNotFound, "NOT_FOUND"},
	models.KindPaymentFailed:      {http.StatusPaymentRequired, "PAYMENT_FAILED"},
	models.KindDisputeActive:      {http.StatusConflict, "DISPUTE_ACTIVE"},
	models.KindTimeLockActive:     {http.StatusConflict, "TIMELOCK_ACTIVE"},
	models.KindReentrancy:         {http.StatusConflict, "OPERATION_IN_FLIGHT"},
	models.KindRateLimited:        {http.StatusTooManyRequests, "RATE_LIMITED"},
	models.KindPaused:             {http.StatusServiceUnavailable, "REGISTRY_PAUSED"},
	models.KindInternal:           {http.StatusInternalServerError, "INTERNAL_ERROR"},
}

// RespondError translates a service error into the API error envelope.
// Validation failures carry per-field details; everything else maps through
// the error kind.
func RespondError(c *gin.Context, err error) {
	if verrs, ok := unwrapValidation(err); ok {
		ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", GetValidationErrors(verrs))
		return
	}

	kind := models.KindOf(err)
	mapping, ok := kindHTTP[kind]
	if !ok {
		mapping = kindHTTP[models.KindInternal]
	}

	message := err.Error()
	if kind == models.KindInternal {
		// Internal details stay out of responses.
		message = "Internal server error"
	}

	ErrorResponse(c, mapping.status, mapping.code, message, nil)
}

func unwrapValidation(err error) (validator.ValidationErrors, bool) {
	for err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return verrs, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

func GetAccountIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("account_id")
	if !exists {
		return uuid.Nil, false
	}
	idStr, ok := value.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func GetRoleFromContext(c *gin.Context) (string, bool) {
	if role, exists := c.Get("role"); exists {
		if roleStr, ok := role.(string); ok {
			return roleStr, true
		}
	}
	return "", false
}
