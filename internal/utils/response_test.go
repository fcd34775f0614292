// internal/utils/response_test.go
package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ipforge/registry/internal/models"
)

func respondWith(t *testing.T, err error) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, err)

	var body APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", models.E(models.KindInvalidInput, "bad"), http.StatusBadRequest, "INVALID_INPUT"},
		{"batch limit", models.E(models.KindBatchLimitExceeded, "too many"), http.StatusBadRequest, "BATCH_LIMIT_EXCEEDED"},
		{"unauthorized", models.E(models.KindUnauthorized, "nope"), http.StatusForbidden, "UNAUTHORIZED"},
		{"not found", models.E(models.KindNotFound, "missing"), http.StatusNotFound, "NOT_FOUND"},
		{"payment failed", models.E(models.KindPaymentFailed, "broke"), http.StatusPaymentRequired, "PAYMENT_FAILED"},
		{"dispute active", models.E(models.KindDisputeActive, "frozen"), http.StatusConflict, "DISPUTE_ACTIVE"},
		{"timelock active", models.E(models.KindTimeLockActive, "locked"), http.StatusConflict, "TIMELOCK_ACTIVE"},
		{"reentrancy", models.E(models.KindReentrancy, "busy"), http.StatusConflict, "OPERATION_IN_FLIGHT"},
		{"rate limited", models.E(models.KindRateLimited, "slow down"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"paused", models.E(models.KindPaused, "paused"), http.StatusServiceUnavailable, "REGISTRY_PAUSED"},
		{"internal", models.E(models.KindInternal, "boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respondWith(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	_, body := respondWith(t, models.E(models.KindInternal, "sensitive database detail"))
	assert.Equal(t, "Internal server error", body.Error.Message)
}

func TestRespondErrorValidation(t *testing.T) {
	err := ValidateStruct(&sampleRequest{})
	w, body := respondWith(t, models.Wrap(models.KindInvalidInput, "validation failed", err))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.NotNil(t, body.Error.Details)
}
