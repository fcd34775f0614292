// internal/handlers/common.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/utils"
)

// pathID parses an integer identifier path parameter. Registry entities
// (assets, disputes) use ledger-assigned integer ids, not UUIDs.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 0 {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "invalid "+name+" parameter", nil)
		return 0, false
	}
	return id, true
}

// caller resolves the authenticated account from the request context.
func caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return id, true
}
