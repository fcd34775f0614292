// internal/handlers/transfer.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/services"
	"github.com/ipforge/registry/internal/utils"
)

type TransferHandler struct {
	transferService *services.TransferService
}

func NewTransferHandler(transferService *services.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// POST /assets/:id/transfer/lock
func (h *TransferHandler) CreateLock(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	lock, err := h.transferService.CreateTransferLock(callerID, assetID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, lock)
}

// POST /assets/:id/transfer
func (h *TransferHandler) Transfer(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	asset, err := h.transferService.Transfer(callerID, assetID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, asset)
}

// GET /assets/:id/transfer/lock?new_owner=<uuid>
func (h *TransferHandler) GetLock(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	newOwner, err := uuid.Parse(c.Query("new_owner"))
	if err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "invalid new_owner parameter", nil)
		return
	}

	lock, err := h.transferService.GetTransferLock(assetID, newOwner)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, lock)
}
