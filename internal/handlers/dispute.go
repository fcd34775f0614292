// internal/handlers/dispute.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ipforge/registry/internal/services"
	"github.com/ipforge/registry/internal/utils"
)

type DisputeHandler struct {
	disputeService *services.DisputeService
}

func NewDisputeHandler(disputeService *services.DisputeService) *DisputeHandler {
	return &DisputeHandler{
		disputeService: disputeService,
	}
}

// POST /assets/:id/disputes
func (h *DisputeHandler) Open(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	dispute, err := h.disputeService.Open(callerID, assetID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, dispute)
}

// POST /assets/:id/disputes/:disputeId/resolve
func (h *DisputeHandler) Resolve(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	disputeID, ok := pathID(c, "disputeId")
	if !ok {
		return
	}

	// Refund defaults to true; an explicit body can decline it.
	req := services.ResolveDisputeRequest{Refund: true}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
			return
		}
	}

	dispute, err := h.disputeService.Resolve(callerID, assetID, disputeID, req.Refund)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, dispute)
}

// POST /disputes/:disputeId/vote
func (h *DisputeHandler) Vote(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	disputeID, ok := pathID(c, "disputeId")
	if !ok {
		return
	}

	dispute, err := h.disputeService.Vote(callerID, disputeID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, dispute)
}

// GET /disputes/:disputeId
func (h *DisputeHandler) Get(c *gin.Context) {
	disputeID, ok := pathID(c, "disputeId")
	if !ok {
		return
	}

	dispute, err := h.disputeService.GetDispute(disputeID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, dispute)
}

// GET /assets/:id/disputes
func (h *DisputeHandler) ListForAsset(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	disputes, err := h.disputeService.ListDisputes(assetID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, disputes)
}
