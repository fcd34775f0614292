// internal/handlers/funding.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ipforge/registry/internal/services"
	"github.com/ipforge/registry/internal/utils"
)

type FundingHandler struct {
	fundingService *services.FundingService
}

func NewFundingHandler(fundingService *services.FundingService) *FundingHandler {
	return &FundingHandler{
		fundingService: fundingService,
	}
}

// POST /funding/intents
func (h *FundingHandler) CreateIntent(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req services.CreateFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	resp, err := h.fundingService.CreateIntent(callerID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, resp)
}

// POST /funding/confirm
func (h *FundingHandler) Confirm(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req services.ConfirmFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	intent, err := h.fundingService.Confirm(callerID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /admin/funding/refund
func (h *FundingHandler) Refund(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req services.RefundFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	intent, err := h.fundingService.Refund(callerID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// GET /funding/balance
func (h *FundingHandler) Balance(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	balance, err := h.fundingService.GetBalance(callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"balance": balance})
}

// GET /funding/history
func (h *FundingHandler) History(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	intents, total, err := h.fundingService.History(callerID, params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(intents, total, params))
}
