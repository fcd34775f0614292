// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ipforge/registry/internal/services"
	"github.com/ipforge/registry/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// POST /admin/pause
func (h *AdminHandler) Pause(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	if err := h.adminService.Pause(callerID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"paused": true})
}

// POST /admin/unpause
func (h *AdminHandler) Unpause(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	if err := h.adminService.Unpause(callerID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"paused": false})
}

// POST /admin/emergency-withdraw
func (h *AdminHandler) EmergencyWithdraw(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	amount, err := h.adminService.EmergencyWithdraw(callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"amount": amount})
}

// POST /admin/upgrade-notes
func (h *AdminHandler) AddUpgradeNote(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req services.UpgradeNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	note, err := h.adminService.AddUpgradeNote(callerID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, note)
}

// GET /admin/upgrade-notes
func (h *AdminHandler) ListUpgradeNotes(c *gin.Context) {
	notes, err := h.adminService.ListUpgradeNotes()
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, notes)
}

// GET /admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.adminService.GetSettings(c.Query("category"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, settings)
}

// PUT /admin/settings
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req services.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	setting, err := h.adminService.UpdateSetting(callerID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, setting)
}

// GET /admin/events
func (h *AdminHandler) ListEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	events, total, err := h.adminService.ListEvents(params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(events, total, params))
}
