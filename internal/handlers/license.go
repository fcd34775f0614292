// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/services"
	"github.com/ipforge/registry/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /assets/:id/license
func (h *LicenseHandler) License(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.LicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	license, err := h.licenseService.License(callerID, assetID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, license)
}

// POST /assets/:id/license/renew
func (h *LicenseHandler) Renew(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	license, err := h.licenseService.Renew(callerID, assetID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, license)
}

// POST /assets/:id/license/revoke
func (h *LicenseHandler) Revoke(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	if err := h.licenseService.Revoke(callerID, assetID, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"revoked": true})
}

// GET /assets/:id/license/expired?licensee=<uuid>
func (h *LicenseHandler) IsExpired(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	licensee, err := uuid.Parse(c.Query("licensee"))
	if err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "invalid licensee parameter", nil)
		return
	}

	expired, err := h.licenseService.IsExpired(assetID, licensee)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"expired": expired})
}

// POST /assets/:id/license/users
func (h *LicenseHandler) AuthorizeUser(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.AuthorizeUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	if err := h.licenseService.AuthorizeUser(callerID, assetID, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"authorized": true})
}

// DELETE /assets/:id/license/users/:userId
func (h *LicenseHandler) RevokeUser(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "invalid userId parameter", nil)
		return
	}

	if err := h.licenseService.RevokeUser(callerID, assetID, userID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"revoked": true})
}

// GET /licenses/mine
func (h *LicenseHandler) MyLicenses(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	licenses, err := h.licenseService.MyLicenses(callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, licenses)
}
