// internal/handlers/asset.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/services"
	"github.com/ipforge/registry/internal/utils"
)

type AssetHandler struct {
	registryService *services.RegistryService
}

func NewAssetHandler(registryService *services.RegistryService) *AssetHandler {
	return &AssetHandler{
		registryService: registryService,
	}
}

// POST /assets
func (h *AssetHandler) Create(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req services.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	asset, err := h.registryService.CreateAsset(callerID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, asset)
}

// POST /assets/batch
func (h *AssetHandler) BatchCreate(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req services.BatchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	assets, err := h.registryService.BatchCreateAssets(callerID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, assets)
}

// PUT /assets/:id
func (h *AssetHandler) Update(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	asset, err := h.registryService.UpdateAsset(callerID, assetID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, asset)
}

// GET /assets/:id
func (h *AssetHandler) Get(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	asset, err := h.registryService.GetAsset(assetID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, asset)
}

// GET /assets
func (h *AssetHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	assets, total, err := h.registryService.ListAssets(params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(assets, total, params))
}

// GET /assets/licensed
func (h *AssetHandler) ListLicensed(c *gin.Context) {
	assets, err := h.registryService.LicensedAssets()
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, assets)
}

// GET /assets/owned
// Admins may inspect another account's holdings via ?owner=<uuid>.
func (h *AssetHandler) ListOwned(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	owner := callerID
	if raw := c.Query("owner"); raw != "" {
		role, _ := utils.GetRoleFromContext(c)
		if role != string(models.RoleAdmin) {
			utils.ForbiddenResponse(c, "Admin access required to query other owners")
			return
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.ErrorResponse(c, 400, "INVALID_INPUT", "invalid owner parameter", nil)
			return
		}
		owner = parsed
	}

	assets, err := h.registryService.OwnedAssets(owner)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, assets)
}

// POST /assets/:id/shares
func (h *AssetHandler) AddShare(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.AddShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	share, err := h.registryService.AddShare(callerID, assetID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, share)
}

// GET /assets/:id/shares
func (h *AssetHandler) GetShares(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	shares, err := h.registryService.GetShares(assetID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, shares)
}

// POST /assets/:id/royalties
func (h *AssetHandler) PayRoyalties(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.PayRoyaltiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	payment, err := h.registryService.PayRoyalties(callerID, assetID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, payment)
}

// GET /assets/:id/royalties
func (h *AssetHandler) ListRoyalties(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payments, err := h.registryService.GetRoyaltyPayments(assetID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, payments)
}
