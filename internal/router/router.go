// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ipforge/registry/internal/config"
	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/handlers"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/middleware"
	"github.com/ipforge/registry/internal/services"
	"github.com/ipforge/registry/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.AdminService) {
	// Core components
	store := ledger.New(db)
	g := guard.New(cfg.Registry.OperationCeiling)
	distributor := services.NewDistributionService()

	// Services
	authService := services.NewAuthService(db, cfg)
	registryService := services.NewRegistryService(store, g, distributor, &cfg.Registry)
	licenseService := services.NewLicenseService(store, g, distributor)
	transferService := services.NewTransferService(store, g, &cfg.Registry)
	disputeService := services.NewDisputeService(store, g)
	adminService := services.NewAdminService(store, g)
	fundingService := services.NewFundingService(store, g, &cfg.Payment)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	assetHandler := handlers.NewAssetHandler(registryService)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	transferHandler := handlers.NewTransferHandler(transferService)
	disputeHandler := handlers.NewDisputeHandler(disputeService)
	adminHandler := handlers.NewAdminHandler(adminService)
	fundingHandler := handlers.NewFundingHandler(fundingService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Asset routes
		assets := v1.Group("/assets")
		{
			assets.GET("", middleware.OptionalAuth(), assetHandler.List)
			assets.GET("/licensed", assetHandler.ListLicensed)
			assets.GET("/owned", middleware.AuthRequired(), assetHandler.ListOwned)
			assets.GET("/:id", middleware.OptionalAuth(), assetHandler.Get)
			assets.GET("/:id/shares", assetHandler.GetShares)
			assets.GET("/:id/royalties", assetHandler.ListRoyalties)
			assets.GET("/:id/disputes", disputeHandler.ListForAsset)
			assets.GET("/:id/license/expired", licenseHandler.IsExpired)

			protected := assets.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", assetHandler.Create)
				protected.POST("/batch", assetHandler.BatchCreate)
				protected.PUT("/:id", assetHandler.Update)
				protected.POST("/:id/shares", assetHandler.AddShare)
				protected.POST("/:id/royalties", assetHandler.PayRoyalties)

				protected.POST("/:id/license", licenseHandler.License)
				protected.POST("/:id/license/renew", licenseHandler.Renew)
				protected.POST("/:id/license/revoke", licenseHandler.Revoke)
				protected.POST("/:id/license/users", licenseHandler.AuthorizeUser)
				protected.DELETE("/:id/license/users/:userId", licenseHandler.RevokeUser)

				protected.POST("/:id/transfer", transferHandler.Transfer)
				protected.POST("/:id/transfer/lock", transferHandler.CreateLock)
				protected.GET("/:id/transfer/lock", transferHandler.GetLock)

				protected.POST("/:id/disputes", disputeHandler.Open)
				protected.POST("/:id/disputes/:disputeId/resolve", middleware.ModeratorRequired(), disputeHandler.Resolve)
			}
		}

		// License routes
		licenses := v1.Group("/licenses")
		licenses.Use(middleware.AuthRequired())
		{
			licenses.GET("/mine", licenseHandler.MyLicenses)
		}

		// Dispute routes
		disputes := v1.Group("/disputes")
		{
			disputes.GET("/:disputeId", disputeHandler.Get)
			disputes.POST("/:disputeId/vote", middleware.AuthRequired(), disputeHandler.Vote)
		}

		// Funding routes
		funding := v1.Group("/funding")
		funding.Use(middleware.AuthRequired())
		{
			funding.POST("/intent", fundingHandler.CreateIntent)
			funding.POST("/confirm", fundingHandler.Confirm)
			funding.POST("/refund", middleware.AdminRequired(), fundingHandler.Refund)
			funding.GET("/history", fundingHandler.History)
		}

		v1.GET("/balance", middleware.AuthRequired(), fundingHandler.Balance)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/pause", adminHandler.Pause)
			admin.POST("/unpause", adminHandler.Unpause)
			admin.POST("/emergency-withdraw", adminHandler.EmergencyWithdraw)
			admin.POST("/upgrades", adminHandler.AddUpgradeNote)
			admin.GET("/upgrades", adminHandler.ListUpgradeNotes)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSetting)
			admin.GET("/events", adminHandler.ListEvents)
		}
	}

	return r, adminService
}
