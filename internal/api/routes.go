package api

import (
	"net/http"

	"github.com/MiteshDarda/pw-genius/internal/config"
	"github.com/MiteshDarda/pw-genius/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the nomination and admin endpoints onto the router.
// Identity comes from the external provider's bearer tokens; admin routes
// additionally require membership in the configured group.
func SetupRoutes(
	router *gin.Engine,
	cfg config.Config,
	nominationService service.NominationService,
	adminService service.AdminService,
) {
	nominationHandler := NewNominationHandler(nominationService, cfg.Nomination.MaxAttachmentSize)
	adminHandler := NewAdminHandler(adminService)

	authMiddleware := AuthMiddleware(cfg.JWT.Secret)

	router.Use(RequestID())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	registerGroup := apiV1.Group("/register")
	registerGroup.Use(authMiddleware)
	{
		// POST /api/v1/register
		registerGroup.POST("", nominationHandler.SubmitNomination)
		// GET /api/v1/register/check/{userId}
		registerGroup.GET("/check/:userId", nominationHandler.CheckRegistration)

		adminGroup := registerGroup.Group("/admin")
		adminGroup.Use(GroupMiddleware(cfg.JWT.AdminGroup))
		{
			// GET /api/v1/register/admin/nominations
			adminGroup.GET("/nominations", adminHandler.ListNominations)
			// GET /api/v1/register/admin/nominations/{id}
			adminGroup.GET("/nominations/:id", adminHandler.GetNominationDetail)
			// PUT /api/v1/register/admin/nominations/{id}/status
			adminGroup.PUT("/nominations/:id/status", adminHandler.UpdateStatus)
			// GET /api/v1/register/admin/nominations/{id}/download
			adminGroup.GET("/nominations/:id/download", adminHandler.DownloadAttachment)
			// DELETE /api/v1/register/admin/nominations/{id}
			adminGroup.DELETE("/nominations/:id", adminHandler.DeleteNomination)
			// POST /api/v1/register/admin/nominations/bulk-status
			adminGroup.POST("/nominations/bulk-status", adminHandler.BulkUpdateStatus)
			// GET /api/v1/register/admin/statistics
			adminGroup.GET("/statistics", adminHandler.GetStatistics)
			// GET /api/v1/register/admin/user/{userId}
			adminGroup.GET("/user/:userId", adminHandler.GetUserNomination)
		}
	}
}
