package main

import (
	"github.com/deployhub-io/deployhub/backend/internal/handlers"
	"github.com/deployhub-io/deployhub/backend/internal/middleware"
	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the API surface
	apiLimiter := middleware.NewRateLimiter(50, 100)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api", apiLimiter.Middleware())
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Collaborators
			collaboratorHandler := handlers.NewCollaboratorHandler(svc.collaboratorService)
			protected.GET("/projects/:id/collaborators", collaboratorHandler.List)
			protected.POST("/projects/:id/collaborators", collaboratorHandler.Add)
			protected.PUT("/projects/:id/collaborators/:userID", collaboratorHandler.Update)
			protected.DELETE("/projects/:id/collaborators/:userID", collaboratorHandler.Remove)
			protected.GET("/projects/:id/collaborators/:userID/permissions", collaboratorHandler.Permissions)

			// Custom roles
			customRoleHandler := handlers.NewCustomRoleHandler(svc.customRoleService, svc.collaboratorService)
			protected.GET("/projects/:id/roles", customRoleHandler.List)
			protected.POST("/projects/:id/roles", customRoleHandler.Create)
			protected.PUT("/projects/:id/roles/:roleID", customRoleHandler.Update)
			protected.DELETE("/projects/:id/roles/:roleID", customRoleHandler.Delete)

			// Invitations
			invitationHandler := handlers.NewInvitationHandler(svc.invitationService, svc.collaboratorService)
			protected.POST("/projects/:id/invitations", invitationHandler.Create)
			protected.GET("/projects/:id/invitations", invitationHandler.ListForProject)
			protected.GET("/invitations", invitationHandler.ListMine)
			protected.POST("/invitations/:id/accept", invitationHandler.Accept)
			protected.POST("/invitations/:id/reject", invitationHandler.Reject)
			protected.DELETE("/invitations/:id", invitationHandler.Cancel)
		}

		// Admin-only user administration
		admin := api.Group("", middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			userHandler := handlers.NewUserHandler(models.GetDB())
			admin.GET("/users", userHandler.List)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)
		}
	}
}
