package main

import (
	"github.com/deployhub-io/deployhub/backend/internal/config"
	"github.com/deployhub-io/deployhub/backend/internal/handlers"
	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/internal/services"
	"github.com/deployhub-io/deployhub/backend/internal/utils"
	"github.com/deployhub-io/deployhub/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	collaboratorService *services.CollaboratorService
	customRoleService   *services.CustomRoleService
	invitationService   *services.InvitationService
	invitationSweeper   *services.InvitationSweeper
	taskQueue           services.TaskQueue
	worker              *services.Worker
	authHandler         *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	collaboratorService := services.NewCollaboratorService(db)
	customRoleService := services.NewCustomRoleService(db)
	invitationService := services.NewInvitationService(db, collaboratorService, &cfg.Invitations)

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	emailService := services.NewEmailService(&cfg.Email)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.ProcessInviteEmailTask)
	}
	invitationService.SetQueue(taskQueue)

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.ProcessInviteEmailTask)
			worker.Start()
		}
	}

	// Start the stale-invitation sweeper
	invitationSweeper := services.NewInvitationSweeper(db, cfg.Invitations.SweepCron)
	invitationSweeper.Start()

	// Create default admin user
	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		collaboratorService: collaboratorService,
		customRoleService:   customRoleService,
		invitationService:   invitationService,
		invitationSweeper:   invitationSweeper,
		taskQueue:           taskQueue,
		worker:              worker,
		authHandler:         authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.invitationSweeper.Stop()
	logger.Info().Msg("Invitation sweeper stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
