package services

import (
	"time"

	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InvitationSweeper periodically moves stale PENDING invitations to the
// EXPIRED terminal status so they stop showing up in pending listings and
// can no longer be accepted.
type InvitationSweeper struct {
	db            *gorm.DB
	spec          string
	cronScheduler *cron.Cron
}

func NewInvitationSweeper(db *gorm.DB, spec string) *InvitationSweeper {
	if spec == "" {
		spec = "*/10 * * * *"
	}
	return &InvitationSweeper{db: db, spec: spec}
}

func (s *InvitationSweeper) Start() {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc(s.spec, s.Sweep); err != nil {
		logger.Errorf("[InvitationSweeper] Failed to add cron job: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[InvitationSweeper] Scheduler started (cron: %s)", s.spec)
}

func (s *InvitationSweeper) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// Sweep expires every pending invitation whose deadline has passed. The
// status filter in the UPDATE keeps it from touching invitations that
// flipped to a terminal status since being read.
func (s *InvitationSweeper) Sweep() {
	res := s.db.Model(&models.Invitation{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?",
			models.InvitationPending, time.Now()).
		Updates(map[string]interface{}{
			"status":     models.InvitationExpired,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		logger.Errorf("[InvitationSweeper] Sweep failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		logger.Infof("[InvitationSweeper] Expired %d stale invitations", res.RowsAffected)
	}
}
