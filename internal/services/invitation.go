package services

import (
	"errors"
	"strings"
	"time"

	"github.com/deployhub-io/deployhub/backend/internal/config"
	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationService owns the invitation lifecycle: PENDING is the only
// live state, and exactly one transition out of it ever succeeds. The
// terminal flip is always a guarded UPDATE on the PENDING status so that
// two racing transitions serialize to one winner.
type InvitationService struct {
	db            *gorm.DB
	collaborators *CollaboratorService
	queue         TaskQueue
	expiryDays    int
}

func NewInvitationService(db *gorm.DB, collaborators *CollaboratorService, cfg *config.InvitationsConfig) *InvitationService {
	expiryDays := 0
	if cfg != nil {
		expiryDays = cfg.ExpiryDays
	}
	return &InvitationService{
		db:            db,
		collaborators: collaborators,
		expiryDays:    expiryDays,
	}
}

// SetQueue wires the email notification queue. Without one, invitations
// are still created, just never mailed.
func (s *InvitationService) SetQueue(queue TaskQueue) {
	s.queue = queue
}

type CreateInvitationParams struct {
	ProjectID    uint
	InviterID    uint
	InviteeEmail string
	Role         models.FixedRole
	CustomRoleID *uint
	Permissions  models.CapabilitySet
}

// Create issues a new PENDING invitation. The invitee email is required;
// everything else is taken as given (project existence is the project
// service's problem, not this core's).
func (s *InvitationService) Create(p CreateInvitationParams) (*models.Invitation, error) {
	email := strings.TrimSpace(p.InviteeEmail)
	if email == "" {
		return nil, newValidation("invitee email is required")
	}

	inv := models.Invitation{
		ProjectID:    p.ProjectID,
		InviterID:    p.InviterID,
		InviteeEmail: email,
		Role:         p.Role,
		CustomRoleID: p.CustomRoleID,
		Permissions:  p.Permissions,
		Token:        uuid.NewString(),
		Status:       models.InvitationPending,
	}
	if s.expiryDays > 0 {
		expiresAt := time.Now().AddDate(0, 0, s.expiryDays)
		inv.ExpiresAt = &expiresAt
	}

	if err := s.db.Create(&inv).Error; err != nil {
		return nil, err
	}

	s.enqueueEmail(&inv)
	return &inv, nil
}

// ListPendingForEmail returns pending invitations stored under exactly the
// given email. Storage matching is case-sensitive; only acceptance
// normalizes case.
func (s *InvitationService) ListPendingForEmail(email string) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := s.db.Where("invitee_email = ? AND status = ?", email, models.InvitationPending).
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

// ListPendingForProject returns a project's pending invitations.
func (s *InvitationService) ListPendingForProject(projectID uint) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := s.db.Where("project_id = ? AND status = ?", projectID, models.InvitationPending).
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

// Accept turns a pending invitation into a membership. The collaborator
// insert and the status flip run in one transaction: a membership conflict
// rolls the flip back, and the guarded flip makes the second of two racing
// accepts fail with an invalid-state error instead of double-accepting.
func (s *InvitationService) Accept(id, currentUserID uint, currentUserEmail string) (*models.Invitation, error) {
	inv, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvitationPending {
		return nil, newInvalidState("invitation is no longer pending")
	}
	if inv.IsExpired() {
		s.expire(inv)
		return nil, newInvalidState("invitation has expired")
	}
	if inv.InviteeEmail == "" || !strings.EqualFold(inv.InviteeEmail, currentUserEmail) {
		return nil, newUnauthorized("invitation was issued to a different email address")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, inv.ID, models.InvitationAccepted); err != nil {
			return err
		}
		_, err := s.collaborators.add(tx, AddCollaboratorParams{
			ProjectID:           inv.ProjectID,
			UserID:              currentUserID,
			Role:                inv.Role,
			CustomRoleID:        inv.CustomRoleID,
			ExplicitPermissions: inv.Permissions,
			InvitedBy:           inv.InviterID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.get(id)
}

// Reject refuses a pending invitation. Only the invitee (matched by email,
// case-insensitively) may refuse.
func (s *InvitationService) Reject(id uint, currentUserEmail string) (*models.Invitation, error) {
	inv, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvitationPending {
		return nil, newInvalidState("invitation is no longer pending")
	}
	if inv.IsExpired() {
		s.expire(inv)
		return nil, newInvalidState("invitation has expired")
	}
	if inv.InviteeEmail == "" || !strings.EqualFold(inv.InviteeEmail, currentUserEmail) {
		return nil, newUnauthorized("invitation was issued to a different email address")
	}

	if err := s.transition(s.db, inv.ID, models.InvitationRefused); err != nil {
		return nil, err
	}
	return s.get(id)
}

// Cancel lets the inviter withdraw a pending invitation. The cancelled
// invitation lands on the EXPIRED terminal status, same as natural expiry.
func (s *InvitationService) Cancel(id, requesterID uint) error {
	inv, err := s.get(id)
	if err != nil {
		return err
	}
	if inv.Status != models.InvitationPending {
		return newInvalidState("invitation is no longer pending")
	}
	if inv.InviterID != requesterID {
		return newUnauthorized("only the inviter can cancel an invitation")
	}

	if err := s.transition(s.db, inv.ID, models.InvitationExpired); err != nil {
		return err
	}

	logger.Info().
		Uint("invitation_id", inv.ID).
		Uint("project_id", inv.ProjectID).
		Uint("requester_id", requesterID).
		Msg("invitation cancelled by inviter")
	return nil
}

func (s *InvitationService) get(id uint) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.db.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("invitation not found")
		}
		return nil, err
	}
	return &inv, nil
}

// transition flips a PENDING invitation to a terminal status. The WHERE
// clause on the current status is the single-writer guard: if another
// transition won the race, zero rows match and the attempt fails.
func (s *InvitationService) transition(db *gorm.DB, id uint, to models.InvitationStatus) error {
	res := db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationPending).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newInvalidState("invitation is no longer pending")
	}
	return nil
}

// expire flips a stale PENDING invitation to EXPIRED. Losing the race to
// another transition is fine; the caller reports invalid state either way.
func (s *InvitationService) expire(inv *models.Invitation) {
	if err := s.transition(s.db, inv.ID, models.InvitationExpired); err != nil {
		if KindOf(err) != KindInvalidState {
			logger.Error().Err(err).Uint("invitation_id", inv.ID).Msg("failed to expire invitation")
		}
	}
}

func (s *InvitationService) enqueueEmail(inv *models.Invitation) {
	if s.queue == nil {
		return
	}

	task := &InviteEmailTask{
		InvitationID: inv.ID,
		ProjectID:    inv.ProjectID,
		InviteeEmail: inv.InviteeEmail,
		Role:         string(inv.Role),
		Token:        inv.Token,
		ExpiresAt:    inv.ExpiresAt,
	}
	if err := s.queue.Enqueue(task); err != nil {
		// Mail delivery is best effort; the invitation stands regardless.
		logger.Error().Err(err).Uint("invitation_id", inv.ID).Msg("failed to enqueue invitation email")
	}
}
