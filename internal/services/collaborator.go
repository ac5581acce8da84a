package services

import (
	"errors"
	"time"

	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/pkg/logger"
	"gorm.io/gorm"
)

// CollaboratorService owns the single membership record per (project, user)
// and the permission-resolution algorithm every authorization check goes
// through.
type CollaboratorService struct {
	db *gorm.DB
}

func NewCollaboratorService(db *gorm.DB) *CollaboratorService {
	return &CollaboratorService{db: db}
}

type AddCollaboratorParams struct {
	ProjectID           uint
	UserID              uint
	Role                models.FixedRole
	CustomRoleID        *uint
	ExplicitPermissions models.CapabilitySet
	InvitedBy           uint
}

// ResolvedCollaborator is the read view of a membership row: the stored
// record plus its effective permissions and, when the referenced custom
// role still exists, that role's display name.
type ResolvedCollaborator struct {
	models.Collaborator
	CustomRoleName       string               `json:"custom_role_name,omitempty"`
	EffectivePermissions models.CapabilitySet `json:"effective_permissions"`
}

// Add creates a membership row in ACCEPTED state. It deliberately performs
// no duplicate pre-check: the unique (project_id, user_id) index is the only
// race-safe guard, and its violation surfaces as a conflict the caller must
// propagate.
func (s *CollaboratorService) Add(p AddCollaboratorParams) (*models.Collaborator, error) {
	return s.add(s.db, p)
}

func (s *CollaboratorService) add(db *gorm.DB, p AddCollaboratorParams) (*models.Collaborator, error) {
	now := time.Now()
	collab := models.Collaborator{
		ProjectID:           p.ProjectID,
		UserID:              p.UserID,
		Role:                p.Role,
		CustomRoleID:        p.CustomRoleID,
		ExplicitPermissions: p.ExplicitPermissions,
		Status:              models.CollaboratorAccepted,
		InvitedBy:           p.InvitedBy,
		InvitedAt:           now,
		AcceptedAt:          &now,
	}

	if err := db.Create(&collab).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newConflict("user is already a collaborator on this project")
		}
		return nil, err
	}
	return &collab, nil
}

// Update replaces the fixed role and/or the explicit-permission override.
// A nil pointer leaves the field untouched; a non-nil empty permission set
// clears the override. CustomRoleID and status are never touched here.
func (s *CollaboratorService) Update(projectID, userID uint, role *models.FixedRole, explicit *models.CapabilitySet) (*models.Collaborator, error) {
	collab, err := s.get(projectID, userID)
	if err != nil {
		return nil, err
	}

	if role != nil {
		collab.Role = *role
	}
	if explicit != nil {
		if len(*explicit) == 0 {
			collab.ExplicitPermissions = nil
		} else {
			collab.ExplicitPermissions = *explicit
		}
	}

	if err := s.db.Save(collab).Error; err != nil {
		return nil, err
	}
	return collab, nil
}

// ListByProject returns every membership of a project with permissions
// resolved. A dangling custom-role reference yields an empty role name,
// never an error.
func (s *CollaboratorService) ListByProject(projectID uint) ([]ResolvedCollaborator, error) {
	var collabs []models.Collaborator
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Find(&collabs).Error; err != nil {
		return nil, err
	}

	roleNames, rolePerms, err := s.loadCustomRoles(collabs)
	if err != nil {
		return nil, err
	}

	views := make([]ResolvedCollaborator, 0, len(collabs))
	for _, c := range collabs {
		view := ResolvedCollaborator{Collaborator: c}
		if c.CustomRoleID != nil {
			view.CustomRoleName = roleNames[*c.CustomRoleID]
		}
		view.EffectivePermissions = resolvePermissions(&c, func(id uint) (models.CapabilitySet, bool) {
			perms, ok := rolePerms[id]
			return perms, ok
		})
		views = append(views, view)
	}
	return views, nil
}

// Remove deletes a membership. Removing a non-existent membership is a
// deliberate no-op, not an error.
func (s *CollaboratorService) Remove(projectID, userID uint) error {
	return s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.Collaborator{}).Error
}

// EffectivePermissions resolves the capability set of a project member.
// It is the public read used by external authorization checks.
func (s *CollaboratorService) EffectivePermissions(projectID, userID uint) (models.CapabilitySet, error) {
	collab, err := s.get(projectID, userID)
	if err != nil {
		return nil, err
	}

	return resolvePermissions(collab, func(id uint) (models.CapabilitySet, bool) {
		var role models.CustomRole
		if err := s.db.First(&role, id).Error; err != nil {
			return nil, false
		}
		return role.Permissions, true
	}), nil
}

func (s *CollaboratorService) get(projectID, userID uint) (*models.Collaborator, error) {
	var collab models.Collaborator
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&collab).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("collaborator not found")
		}
		return nil, err
	}
	return &collab, nil
}

// loadCustomRoles batch-loads the custom roles referenced by a membership
// list and returns lookup maps keyed by role id.
func (s *CollaboratorService) loadCustomRoles(collabs []models.Collaborator) (map[uint]string, map[uint]models.CapabilitySet, error) {
	ids := make([]uint, 0, len(collabs))
	seen := make(map[uint]bool)
	for _, c := range collabs {
		if c.CustomRoleID != nil && !seen[*c.CustomRoleID] {
			seen[*c.CustomRoleID] = true
			ids = append(ids, *c.CustomRoleID)
		}
	}

	names := make(map[uint]string)
	perms := make(map[uint]models.CapabilitySet)
	if len(ids) == 0 {
		return names, perms, nil
	}

	var roles []models.CustomRole
	if err := s.db.Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return nil, nil, err
	}
	for _, r := range roles {
		names[r.ID] = r.Name
		perms[r.ID] = r.Permissions
	}
	return names, perms, nil
}

// resolvePermissions computes effective capabilities with strict precedence:
//
//  1. a present, non-empty explicit override wins verbatim;
//  2. else a resolvable custom role contributes its permission set;
//  3. else the fixed role's defaults apply.
//
// A custom-role id that no longer resolves falls through to the role
// defaults rather than failing. That fail-open policy can silently widen
// access when a restrictive custom role is deleted, so the fallback is
// logged.
func resolvePermissions(c *models.Collaborator, lookupRole func(uint) (models.CapabilitySet, bool)) models.CapabilitySet {
	if len(c.ExplicitPermissions) > 0 {
		return c.ExplicitPermissions
	}

	if c.CustomRoleID != nil {
		if perms, ok := lookupRole(*c.CustomRoleID); ok {
			return perms
		}
		logger.Warn().
			Uint("project_id", c.ProjectID).
			Uint("user_id", c.UserID).
			Uint("custom_role_id", *c.CustomRoleID).
			Str("role", string(c.Role)).
			Msg("dangling custom role reference, falling back to fixed-role defaults")
	}

	return DefaultCapabilities(c.Role)
}
