package models

import (
	"time"
)

// CollaboratorStatus is the membership state of a collaborator row.
type CollaboratorStatus string

const (
	CollaboratorAccepted CollaboratorStatus = "ACCEPTED"
	CollaboratorRevoked  CollaboratorStatus = "REVOKED"
)

// Collaborator is the single membership record per (project, user). The
// composite unique index is the race-safety mechanism for creation: the
// application never pre-checks for an existing row and instead surfaces
// the constraint violation as a conflict.
type Collaborator struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProjectID uint     `gorm:"uniqueIndex:idx_collaborator_project_user;not null" json:"project_id"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint     `gorm:"uniqueIndex:idx_collaborator_project_user;not null" json:"user_id"`
	User      *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Role FixedRole `gorm:"size:20;not null;default:VIEWER" json:"role"`

	// CustomRoleID is a weak reference: the custom role may be deleted
	// independently of rows pointing at it.
	CustomRoleID *uint `json:"custom_role_id,omitempty"`

	// ExplicitPermissions, when present and non-empty, fully overrides
	// both the custom role and the fixed-role defaults.
	ExplicitPermissions CapabilitySet `gorm:"type:text" json:"explicit_permissions,omitempty"`

	Status     CollaboratorStatus `gorm:"size:20;not null;default:ACCEPTED" json:"status"`
	InvitedBy  uint               `json:"invited_by"`
	InvitedAt  time.Time          `json:"invited_at"`
	AcceptedAt *time.Time         `json:"accepted_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (Collaborator) TableName() string { return "collaborators" }
