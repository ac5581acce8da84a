package models

import (
	"time"
)

// InvitationStatus is the lifecycle state of an invitation. PENDING is the
// only non-terminal state; every other value is terminal and no transition
// is defined out of it.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRefused  InvitationStatus = "REFUSED"
	// InvitationExpired covers both natural expiry and inviter-initiated
	// cancellation. The audit trail distinguishes the two paths.
	InvitationExpired InvitationStatus = "EXPIRED"
)

// Invitation is a time-bounded offer of project membership. It is created
// once, transitions exactly once out of PENDING, and is never deleted by
// normal flow. Acceptance materializes a Collaborator row; the invitation
// itself never mutates one directly.
type Invitation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"index;not null" json:"project_id"`
	Project      *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	InviterID    uint      `gorm:"not null" json:"inviter_id"`
	InviteeEmail string    `gorm:"size:255;index;not null" json:"invitee_email"`
	Role         FixedRole `gorm:"size:20;not null;default:VIEWER" json:"role"`
	CustomRoleID *uint     `json:"custom_role_id,omitempty"`

	// Permissions, when set, becomes the collaborator's explicit override
	// on acceptance.
	Permissions CapabilitySet `gorm:"type:text" json:"permissions,omitempty"`

	// Token is an opaque reference usable in invitation emails.
	Token string `gorm:"size:64;uniqueIndex" json:"token"`

	Status    InvitationStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Invitation) TableName() string { return "invitations" }

// IsExpired reports whether the invitation's deadline has passed. An
// invitation without a deadline never expires naturally.
func (i *Invitation) IsExpired() bool {
	return i.ExpiresAt != nil && time.Now().After(*i.ExpiresAt)
}
