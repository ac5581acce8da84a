package models

import (
	"time"
)

// CustomRole is a per-project named permission bundle. Names are unique
// within a project. Collaborators and invitations reference a custom role
// by id only; deleting a custom role leaves those references dangling and
// permission resolution falls back to the fixed-role defaults.
type CustomRole struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ProjectID   uint          `gorm:"uniqueIndex:idx_custom_role_project_name;not null" json:"project_id"`
	Name        string        `gorm:"uniqueIndex:idx_custom_role_project_name;size:100;not null" json:"name"`
	Description string        `gorm:"size:500" json:"description"`
	Permissions CapabilitySet `gorm:"type:text" json:"permissions"`
	CreatedBy   uint          `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (CustomRole) TableName() string { return "custom_roles" }
