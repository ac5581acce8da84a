package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is the shared resource collaborators are scoped to. Its CRUD
// lives in the project-management service; this core stores the row only
// so collaborator and invitation records have something to hang off, and
// never validates that a referenced project id exists.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Description string         `gorm:"size:1000" json:"description"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
