package services

import (
	"errors"
	"strings"

	"github.com/deployhub-io/deployhub/backend/internal/models"
	"gorm.io/gorm"
)

// CustomRoleService owns per-project named permission bundles. Name
// uniqueness within a project is enforced by the storage constraint, not by
// a pre-check, so concurrent creates cannot slip two rows past a read.
type CustomRoleService struct {
	db *gorm.DB
}

func NewCustomRoleService(db *gorm.DB) *CustomRoleService {
	return &CustomRoleService{db: db}
}

type CreateCustomRoleParams struct {
	ProjectID   uint
	Name        string
	Description string
	Permissions models.CapabilitySet
	CreatedBy   uint
}

// Create inserts a new custom role. A duplicate (project, name) pair fails
// with a conflict error.
func (s *CustomRoleService) Create(p CreateCustomRoleParams) (*models.CustomRole, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, newValidation("custom role name is required")
	}

	role := models.CustomRole{
		ProjectID:   p.ProjectID,
		Name:        name,
		Description: p.Description,
		Permissions: p.Permissions,
		CreatedBy:   p.CreatedBy,
	}
	if role.Permissions == nil {
		role.Permissions = models.CapabilitySet{}
	}

	if err := s.db.Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newConflict("a custom role with this name already exists in the project")
		}
		return nil, err
	}
	return &role, nil
}

// ListByProject returns all custom roles of a project.
func (s *CustomRoleService) ListByProject(projectID uint) ([]models.CustomRole, error) {
	var roles []models.CustomRole
	if err := s.db.Where("project_id = ?", projectID).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Get returns a custom role by id, scoped to its project so a role cannot
// be reached through another project's path.
func (s *CustomRoleService) Get(projectID, id uint) (*models.CustomRole, error) {
	var role models.CustomRole
	if err := s.db.Where("project_id = ?", projectID).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("custom role not found")
		}
		return nil, err
	}
	return &role, nil
}

// Update fully replaces the three mutable fields (name, description,
// permissions). There are no partial-update semantics.
func (s *CustomRoleService) Update(projectID, id uint, name, description string, permissions models.CapabilitySet) (*models.CustomRole, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidation("custom role name is required")
	}

	role, err := s.Get(projectID, id)
	if err != nil {
		return nil, err
	}

	role.Name = name
	role.Description = description
	role.Permissions = permissions
	if role.Permissions == nil {
		role.Permissions = models.CapabilitySet{}
	}

	if err := s.db.Save(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newConflict("a custom role with this name already exists in the project")
		}
		return nil, err
	}
	return role, nil
}

// Delete hard-deletes a custom role. Collaborators and invitations keep
// referencing the dead id; permission resolution treats that as "no
// override", so no cascade runs here.
func (s *CustomRoleService) Delete(projectID, id uint) error {
	res := s.db.Where("project_id = ?", projectID).Delete(&models.CustomRole{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newNotFound("custom role not found")
	}
	return nil
}
