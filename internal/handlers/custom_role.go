package handlers

import (
	"github.com/deployhub-io/deployhub/backend/internal/middleware"
	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/internal/services"
	"github.com/deployhub-io/deployhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// CustomRoleHandler exposes per-project custom role endpoints.
type CustomRoleHandler struct {
	roles         *services.CustomRoleService
	collaborators *services.CollaboratorService
}

func NewCustomRoleHandler(roles *services.CustomRoleService, collaborators *services.CollaboratorService) *CustomRoleHandler {
	return &CustomRoleHandler{roles: roles, collaborators: collaborators}
}

type CustomRoleRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Permissions models.CapabilitySet `json:"permissions"`
}

// List returns all custom roles defined in a project.
// GET /api/projects/:id/roles
func (h *CustomRoleHandler) List(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapReadProject) {
		return
	}

	roles, err := h.roles.ListByProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, roles)
}

// Create defines a new custom role in a project.
// POST /api/projects/:id/roles
func (h *CustomRoleHandler) Create(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}

	var req CustomRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if !validCapabilities(c, req.Permissions) {
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapManageCollaborators) {
		return
	}

	role, err := h.roles.Create(services.CreateCustomRoleParams{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		CreatedBy:   middleware.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, role)
}

// Update replaces a custom role's name, description and permission set.
// PUT /api/projects/:id/roles/:roleID
func (h *CustomRoleHandler) Update(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}
	roleID, ok := parseUintParam(c, "roleID", "invalid role id")
	if !ok {
		return
	}

	var req CustomRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if !validCapabilities(c, req.Permissions) {
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapManageCollaborators) {
		return
	}

	role, err := h.roles.Update(projectID, roleID, req.Name, req.Description, req.Permissions)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, role)
}

// Delete removes a custom role. Collaborators still referencing it fall
// back to their fixed role's default permissions.
// DELETE /api/projects/:id/roles/:roleID
func (h *CustomRoleHandler) Delete(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}
	roleID, ok := parseUintParam(c, "roleID", "invalid role id")
	if !ok {
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapManageCollaborators) {
		return
	}

	if err := h.roles.Delete(projectID, roleID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "custom role deleted"})
}

// validCapabilities rejects unknown capability tokens with a 400 response.
func validCapabilities(c *gin.Context, perms models.CapabilitySet) bool {
	for _, p := range perms {
		if !p.Valid() {
			response.BadRequest(c, "unknown capability: "+string(p))
			return false
		}
	}
	return true
}
