package handlers

import (
	"strconv"

	"github.com/deployhub-io/deployhub/backend/internal/middleware"
	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/internal/services"
	"github.com/deployhub-io/deployhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// CollaboratorHandler exposes project membership endpoints.
type CollaboratorHandler struct {
	collaborators *services.CollaboratorService
}

func NewCollaboratorHandler(collaborators *services.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{collaborators: collaborators}
}

type AddCollaboratorRequest struct {
	UserID       uint                 `json:"user_id" binding:"required"`
	Role         models.FixedRole     `json:"role" binding:"required"`
	CustomRoleID *uint                `json:"custom_role_id"`
	Permissions  models.CapabilitySet `json:"permissions"`
}

type UpdateCollaboratorRequest struct {
	Role        *models.FixedRole     `json:"role"`
	Permissions *models.CapabilitySet `json:"permissions"`
}

// List returns all collaborators of a project with their resolved permissions.
// GET /api/projects/:id/collaborators
func (h *CollaboratorHandler) List(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapReadProject) {
		return
	}

	collabs, err := h.collaborators.ListByProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, collabs)
}

// Add adds a user to a project directly (without an invitation).
// POST /api/projects/:id/collaborators
func (h *CollaboratorHandler) Add(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}

	var req AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if !req.Role.Valid() {
		response.BadRequest(c, "invalid role, must be OWNER, ADMIN, DEVELOPER or VIEWER")
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapManageCollaborators) {
		return
	}

	collab, err := h.collaborators.Add(services.AddCollaboratorParams{
		ProjectID:           projectID,
		UserID:              req.UserID,
		Role:                req.Role,
		CustomRoleID:        req.CustomRoleID,
		ExplicitPermissions: req.Permissions,
		InvitedBy:           middleware.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, collab)
}

// Update changes a collaborator's role or explicit permission override.
// Omitted fields are left untouched; an explicit empty permissions array
// clears the override.
// PUT /api/projects/:id/collaborators/:userID
func (h *CollaboratorHandler) Update(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "userID", "invalid user id")
	if !ok {
		return
	}

	var req UpdateCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.Role != nil && !req.Role.Valid() {
		response.BadRequest(c, "invalid role, must be OWNER, ADMIN, DEVELOPER or VIEWER")
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapManageCollaborators) {
		return
	}

	collab, err := h.collaborators.Update(projectID, userID, req.Role, req.Permissions)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, collab)
}

// Remove removes a collaborator from a project. Removing a user who is not
// a collaborator succeeds without effect.
// DELETE /api/projects/:id/collaborators/:userID
func (h *CollaboratorHandler) Remove(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "userID", "invalid user id")
	if !ok {
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapManageCollaborators) {
		return
	}

	if err := h.collaborators.Remove(projectID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "collaborator removed"})
}

// Permissions returns a collaborator's effective permission set.
// GET /api/projects/:id/collaborators/:userID/permissions
func (h *CollaboratorHandler) Permissions(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "userID", "invalid user id")
	if !ok {
		return
	}

	// A collaborator may always inspect their own permissions.
	if userID != middleware.GetUserID(c) {
		if !requireCapability(c, h.collaborators, projectID, models.CapReadProject) {
			return
		}
	}

	perms, err := h.collaborators.EffectivePermissions(projectID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"permissions": perms})
}

// parseUintParam parses a numeric path parameter, writing a 400 response
// when it is malformed.
func parseUintParam(c *gin.Context, name, msg string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, msg)
		return 0, false
	}
	return uint(v), true
}
