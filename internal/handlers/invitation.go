package handlers

import (
	"github.com/deployhub-io/deployhub/backend/internal/middleware"
	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/internal/services"
	"github.com/deployhub-io/deployhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// InvitationHandler exposes the invitation lifecycle endpoints.
type InvitationHandler struct {
	invitations   *services.InvitationService
	collaborators *services.CollaboratorService
}

func NewInvitationHandler(invitations *services.InvitationService, collaborators *services.CollaboratorService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, collaborators: collaborators}
}

type CreateInvitationRequest struct {
	Email        string               `json:"email" binding:"required"`
	Role         models.FixedRole     `json:"role" binding:"required"`
	CustomRoleID *uint                `json:"custom_role_id"`
	Permissions  models.CapabilitySet `json:"permissions"`
}

// Create issues a new invitation for a project.
// POST /api/projects/:id/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if !req.Role.Valid() {
		response.BadRequest(c, "invalid role, must be OWNER, ADMIN, DEVELOPER or VIEWER")
		return
	}
	if !validCapabilities(c, req.Permissions) {
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapManageCollaborators) {
		return
	}

	inv, err := h.invitations.Create(services.CreateInvitationParams{
		ProjectID:    projectID,
		InviterID:    middleware.GetUserID(c),
		InviteeEmail: req.Email,
		Role:         req.Role,
		CustomRoleID: req.CustomRoleID,
		Permissions:  req.Permissions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, inv)
}

// ListForProject returns a project's pending invitations.
// GET /api/projects/:id/invitations
func (h *InvitationHandler) ListForProject(c *gin.Context) {
	projectID, ok := parseUintParam(c, "id", "invalid project id")
	if !ok {
		return
	}

	if !requireCapability(c, h.collaborators, projectID, models.CapManageCollaborators) {
		return
	}

	invs, err := h.invitations.ListPendingForProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invs)
}

// ListMine returns the pending invitations addressed to the logged-in
// user's email.
// GET /api/invitations
func (h *InvitationHandler) ListMine(c *gin.Context) {
	invs, err := h.invitations.ListPendingForEmail(middleware.GetEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invs)
}

// Accept accepts an invitation addressed to the logged-in user and adds
// them to the project.
// POST /api/invitations/:id/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "invalid invitation id")
	if !ok {
		return
	}

	inv, err := h.invitations.Accept(id, middleware.GetUserID(c), middleware.GetEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, inv)
}

// Reject refuses an invitation addressed to the logged-in user.
// POST /api/invitations/:id/reject
func (h *InvitationHandler) Reject(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "invalid invitation id")
	if !ok {
		return
	}

	inv, err := h.invitations.Reject(id, middleware.GetEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, inv)
}

// Cancel lets the inviter withdraw a pending invitation.
// DELETE /api/invitations/:id
func (h *InvitationHandler) Cancel(c *gin.Context) {
	id, ok := parseUintParam(c, "id", "invalid invitation id")
	if !ok {
		return
	}

	if err := h.invitations.Cancel(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invitation cancelled"})
}
