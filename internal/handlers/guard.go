package handlers

import (
	"github.com/deployhub-io/deployhub/backend/internal/middleware"
	"github.com/deployhub-io/deployhub/backend/internal/models"
	"github.com/deployhub-io/deployhub/backend/internal/services"
	"github.com/deployhub-io/deployhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// requireCapability checks that the requester holds the given capability on
// the project before a write endpoint proceeds. Platform admins bypass the
// per-project check. On failure the 403 response has already been written and
// the caller must return.
func requireCapability(c *gin.Context, collaborators *services.CollaboratorService, projectID uint, capability models.Capability) bool {
	if middleware.GetRole(c) == "admin" {
		return true
	}

	perms, err := collaborators.EffectivePermissions(projectID, middleware.GetUserID(c))
	if err != nil {
		response.Forbidden(c, "not a collaborator on this project")
		return false
	}
	if !perms.Has(capability) {
		response.Forbidden(c, "missing capability: "+string(capability))
		return false
	}
	return true
}
