package services

import (
	"github.com/deployhub-io/deployhub/backend/internal/models"
)

// Fixed-role capability defaults. The sets are strictly monotonic:
// OWNER ⊇ ADMIN ⊇ DEVELOPER ⊇ VIEWER.
var (
	viewerCapabilities = models.CapabilitySet{
		models.CapReadProject,
		models.CapViewLogs,
		models.CapViewMetrics,
	}

	developerCapabilities = models.CapabilitySet{
		models.CapReadProject,
		models.CapViewLogs,
		models.CapViewMetrics,
		models.CapWriteProject,
		models.CapDeploy,
		models.CapManageEnvVars,
	}

	adminCapabilities = models.CapabilitySet{
		models.CapReadProject,
		models.CapViewLogs,
		models.CapViewMetrics,
		models.CapWriteProject,
		models.CapDeploy,
		models.CapManageEnvVars,
		models.CapManageCollaborators,
	}

	ownerCapabilities = models.CapabilitySet{
		models.CapReadProject,
		models.CapViewLogs,
		models.CapViewMetrics,
		models.CapWriteProject,
		models.CapDeploy,
		models.CapManageEnvVars,
		models.CapManageCollaborators,
		models.CapDeleteProject,
		models.CapManageBilling,
	}
)

// DefaultCapabilities returns the default capability set for a fixed role.
// It is pure and total: an unknown role gets the viewer set, the least
// privileged one. Callers receive a copy and may mutate it freely.
func DefaultCapabilities(role models.FixedRole) models.CapabilitySet {
	var base models.CapabilitySet
	switch role {
	case models.RoleOwner:
		base = ownerCapabilities
	case models.RoleAdmin:
		base = adminCapabilities
	case models.RoleDeveloper:
		base = developerCapabilities
	default:
		base = viewerCapabilities
	}

	out := make(models.CapabilitySet, len(base))
	copy(out, base)
	return out
}
