package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Capability is an atomic permission token. The set is closed: these values
// are both the keys of the fixed-role defaults and the values carried by
// custom roles and explicit overrides.
type Capability string

const (
	CapReadProject         Capability = "READ_PROJECT"
	CapWriteProject        Capability = "WRITE_PROJECT"
	CapDeploy              Capability = "DEPLOY"
	CapManageEnvVars       Capability = "MANAGE_ENV_VARS"
	CapViewLogs            Capability = "VIEW_LOGS"
	CapViewMetrics         Capability = "VIEW_METRICS"
	CapManageCollaborators Capability = "MANAGE_COLLABORATORS"
	CapDeleteProject       Capability = "DELETE_PROJECT"
	CapManageBilling       Capability = "MANAGE_BILLING"
)

// AllCapabilities lists every known capability token.
var AllCapabilities = []Capability{
	CapReadProject,
	CapWriteProject,
	CapDeploy,
	CapManageEnvVars,
	CapViewLogs,
	CapViewMetrics,
	CapManageCollaborators,
	CapDeleteProject,
	CapManageBilling,
}

// Valid reports whether c is a known capability token.
func (c Capability) Valid() bool {
	for _, known := range AllCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// FixedRole is one of the four built-in project roles.
type FixedRole string

const (
	RoleOwner     FixedRole = "OWNER"
	RoleAdmin     FixedRole = "ADMIN"
	RoleDeveloper FixedRole = "DEVELOPER"
	RoleViewer    FixedRole = "VIEWER"
)

// Valid reports whether r is a known fixed role.
func (r FixedRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleDeveloper, RoleViewer:
		return true
	}
	return false
}

// CapabilitySet is a set of capabilities stored as a JSON array in a text
// column. A nil set means "no value" (stored as NULL), which is distinct
// from an empty set for override fields.
type CapabilitySet []Capability

// Has reports whether the set contains cap.
func (s CapabilitySet) Has(cap Capability) bool {
	for _, c := range s {
		if c == cap {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every capability in other is present in s.
func (s CapabilitySet) ContainsAll(other CapabilitySet) bool {
	for _, c := range other {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Value implements driver.Valuer, serializing the set as a JSON array.
func (s CapabilitySet) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, reading back the JSON array form.
func (s *CapabilitySet) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CapabilitySet", value)
	}

	if len(data) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(data, s)
}
