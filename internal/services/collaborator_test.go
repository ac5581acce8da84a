package services

import (
	"testing"

	"github.com/deployhub-io/deployhub/backend/internal/models"
)

func TestCollaboratorAdd(t *testing.T) {
	db := newTestDB(t)
	svc := NewCollaboratorService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	dev := seedUser(t, db, "dev", "dev@example.com")
	project := seedProject(t, db, "api", owner.ID)

	collab, err := svc.Add(AddCollaboratorParams{
		ProjectID: project.ID,
		UserID:    dev.ID,
		Role:      models.RoleDeveloper,
		InvitedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if collab.Status != models.CollaboratorAccepted {
		t.Errorf("status = %s, expected ACCEPTED", collab.Status)
	}
	if collab.AcceptedAt == nil {
		t.Error("accepted_at should be set")
	}
}

func TestCollaboratorAdd_Duplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCollaboratorService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	dev := seedUser(t, db, "dev", "dev@example.com")
	project := seedProject(t, db, "api", owner.ID)

	p := AddCollaboratorParams{
		ProjectID: project.ID,
		UserID:    dev.ID,
		Role:      models.RoleDeveloper,
		InvitedBy: owner.ID,
	}
	if _, err := svc.Add(p); err != nil {
		t.Fatalf("first Add() error = %v", err)
	}

	// Second membership for the same (project, user), even under a
	// different role, must hit the unique constraint.
	p.Role = models.RoleViewer
	_, err := svc.Add(p)
	if KindOf(err) != KindConflict {
		t.Errorf("duplicate membership should conflict, got %v", err)
	}
}

func TestCollaboratorUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCollaboratorService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	dev := seedUser(t, db, "dev", "dev@example.com")
	project := seedProject(t, db, "api", owner.ID)

	_, err := svc.Add(AddCollaboratorParams{
		ProjectID:           project.ID,
		UserID:              dev.ID,
		Role:                models.RoleViewer,
		ExplicitPermissions: models.CapabilitySet{models.CapReadProject},
		InvitedBy:           owner.ID,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Role-only update leaves the override untouched.
	role := models.RoleDeveloper
	collab, err := svc.Update(project.ID, dev.ID, &role, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if collab.Role != models.RoleDeveloper {
		t.Errorf("role = %s, expected DEVELOPER", collab.Role)
	}
	if !collab.ExplicitPermissions.Has(models.CapReadProject) {
		t.Errorf("override should be untouched, got %v", collab.ExplicitPermissions)
	}

	// An explicit empty set clears the override.
	empty := models.CapabilitySet{}
	collab, err = svc.Update(project.ID, dev.ID, nil, &empty)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(collab.ExplicitPermissions) != 0 {
		t.Errorf("override should be cleared, got %v", collab.ExplicitPermissions)
	}
}

func TestCollaboratorUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCollaboratorService(db)

	role := models.RoleAdmin
	_, err := svc.Update(1, 999, &role, nil)
	if KindOf(err) != KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCollaboratorRemove_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewCollaboratorService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	dev := seedUser(t, db, "dev", "dev@example.com")
	project := seedProject(t, db, "api", owner.ID)

	_, err := svc.Add(AddCollaboratorParams{
		ProjectID: project.ID,
		UserID:    dev.ID,
		Role:      models.RoleDeveloper,
		InvitedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := svc.Remove(project.ID, dev.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	// Removing again (or removing a user who never was a collaborator)
	// succeeds without effect.
	if err := svc.Remove(project.ID, dev.ID); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}

	if _, err := svc.EffectivePermissions(project.ID, dev.ID); KindOf(err) != KindNotFound {
		t.Errorf("removed collaborator should be gone, got %v", err)
	}
}

func TestEffectivePermissions_Precedence(t *testing.T) {
	db := newTestDB(t)
	collabSvc := NewCollaboratorService(db)
	roleSvc := NewCustomRoleService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	project := seedProject(t, db, "api", owner.ID)

	customRole, err := roleSvc.Create(CreateCustomRoleParams{
		ProjectID:   project.ID,
		Name:        "log-reader",
		Permissions: models.CapabilitySet{models.CapViewLogs},
		CreatedBy:   owner.ID,
	})
	if err != nil {
		t.Fatalf("role Create() error = %v", err)
	}

	tests := []struct {
		name     string
		params   AddCollaboratorParams
		expected models.CapabilitySet
	}{
		{
			name: "explicit override wins over custom role and fixed role",
			params: AddCollaboratorParams{
				Role:                models.RoleOwner,
				CustomRoleID:        &customRole.ID,
				ExplicitPermissions: models.CapabilitySet{models.CapDeploy},
			},
			expected: models.CapabilitySet{models.CapDeploy},
		},
		{
			name: "custom role wins over fixed role",
			params: AddCollaboratorParams{
				Role:         models.RoleOwner,
				CustomRoleID: &customRole.ID,
			},
			expected: models.CapabilitySet{models.CapViewLogs},
		},
		{
			name: "fixed role defaults apply last",
			params: AddCollaboratorParams{
				Role: models.RoleViewer,
			},
			expected: DefaultCapabilities(models.RoleViewer),
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := seedUser(t, db, "user"+string(rune('a'+i)), "user"+string(rune('a'+i))+"@example.com")
			tt.params.ProjectID = project.ID
			tt.params.UserID = user.ID
			tt.params.InvitedBy = owner.ID

			if _, err := collabSvc.Add(tt.params); err != nil {
				t.Fatalf("Add() error = %v", err)
			}

			perms, err := collabSvc.EffectivePermissions(project.ID, user.ID)
			if err != nil {
				t.Fatalf("EffectivePermissions() error = %v", err)
			}
			if len(perms) != len(tt.expected) || !perms.ContainsAll(tt.expected) {
				t.Errorf("permissions = %v, expected %v", perms, tt.expected)
			}
		})
	}
}

func TestEffectivePermissions_DanglingCustomRole(t *testing.T) {
	db := newTestDB(t)
	collabSvc := NewCollaboratorService(db)
	roleSvc := NewCustomRoleService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	dev := seedUser(t, db, "dev", "dev@example.com")
	project := seedProject(t, db, "api", owner.ID)

	customRole, err := roleSvc.Create(CreateCustomRoleParams{
		ProjectID:   project.ID,
		Name:        "narrow",
		Permissions: models.CapabilitySet{models.CapViewMetrics},
		CreatedBy:   owner.ID,
	})
	if err != nil {
		t.Fatalf("role Create() error = %v", err)
	}

	_, err = collabSvc.Add(AddCollaboratorParams{
		ProjectID:    project.ID,
		UserID:       dev.ID,
		Role:         models.RoleDeveloper,
		CustomRoleID: &customRole.ID,
		InvitedBy:    owner.ID,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := roleSvc.Delete(project.ID, customRole.ID); err != nil {
		t.Fatalf("role Delete() error = %v", err)
	}

	// The stale reference falls back to the fixed role's defaults.
	perms, err := collabSvc.EffectivePermissions(project.ID, dev.ID)
	if err != nil {
		t.Fatalf("EffectivePermissions() error = %v", err)
	}
	expected := DefaultCapabilities(models.RoleDeveloper)
	if len(perms) != len(expected) || !perms.ContainsAll(expected) {
		t.Errorf("permissions = %v, expected developer defaults %v", perms, expected)
	}
}

func TestCollaboratorListByProject(t *testing.T) {
	db := newTestDB(t)
	collabSvc := NewCollaboratorService(db)
	roleSvc := NewCustomRoleService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	dev := seedUser(t, db, "dev", "dev@example.com")
	viewer := seedUser(t, db, "viewer", "viewer@example.com")
	project := seedProject(t, db, "api", owner.ID)

	customRole, err := roleSvc.Create(CreateCustomRoleParams{
		ProjectID:   project.ID,
		Name:        "log-reader",
		Permissions: models.CapabilitySet{models.CapViewLogs},
		CreatedBy:   owner.ID,
	})
	if err != nil {
		t.Fatalf("role Create() error = %v", err)
	}

	_, err = collabSvc.Add(AddCollaboratorParams{
		ProjectID:    project.ID,
		UserID:       dev.ID,
		Role:         models.RoleDeveloper,
		CustomRoleID: &customRole.ID,
		InvitedBy:    owner.ID,
	})
	if err != nil {
		t.Fatalf("Add(dev) error = %v", err)
	}
	_, err = collabSvc.Add(AddCollaboratorParams{
		ProjectID: project.ID,
		UserID:    viewer.ID,
		Role:      models.RoleViewer,
		InvitedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("Add(viewer) error = %v", err)
	}

	views, err := collabSvc.ListByProject(project.ID)
	if err != nil {
		t.Fatalf("ListByProject() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 collaborators, got %d", len(views))
	}

	byUser := make(map[uint]ResolvedCollaborator)
	for _, v := range views {
		byUser[v.UserID] = v
	}

	devView := byUser[dev.ID]
	if devView.CustomRoleName != "log-reader" {
		t.Errorf("custom role name = %q, expected %q", devView.CustomRoleName, "log-reader")
	}
	if len(devView.EffectivePermissions) != 1 || !devView.EffectivePermissions.Has(models.CapViewLogs) {
		t.Errorf("dev permissions = %v, expected only VIEW_LOGS", devView.EffectivePermissions)
	}
	if devView.User == nil || devView.User.Username != "dev" {
		t.Error("user should be preloaded on the view")
	}

	viewerView := byUser[viewer.ID]
	if viewerView.CustomRoleName != "" {
		t.Errorf("viewer should have no custom role name, got %q", viewerView.CustomRoleName)
	}
	if !viewerView.EffectivePermissions.ContainsAll(DefaultCapabilities(models.RoleViewer)) {
		t.Errorf("viewer permissions = %v, expected viewer defaults", viewerView.EffectivePermissions)
	}
}
