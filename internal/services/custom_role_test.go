package services

import (
	"testing"

	"github.com/deployhub-io/deployhub/backend/internal/models"
)

func TestCustomRoleCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomRoleService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	project := seedProject(t, db, "api", owner.ID)

	role, err := svc.Create(CreateCustomRoleParams{
		ProjectID:   project.ID,
		Name:        "release-manager",
		Description: "can deploy and read",
		Permissions: models.CapabilitySet{models.CapReadProject, models.CapDeploy},
		CreatedBy:   owner.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if role.ID == 0 {
		t.Error("created role should have an id")
	}
	if !role.Permissions.Has(models.CapDeploy) {
		t.Errorf("permissions = %v, expected DEPLOY", role.Permissions)
	}
}

func TestCustomRoleCreate_EmptyName(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomRoleService(db)

	_, err := svc.Create(CreateCustomRoleParams{ProjectID: 1, Name: "   "})
	if KindOf(err) != KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCustomRoleCreate_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomRoleService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	project := seedProject(t, db, "api", owner.ID)

	p := CreateCustomRoleParams{
		ProjectID: project.ID,
		Name:      "auditor",
		CreatedBy: owner.ID,
	}
	if _, err := svc.Create(p); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := svc.Create(p)
	if KindOf(err) != KindConflict {
		t.Errorf("duplicate name should conflict, got %v", err)
	}

	// Same name in a different project is fine.
	other := seedProject(t, db, "web", owner.ID)
	p.ProjectID = other.ID
	if _, err := svc.Create(p); err != nil {
		t.Errorf("same name in another project should succeed, got %v", err)
	}
}

func TestCustomRoleUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomRoleService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	project := seedProject(t, db, "api", owner.ID)

	role, err := svc.Create(CreateCustomRoleParams{
		ProjectID:   project.ID,
		Name:        "auditor",
		Permissions: models.CapabilitySet{models.CapReadProject},
		CreatedBy:   owner.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(project.ID, role.ID, "auditor-v2", "wider scope",
		models.CapabilitySet{models.CapReadProject, models.CapViewLogs})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "auditor-v2" {
		t.Errorf("name = %q, expected %q", updated.Name, "auditor-v2")
	}
	if !updated.Permissions.Has(models.CapViewLogs) {
		t.Errorf("permissions = %v, expected VIEW_LOGS", updated.Permissions)
	}
}

func TestCustomRoleUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomRoleService(db)

	_, err := svc.Update(1, 999, "ghost", "", nil)
	if KindOf(err) != KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCustomRoleUpdate_WrongProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomRoleService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	project := seedProject(t, db, "api", owner.ID)
	other := seedProject(t, db, "web", owner.ID)

	role, err := svc.Create(CreateCustomRoleParams{
		ProjectID: project.ID,
		Name:      "auditor",
		CreatedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A role must not be reachable through another project's scope.
	if _, err := svc.Update(other.ID, role.ID, "hijacked", "", nil); KindOf(err) != KindNotFound {
		t.Errorf("cross-project update should be not found, got %v", err)
	}
	if err := svc.Delete(other.ID, role.ID); KindOf(err) != KindNotFound {
		t.Errorf("cross-project delete should be not found, got %v", err)
	}
}

func TestCustomRoleDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomRoleService(db)
	owner := seedUser(t, db, "owner", "owner@example.com")
	project := seedProject(t, db, "api", owner.ID)

	role, err := svc.Create(CreateCustomRoleParams{
		ProjectID: project.ID,
		Name:      "auditor",
		CreatedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(project.ID, role.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if err := svc.Delete(project.ID, role.ID); KindOf(err) != KindNotFound {
		t.Errorf("second delete should be not found, got %v", err)
	}

	roles, err := svc.ListByProject(project.ID)
	if err != nil {
		t.Fatalf("ListByProject() error = %v", err)
	}
	if len(roles) != 0 {
		t.Errorf("expected no roles after delete, got %d", len(roles))
	}
}
