package directory

import (
	"context"
	"fmt"
	"testing"

	"erphrm/internal/domain/hrerr"
	"erphrm/internal/platform/kvstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(kvstore.New(kvstore.NewMemoryEngine()))
}

func seedDepartment(t *testing.T, s *Store, code string) {
	t.Helper()
	_, err := s.CreateDepartment(context.Background(), Department{Code: code, Name: "Dept " + code})
	if err != nil {
		t.Fatalf("seed department %s: %v", code, err)
	}
}

func seedPosition(t *testing.T, s *Store, code, name, dept string, capacity int) {
	t.Helper()
	_, err := s.CreatePosition(context.Background(), Position{
		Code: code, Name: name, Department: dept, Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("seed position %s: %v", code, err)
	}
}

func seedEmployee(t *testing.T, s *Store, code, dept, pos string) {
	t.Helper()
	_, err := s.CreateEmployee(context.Background(), Employee{
		Code: code, Name: "Emp " + code, Gender: "F", Department: dept, Position: pos,
	})
	if err != nil {
		t.Fatalf("seed employee %s: %v", code, err)
	}
}

func TestCreateEmployeeNormalizesAndDefaults(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateEmployee(context.Background(), Employee{Code: "  emp01 ", Name: "Alice"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Code != "EMP01" {
		t.Fatalf("expected normalized code EMP01, got %q", created.Code)
	}
	if created.Status != EmployeeStatusWorking {
		t.Fatalf("expected status Working, got %q", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set")
	}
}

func TestEmployeeCodeReservedEvenWhenDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, s, "EMP01", "", "")

	if _, err := s.CreateEmployee(ctx, Employee{Code: "emp01", Name: "Dup"}); !hrerr.IsKind(err, hrerr.DuplicateKey) {
		t.Fatalf("expected duplicate_key, got %v", err)
	}

	if err := s.SoftDeleteEmployee(ctx, "EMP01"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := s.CreateEmployee(ctx, Employee{Code: "EMP01", Name: "Dup"}); !hrerr.IsKind(err, hrerr.DuplicateKey) {
		t.Fatalf("deleted code must stay reserved, got %v", err)
	}
}

func TestSoftDeleteAndRestoreEmployee(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedPosition(t, s, "P1", "Staff", "D1", 5)
	seedEmployee(t, s, "EMP01", "D1", "P1")

	if err := s.SoftDeleteEmployee(ctx, "EMP01"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	emp, err := s.GetEmployee(ctx, "EMP01")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if emp.DeletedAt == nil || emp.Status != EmployeeStatusResigned {
		t.Fatalf("expected deleted resigned employee, got %+v", emp)
	}
	if emp.Department != "" || emp.Position != "" {
		t.Fatalf("deletion must clear assignment, got dept=%q pos=%q", emp.Department, emp.Position)
	}

	list, err := s.ListEmployees(ctx, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("deleted employee must be hidden from default list, got %d", len(list))
	}

	restored, err := s.RestoreEmployee(ctx, "EMP01")
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.DeletedAt != nil || restored.Status != EmployeeStatusWorking {
		t.Fatalf("expected live working employee, got %+v", restored)
	}
	if restored.Department != "" || restored.Position != "" {
		t.Fatal("restore must come back unassigned")
	}
}

func TestAssignmentRequiresLiveDepartmentAndPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedDepartment(t, s, "D2")
	seedPosition(t, s, "P1", "Staff", "D1", 5)

	if _, err := s.CreateEmployee(ctx, Employee{Code: "E1", Name: "A", Department: "NOPE"}); !hrerr.IsKind(err, hrerr.NotFound) {
		t.Fatalf("unknown department should be not_found, got %v", err)
	}
	if _, err := s.CreateEmployee(ctx, Employee{Code: "E2", Name: "B", Position: "P1"}); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("position without department should be validation_error, got %v", err)
	}
	if _, err := s.CreateEmployee(ctx, Employee{Code: "E3", Name: "C", Department: "D2", Position: "P1"}); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("position outside department should be validation_error, got %v", err)
	}
}

func TestPositionCapacityEnforced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedPosition(t, s, "P1", "Staff", "D1", 2)

	seedEmployee(t, s, "E1", "D1", "P1")
	seedEmployee(t, s, "E2", "D1", "P1")

	if _, err := s.CreateEmployee(ctx, Employee{Code: "E3", Name: "C", Department: "D1", Position: "P1"}); !hrerr.IsKind(err, hrerr.CapacityExceeded) {
		t.Fatalf("expected capacity_exceeded, got %v", err)
	}

	// Freeing a slot makes room again.
	if err := s.SoftDeleteEmployee(ctx, "E2"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := s.CreateEmployee(ctx, Employee{Code: "E3", Name: "C", Department: "D1", Position: "P1"}); err != nil {
		t.Fatalf("expected create to succeed after freeing a slot: %v", err)
	}
}

func TestSingleManagerPerDepartment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedPosition(t, s, "MGR", "Manager", "D1", 3)

	seedEmployee(t, s, "E1", "D1", "MGR")

	if _, err := s.CreateEmployee(ctx, Employee{Code: "E2", Name: "B", Department: "D1", Position: "MGR"}); !hrerr.IsKind(err, hrerr.ManagerConflict) {
		t.Fatalf("expected manager_conflict, got %v", err)
	}
}

func TestUpdateEmployeeResignClearsAssignment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedPosition(t, s, "P1", "Staff", "D1", 5)
	seedEmployee(t, s, "E1", "D1", "P1")

	resigned := EmployeeStatusResigned
	updated, err := s.UpdateEmployee(ctx, "E1", EmployeeUpdate{Status: &resigned})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Department != "" || updated.Position != "" {
		t.Fatalf("resignation must clear assignment, got %+v", updated)
	}
	if updated.ResignedAt == nil {
		t.Fatal("expected resignedAt to be stamped")
	}
}

func TestDepartmentWithMembersCannotBeDeletedOrDeactivated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedEmployee(t, s, "E1", "D1", "")

	if err := s.SoftDeleteDepartment(ctx, "D1"); !hrerr.IsKind(err, hrerr.DependentRecordsExist) {
		t.Fatalf("expected dependent_records_exist, got %v", err)
	}

	inactive := DepartmentStatusInactive
	if _, err := s.UpdateDepartment(ctx, "D1", DepartmentUpdate{Status: &inactive}); !hrerr.IsKind(err, hrerr.DependentRecordsExist) {
		t.Fatalf("expected dependent_records_exist on deactivation, got %v", err)
	}

	if err := s.SoftDeleteEmployee(ctx, "E1"); err != nil {
		t.Fatalf("soft delete employee failed: %v", err)
	}
	if err := s.SoftDeleteDepartment(ctx, "D1"); err != nil {
		t.Fatalf("expected delete to succeed once empty: %v", err)
	}
}

func TestPositionDeletionGuardAndCapacityFloor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedPosition(t, s, "P1", "Staff", "D1", 3)
	seedEmployee(t, s, "E1", "D1", "P1")
	seedEmployee(t, s, "E2", "D1", "P1")

	if err := s.SoftDeletePosition(ctx, "P1"); !hrerr.IsKind(err, hrerr.DependentRecordsExist) {
		t.Fatalf("expected dependent_records_exist, got %v", err)
	}

	one := 1
	if _, err := s.UpdatePosition(ctx, "P1", PositionUpdate{Capacity: &one}); !hrerr.IsKind(err, hrerr.CapacityExceeded) {
		t.Fatalf("capacity below assignee count must fail, got %v", err)
	}

	two := 2
	if _, err := s.UpdatePosition(ctx, "P1", PositionUpdate{Capacity: &two}); err != nil {
		t.Fatalf("capacity at assignee count must pass: %v", err)
	}
}

func TestPositionNameMustBeKnown(t *testing.T) {
	s := newTestStore(t)
	seedDepartment(t, s, "D1")

	_, err := s.CreatePosition(context.Background(), Position{Code: "P1", Name: "Wizard", Department: "D1", Capacity: 1})
	if !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("expected validation_error for unknown title, got %v", err)
	}
}

func TestEnrichmentResolvesNamesAndCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedPosition(t, s, "MGR", "Manager", "D1", 1)
	seedPosition(t, s, "P1", "Staff", "D1", 10)
	seedEmployee(t, s, "E1", "D1", "MGR")
	seedEmployee(t, s, "E2", "D1", "P1")

	detail, err := s.GetEmployeeDetail(ctx, "E2")
	if err != nil {
		t.Fatalf("get detail failed: %v", err)
	}
	if detail.DepartmentName != "Dept D1" || detail.PositionName != "Staff" {
		t.Fatalf("unexpected enrichment: %+v", detail)
	}

	dep, err := s.GetDepartmentDetail(ctx, "D1")
	if err != nil {
		t.Fatalf("get department detail failed: %v", err)
	}
	if dep.EmployeeCount != 2 {
		t.Fatalf("expected 2 members, got %d", dep.EmployeeCount)
	}
	if dep.ManagerCode != "E1" || dep.ManagerName != "Emp E1" {
		t.Fatalf("unexpected manager resolution: %+v", dep)
	}

	pos, err := s.GetPositionDetail(ctx, "P1")
	if err != nil {
		t.Fatalf("get position detail failed: %v", err)
	}
	if pos.AssigneeCount != 1 || len(pos.Assignees) != 1 || pos.Assignees[0].Code != "E2" {
		t.Fatalf("unexpected assignees: %+v", pos)
	}
}

func TestEnrichmentDegradesWhenReferenceMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDepartment(t, s, "D1")
	seedPosition(t, s, "P1", "Staff", "D1", 5)
	seedEmployee(t, s, "E1", "D1", "P1")

	// Purge the position out from under the employee.
	if err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		return tx.Put(CollectionPositions, []Position{})
	}); err != nil {
		t.Fatalf("purge positions failed: %v", err)
	}

	detail, err := s.GetEmployeeDetail(ctx, "E1")
	if err != nil {
		t.Fatalf("get detail failed: %v", err)
	}
	if detail.PositionName != "" {
		t.Fatalf("missing position must degrade to blank, got %q", detail.PositionName)
	}
	if detail.DepartmentName != "Dept D1" {
		t.Fatalf("department should still resolve, got %q", detail.DepartmentName)
	}
}

func TestListEmployeesIncludeDeletedFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		seedEmployee(t, s, fmt.Sprintf("E%d", i), "", "")
	}
	if err := s.SoftDeleteEmployee(ctx, "E2"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	visible, err := s.ListEmployees(ctx, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	all, err := s.ListEmployees(ctx, true)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(visible) != 2 || len(all) != 3 {
		t.Fatalf("expected 2 visible and 3 total, got %d and %d", len(visible), len(all))
	}
}
