package account

import (
	"context"
	"errors"
	"testing"

	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/directory"
	"erphrm/internal/domain/hrerr"
	"erphrm/internal/platform/kvstore"
)

func newTestStores(t *testing.T) (*Store, *directory.Store) {
	t.Helper()
	db := kvstore.New(kvstore.NewMemoryEngine())
	return NewStore(db), directory.NewStore(db)
}

func seedEmployee(t *testing.T, dir *directory.Store, code string) {
	t.Helper()
	if _, err := dir.CreateEmployee(context.Background(), directory.Employee{Code: code, Name: "Emp " + code}); err != nil {
		t.Fatalf("seed employee %s: %v", code, err)
	}
}

func TestCreateAccountHappyPath(t *testing.T) {
	accounts, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")

	created, err := accounts.Create(ctx, NewAccount{
		Username: "  Alice ", EmployeeCode: "emp01", Role: auth.RoleStaff, Password: "secret",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Username != "alice" {
		t.Fatalf("expected normalized username alice, got %q", created.Username)
	}
	if created.Status != StatusActive {
		t.Fatalf("expected Active, got %q", created.Status)
	}
	if created.PasswordHash != "" {
		t.Fatal("password hash must not leak through the detail projection")
	}
	if created.Employee == nil || created.Employee.Name != "Emp EMP01" {
		t.Fatalf("expected enriched employee, got %+v", created.Employee)
	}
}

func TestCreateAccountGuards(t *testing.T) {
	accounts, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")
	seedEmployee(t, dir, "EMP02")

	if _, err := accounts.Create(ctx, NewAccount{Username: "a", EmployeeCode: "EMP01", Role: "WIZARD", Password: "x"}); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("unknown role should be validation_error, got %v", err)
	}
	if _, err := accounts.Create(ctx, NewAccount{Username: "a", EmployeeCode: "NOPE", Role: auth.RoleStaff, Password: "x"}); !hrerr.IsKind(err, hrerr.InvalidEmployeeState) {
		t.Fatalf("unknown employee should be invalid_employee_state, got %v", err)
	}

	if err := dir.SoftDeleteEmployee(ctx, "EMP02"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := accounts.Create(ctx, NewAccount{Username: "a", EmployeeCode: "EMP02", Role: auth.RoleStaff, Password: "x"}); !hrerr.IsKind(err, hrerr.InvalidEmployeeState) {
		t.Fatalf("resigned employee should be invalid_employee_state, got %v", err)
	}
}

func TestUsernameUniquenessIsCaseInsensitiveAndSpansDeleted(t *testing.T) {
	accounts, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")
	seedEmployee(t, dir, "EMP02")

	if _, err := accounts.Create(ctx, NewAccount{Username: "alice", EmployeeCode: "EMP01", Role: auth.RoleStaff, Password: "x"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := accounts.Create(ctx, NewAccount{Username: "ALICE", EmployeeCode: "EMP02", Role: auth.RoleStaff, Password: "x"}); !hrerr.IsKind(err, hrerr.DuplicateKey) {
		t.Fatalf("expected duplicate_key, got %v", err)
	}

	if err := accounts.SoftDelete(ctx, "alice"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := accounts.Create(ctx, NewAccount{Username: "alice", EmployeeCode: "EMP02", Role: auth.RoleStaff, Password: "x"}); !hrerr.IsKind(err, hrerr.DuplicateKey) {
		t.Fatalf("deleted username must stay reserved, got %v", err)
	}
}

func TestOneAccountPerEmployee(t *testing.T) {
	accounts, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")

	if _, err := accounts.Create(ctx, NewAccount{Username: "a1", EmployeeCode: "EMP01", Role: auth.RoleStaff, Password: "x"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := accounts.Create(ctx, NewAccount{Username: "a2", EmployeeCode: "EMP01", Role: auth.RoleStaff, Password: "x"}); !hrerr.IsKind(err, hrerr.DuplicateAssignment) {
		t.Fatalf("expected duplicate_assignment, got %v", err)
	}

	// After deleting the first account the employee may get a new one.
	if err := accounts.SoftDelete(ctx, "a1"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := accounts.Create(ctx, NewAccount{Username: "a2", EmployeeCode: "EMP01", Role: auth.RoleStaff, Password: "x"}); err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}

	// Restoring the old account would break the one-to-one rule.
	if _, err := accounts.Restore(ctx, "a1"); !hrerr.IsKind(err, hrerr.DuplicateAssignment) {
		t.Fatalf("restore must re-check exclusivity, got %v", err)
	}
}

func TestUpdateAccountPatchesWithoutTouchingIdentity(t *testing.T) {
	accounts, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")
	if _, err := accounts.Create(ctx, NewAccount{Username: "alice", EmployeeCode: "EMP01", Role: auth.RoleStaff, Password: "x"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	role := auth.RoleHRManager
	status := StatusInactive
	updated, err := accounts.Update(ctx, "alice", Update{Role: &role, Status: &status})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Role != auth.RoleHRManager || updated.Status != StatusInactive {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Username != "alice" || updated.EmployeeCode != "EMP01" {
		t.Fatalf("identity fields must be immutable: %+v", updated)
	}
}

func TestAuthenticate(t *testing.T) {
	accounts, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")
	if _, err := accounts.Create(ctx, NewAccount{Username: "alice", EmployeeCode: "EMP01", Role: auth.RoleStaff, Password: "secret"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := accounts.Authenticate(ctx, "ALICE", "secret"); err != nil {
		t.Fatalf("login should be case-insensitive on username: %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	inactive := StatusInactive
	if _, err := accounts.Update(ctx, "alice", Update{Status: &inactive}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "alice", "secret"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	accounts, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")
	if _, err := accounts.Create(ctx, NewAccount{Username: "alice", EmployeeCode: "EMP01", Role: auth.RoleStaff, Password: "old"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := accounts.ResetPassword(ctx, "alice", "new"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "alice", "old"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "alice", "new"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	accounts, _ := newTestStores(t)
	ctx := context.Background()

	defaults := []NewAccount{
		{Username: "admin", Role: auth.RoleAdmin, Password: "123"},
		{Username: "hr", Role: auth.RoleHRManager, Password: "123"},
	}
	if err := accounts.Seed(ctx, defaults); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := accounts.Seed(ctx, defaults); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	list, err := accounts.List(ctx, true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 seeded accounts, got %d", len(list))
	}
}
