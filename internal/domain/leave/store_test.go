package leave

import (
	"context"
	"testing"
	"time"

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

func annual(employee, from, to string) Request {
	return Request{EmployeeCode: employee, LeaveType: TypeAnnual, FromDate: from, ToDate: to}
}

func TestCreateLeaveRequest(t *testing.T) {
	leaves, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")

	created, err := leaves.Create(ctx, annual("emp01", "2025-03-10", "2025-03-12"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Status != StatusPending {
		t.Fatalf("expected Pending, got %q", created.Status)
	}
	if created.Employee == nil || created.Employee.Name != "Emp EMP01" {
		t.Fatalf("expected enriched employee, got %+v", created.Employee)
	}
}

func TestCreateLeaveValidation(t *testing.T) {
	leaves, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")

	if _, err := leaves.Create(ctx, annual("EMP01", "2025-03-12", "2025-03-10")); !hrerr.IsKind(err, hrerr.InvalidRange) {
		t.Fatalf("reversed range should be invalid_range, got %v", err)
	}
	if _, err := leaves.Create(ctx, Request{EmployeeCode: "EMP01", LeaveType: "Sabbatical", FromDate: "2025-03-10", ToDate: "2025-03-12"}); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("unknown type should be validation_error, got %v", err)
	}
	if _, err := leaves.Create(ctx, annual("EMP01", "not-a-date", "2025-03-12")); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("bad date should be validation_error, got %v", err)
	}

	if err := dir.SoftDeleteEmployee(ctx, "EMP01"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := leaves.Create(ctx, annual("EMP01", "2025-03-10", "2025-03-12")); !hrerr.IsKind(err, hrerr.InvalidEmployeeState) {
		t.Fatalf("resigned employee should be invalid_employee_state, got %v", err)
	}
}

func TestUpdateRevalidatesRange(t *testing.T) {
	leaves, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")

	created, err := leaves.Create(ctx, annual("EMP01", "2025-03-10", "2025-03-12"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	bad := "2025-03-01"
	if _, err := leaves.Update(ctx, created.ID, Update{ToDate: &bad}); !hrerr.IsKind(err, hrerr.InvalidRange) {
		t.Fatalf("shrinking past fromDate should be invalid_range, got %v", err)
	}

	// Moving both endpoints together is fine.
	from, to := "2025-04-01", "2025-04-03"
	updated, err := leaves.Update(ctx, created.ID, Update{FromDate: &from, ToDate: &to})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.FromDate != from || updated.ToDate != to {
		t.Fatalf("patch not applied: %+v", updated.Request)
	}
}

func TestDecisionsAreTerminal(t *testing.T) {
	leaves, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")

	created, err := leaves.Create(ctx, annual("EMP01", "2025-03-10", "2025-03-12"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	approved, err := leaves.Approve(ctx, created.ID, "hr")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != StatusApproved || approved.ApprovedBy != "hr" || approved.ApprovedAt == nil {
		t.Fatalf("approval not recorded: %+v", approved.Request)
	}

	if _, err := leaves.Reject(ctx, created.ID, "hr", "changed my mind"); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("re-deciding must fail, got %v", err)
	}
	newTo := "2025-03-20"
	if _, err := leaves.Update(ctx, created.ID, Update{ToDate: &newTo}); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("editing a decided request must fail, got %v", err)
	}
}

func TestRejectRecordsReason(t *testing.T) {
	leaves, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")

	created, err := leaves.Create(ctx, annual("EMP01", "2025-03-10", "2025-03-12"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	rejected, err := leaves.Reject(ctx, created.ID, "hr", "coverage gap")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != StatusRejected || rejected.RejectReason != "coverage gap" {
		t.Fatalf("rejection not recorded: %+v", rejected.Request)
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	leaves, dir := newTestStores(t)
	ctx := context.Background()
	seedEmployee(t, dir, "EMP01")

	created, err := leaves.Create(ctx, annual("EMP01", "2025-03-10", "2025-03-12"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := leaves.SoftDelete(ctx, created.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	visible, err := leaves.List(ctx, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("deleted request must be hidden, got %d", len(visible))
	}

	restored, err := leaves.Restore(ctx, created.ID)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Fatalf("expected live request, got %+v", restored.Request)
	}
}

func TestSpans(t *testing.T) {
	r := Request{FromDate: "2025-03-10", ToDate: "2025-03-12"}

	within := time.Date(2025, 3, 11, 15, 30, 0, 0, time.UTC)
	if !r.Spans(within) {
		t.Fatal("expected day inside range to span")
	}
	first := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !r.Spans(first) {
		t.Fatal("range is inclusive of the first day")
	}
	after := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	if r.Spans(after) {
		t.Fatal("day after range must not span")
	}
}
