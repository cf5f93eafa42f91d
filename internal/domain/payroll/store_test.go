package payroll

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"erphrm/internal/domain/contract"
	"erphrm/internal/domain/directory"
	"erphrm/internal/domain/hrerr"
	"erphrm/internal/platform/kvstore"
)

func newTestStores(t *testing.T) (*Store, *directory.Store, *contract.Store) {
	t.Helper()
	db := kvstore.New(kvstore.NewMemoryEngine())
	return NewStore(db), directory.NewStore(db), contract.NewStore(db)
}

func seedWorkforce(t *testing.T, dir *directory.Store, contracts *contract.Store) {
	t.Helper()
	ctx := context.Background()
	for _, code := range []string{"EMP01", "EMP02"} {
		if _, err := dir.CreateEmployee(ctx, directory.Employee{Code: code, Name: "Emp " + code}); err != nil {
			t.Fatalf("seed employee %s: %v", code, err)
		}
	}
	_, err := contracts.Create(ctx, contract.Contract{
		ContractCode: "CT01",
		EmployeeCode: "EMP01",
		ContractType: contract.TypeIndefinite,
		StartDate:    "2025-01-01",
		Salary:       decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("seed contract: %v", err)
	}
}

func TestGenerate(t *testing.T) {
	payrolls, dir, contracts := newTestStores(t)
	ctx := context.Background()
	seedWorkforce(t, dir, contracts)

	period, err := payrolls.Generate(ctx, "2025-06")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if period.ID != "PR-2025-06" || period.Status != StatusDraft {
		t.Fatalf("unexpected period: %+v", period)
	}
	if len(period.Items) != 2 {
		t.Fatalf("expected one line per working employee, got %d", len(period.Items))
	}

	byCode := map[string]PayslipLine{}
	for _, line := range period.Items {
		byCode[line.EmployeeCode] = line
	}
	if !byCode["EMP01"].BaseSalary.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected contract salary on EMP01, got %s", byCode["EMP01"].BaseSalary)
	}
	if !byCode["EMP02"].BaseSalary.IsZero() {
		t.Fatalf("employee without contract should start at zero, got %s", byCode["EMP02"].BaseSalary)
	}

	if _, err := payrolls.Generate(ctx, "2025-06"); !hrerr.IsKind(err, hrerr.DuplicateKey) {
		t.Fatalf("same period twice should be duplicate_key, got %v", err)
	}
	if _, err := payrolls.Generate(ctx, "June 2025"); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("malformed period should be validation_error, got %v", err)
	}
}

func TestGenerateSkipsResignedEmployees(t *testing.T) {
	payrolls, dir, contracts := newTestStores(t)
	ctx := context.Background()
	seedWorkforce(t, dir, contracts)
	if err := dir.SoftDeleteEmployee(ctx, "EMP02"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	period, err := payrolls.Generate(ctx, "2025-06")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(period.Items) != 1 || period.Items[0].EmployeeCode != "EMP01" {
		t.Fatalf("resigned employee must be skipped, got %+v", period.Items)
	}
}

func TestNetPayComputation(t *testing.T) {
	line := PayslipLine{
		BaseSalary: decimal.NewFromInt(1000),
		Allowance:  decimal.NewFromInt(200),
		Bonus:      decimal.NewFromInt(50),
		Deduction:  decimal.NewFromInt(30),
		Insurance:  decimal.NewFromInt(80),
		Tax:        decimal.NewFromInt(100),
	}
	line.ComputeNetPay()
	if !line.NetPay.Equal(decimal.NewFromInt(1040)) {
		t.Fatalf("expected 1040, got %s", line.NetPay)
	}
}

func TestUpdateItemsRecomputesNetPay(t *testing.T) {
	payrolls, dir, contracts := newTestStores(t)
	ctx := context.Background()
	seedWorkforce(t, dir, contracts)
	if _, err := payrolls.Generate(ctx, "2025-06"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	bonus := decimal.NewFromInt(500)
	tax := decimal.NewFromInt(150)
	updated, err := payrolls.UpdateItems(ctx, "2025-06", []LinePatch{
		{EmployeeCode: "emp01", Bonus: &bonus, Tax: &tax},
	})
	if err != nil {
		t.Fatalf("update items failed: %v", err)
	}

	for _, line := range updated.Items {
		if line.EmployeeCode != "EMP01" {
			continue
		}
		want := decimal.NewFromInt(1350)
		if !line.NetPay.Equal(want) {
			t.Fatalf("expected net pay %s, got %s", want, line.NetPay)
		}
		return
	}
	t.Fatal("EMP01 line missing")
}

func TestLifecycleIsMonotonic(t *testing.T) {
	payrolls, dir, contracts := newTestStores(t)
	ctx := context.Background()
	seedWorkforce(t, dir, contracts)
	if _, err := payrolls.Generate(ctx, "2025-06"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// Closing a draft skips a step.
	if _, err := payrolls.Close(ctx, "2025-06"); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("closing a draft must fail, got %v", err)
	}

	approved, err := payrolls.Approve(ctx, "2025-06", "finance")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != StatusApproved || approved.ApprovedBy != "finance" {
		t.Fatalf("approval not recorded: %+v", approved)
	}
	if _, err := payrolls.Approve(ctx, "2025-06", "finance"); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("double approval must fail, got %v", err)
	}

	closed, err := payrolls.Close(ctx, "2025-06")
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Status != StatusClosed || closed.ClosedAt == nil {
		t.Fatalf("close not recorded: %+v", closed)
	}

	bonus := decimal.NewFromInt(1)
	if _, err := payrolls.UpdateItems(ctx, "2025-06", []LinePatch{{EmployeeCode: "EMP01", Bonus: &bonus}}); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("closed period must be immutable, got %v", err)
	}
	if err := payrolls.Delete(ctx, "2025-06"); !hrerr.IsKind(err, hrerr.Validation) {
		t.Fatalf("closed period must not be deletable, got %v", err)
	}
}
