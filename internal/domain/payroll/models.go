package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

const Collection = "PAYROLLS"

const (
	StatusDraft    = "Draft"
	StatusApproved = "Approved"
	StatusClosed   = "Closed"
)

// PayslipLine is one employee's row in a payroll period.
type PayslipLine struct {
	EmployeeCode   string          `json:"employeeCode"`
	EmployeeName   string          `json:"employeeName"`
	DepartmentName string          `json:"departmentName,omitempty"`
	BaseSalary     decimal.Decimal `json:"baseSalary"`
	Allowance      decimal.Decimal `json:"allowance"`
	Bonus          decimal.Decimal `json:"bonus"`
	Deduction      decimal.Decimal `json:"deduction"`
	Insurance      decimal.Decimal `json:"insurance"`
	Tax            decimal.Decimal `json:"tax"`
	NetPay         decimal.Decimal `json:"netPay"`
}

// ComputeNetPay recalculates the line's net pay from its components.
func (l *PayslipLine) ComputeNetPay() {
	l.NetPay = l.BaseSalary.
		Add(l.Allowance).
		Add(l.Bonus).
		Sub(l.Deduction).
		Sub(l.Insurance).
		Sub(l.Tax)
}

// Period is one payroll run, identified by its YYYY-MM period string.
type Period struct {
	ID         string        `json:"id"`
	Period     string        `json:"period"`
	Status     string        `json:"status"`
	Items      []PayslipLine `json:"items"`
	ApprovedBy string        `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time    `json:"approvedAt"`
	ClosedAt   *time.Time    `json:"closedAt"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  *time.Time    `json:"updatedAt"`
}

// LinePatch updates the adjustable components of one payslip line. Net pay
// is always recomputed, never accepted from the caller.
type LinePatch struct {
	EmployeeCode string           `json:"employeeCode"`
	Allowance    *decimal.Decimal `json:"allowance,omitempty"`
	Bonus        *decimal.Decimal `json:"bonus,omitempty"`
	Deduction    *decimal.Decimal `json:"deduction,omitempty"`
	Insurance    *decimal.Decimal `json:"insurance,omitempty"`
	Tax          *decimal.Decimal `json:"tax,omitempty"`
}
