package directory

import (
	"context"

	"erphrm/internal/platform/kvstore"
)

// Enriched projections are recomputed on every read and never persisted.
// Missing foreign references degrade to blank display values.

type EmployeeDetail struct {
	Employee
	DepartmentName string `json:"departmentName,omitempty"`
	PositionName   string `json:"positionName,omitempty"`
}

type DepartmentDetail struct {
	Department
	EmployeeCount int    `json:"employeeCount"`
	ManagerCode   string `json:"managerCode,omitempty"`
	ManagerName   string `json:"managerName,omitempty"`
}

type PositionDetail struct {
	Position
	DepartmentName string     `json:"departmentName,omitempty"`
	AssigneeCount  int        `json:"assigneeCount"`
	Assignees      []Employee `json:"assignees"`
}

// EnrichEmployee resolves department and position names onto a copy of emp.
func EnrichEmployee(emp Employee, departments []Department, positions []Position) EmployeeDetail {
	detail := EmployeeDetail{Employee: emp}
	if emp.Department != "" {
		if idx := findDepartment(departments, emp.Department); idx != -1 {
			detail.DepartmentName = departments[idx].Name
		}
	}
	if emp.Position != "" {
		if idx := findPosition(positions, emp.Position); idx != -1 {
			detail.PositionName = positions[idx].Name
		}
	}
	return detail
}

// EnrichDepartment derives the member count and the manager, the active
// employee holding a Manager-named position in the department.
func EnrichDepartment(dep Department, employees []Employee, positions []Position) DepartmentDetail {
	detail := DepartmentDetail{Department: dep}
	target := NormalizeCode(dep.Code)
	for _, emp := range employees {
		if !emp.Active() || NormalizeCode(emp.Department) != target {
			continue
		}
		detail.EmployeeCount++
		if emp.Position == "" || detail.ManagerCode != "" {
			continue
		}
		if idx := findPosition(positions, emp.Position); idx != -1 && positions[idx].Name == PositionNameManager {
			detail.ManagerCode = emp.Code
			detail.ManagerName = emp.Name
		}
	}
	return detail
}

// EnrichPosition attaches the live assignee list and the department name.
func EnrichPosition(pos Position, employees []Employee, departments []Department) PositionDetail {
	detail := PositionDetail{Position: pos, Assignees: []Employee{}}
	target := NormalizeCode(pos.Code)
	for _, emp := range employees {
		if emp.Active() && NormalizeCode(emp.Position) == target {
			detail.Assignees = append(detail.Assignees, emp)
		}
	}
	detail.AssigneeCount = len(detail.Assignees)
	if idx := findDepartment(departments, pos.Department); idx != -1 {
		detail.DepartmentName = departments[idx].Name
	}
	return detail
}

func (s *Store) ListEmployeeDetails(ctx context.Context, includeDeleted bool) ([]EmployeeDetail, error) {
	var out []EmployeeDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		for _, emp := range employees {
			if includeDeleted || emp.Active() {
				out = append(out, EnrichEmployee(emp, departments, positions))
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) GetEmployeeDetail(ctx context.Context, code string) (*EmployeeDetail, error) {
	var found *EmployeeDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		idx := findEmployee(employees, code)
		if idx == -1 {
			return nil
		}
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		detail := EnrichEmployee(employees[idx], departments, positions)
		found = &detail
		return nil
	})
	return found, err
}

func (s *Store) ListDepartmentDetails(ctx context.Context, includeDeleted bool) ([]DepartmentDetail, error) {
	var out []DepartmentDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		for _, dep := range departments {
			if includeDeleted || dep.Active() {
				out = append(out, EnrichDepartment(dep, employees, positions))
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) GetDepartmentDetail(ctx context.Context, code string) (*DepartmentDetail, error) {
	var found *DepartmentDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		idx := findDepartment(departments, code)
		if idx == -1 {
			return nil
		}
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		detail := EnrichDepartment(departments[idx], employees, positions)
		found = &detail
		return nil
	})
	return found, err
}

func (s *Store) ListPositionDetails(ctx context.Context, includeDeleted bool) ([]PositionDetail, error) {
	var out []PositionDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		for _, pos := range positions {
			if includeDeleted || pos.Active() {
				out = append(out, EnrichPosition(pos, employees, departments))
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) GetPositionDetail(ctx context.Context, code string) (*PositionDetail, error) {
	var found *PositionDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		idx := findPosition(positions, code)
		if idx == -1 {
			return nil
		}
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		detail := EnrichPosition(positions[idx], employees, departments)
		found = &detail
		return nil
	})
	return found, err
}

// EmployeeSummary is the display shape other domains attach to their records.
type EmployeeSummary struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	DepartmentCode string `json:"departmentCode,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
	PositionCode   string `json:"positionCode,omitempty"`
	PositionName   string `json:"positionName,omitempty"`
}

// SummarizeEmployee builds the cross-domain display projection for code, or
// nil when the employee is unknown.
func SummarizeEmployee(employees []Employee, departments []Department, positions []Position, code string) *EmployeeSummary {
	idx := findEmployee(employees, code)
	if idx == -1 {
		return nil
	}
	emp := employees[idx]
	summary := &EmployeeSummary{
		Code:           emp.Code,
		Name:           emp.Name,
		Email:          emp.Email,
		DepartmentCode: emp.Department,
		PositionCode:   emp.Position,
		DepartmentName: emp.Department,
		PositionName:   emp.Position,
	}
	if emp.Department != "" {
		if i := findDepartment(departments, emp.Department); i != -1 {
			summary.DepartmentName = departments[i].Name
		}
	}
	if emp.Position != "" {
		if i := findPosition(positions, emp.Position); i != -1 {
			summary.PositionName = positions[i].Name
		}
	}
	return summary
}
