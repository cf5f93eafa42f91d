package directory

import (
	"context"
	"time"

	"erphrm/internal/domain/hrerr"
	"erphrm/internal/platform/kvstore"
)

func (s *Store) ListEmployees(ctx context.Context, includeDeleted bool) ([]Employee, error) {
	var out []Employee
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		list, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		for _, emp := range list {
			if includeDeleted || emp.Active() {
				out = append(out, emp)
			}
		}
		return nil
	})
	return out, err
}

// GetEmployee returns nil when no record carries the code.
func (s *Store) GetEmployee(ctx context.Context, code string) (*Employee, error) {
	var found *Employee
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		list, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		if idx := findEmployee(list, code); idx != -1 {
			emp := list[idx]
			found = &emp
		}
		return nil
	})
	return found, err
}

func (s *Store) EmployeeCodeExists(ctx context.Context, code string) (bool, error) {
	if NormalizeCode(code) == "" {
		return false, nil
	}
	emp, err := s.GetEmployee(ctx, code)
	return emp != nil, err
}

func (s *Store) CreateEmployee(ctx context.Context, emp Employee) (*Employee, error) {
	emp.Code = NormalizeCode(emp.Code)
	if emp.Code == "" {
		return nil, hrerr.E(hrerr.Validation, "code", "employee code is required")
	}
	if emp.Name == "" {
		return nil, hrerr.E(hrerr.Validation, "name", "employee name is required")
	}
	emp.Department = NormalizeCode(emp.Department)
	emp.Position = NormalizeCode(emp.Position)

	var created Employee
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		// Soft-deleted keys stay reserved: the scan includes every record.
		if findEmployee(employees, emp.Code) != -1 {
			return hrerr.E(hrerr.DuplicateKey, "code", "employee code already exists")
		}
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		if err := validateAssignment(employees, departments, positions, emp.Department, emp.Position, emp.Code); err != nil {
			return err
		}

		emp.Status = EmployeeStatusWorking
		emp.CreatedAt = time.Now().UTC()
		emp.UpdatedAt = nil
		emp.DeletedAt = nil
		emp.ResignedAt = nil
		created = emp
		return tx.Put(CollectionEmployees, append(employees, emp))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, code string, patch EmployeeUpdate) (*Employee, error) {
	var updated Employee
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		idx := findEmployee(employees, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "employee not found")
		}
		emp := employees[idx]

		applyString(&emp.Name, patch.Name)
		applyString(&emp.Gender, patch.Gender)
		applyString(&emp.DateOfBirth, patch.DateOfBirth)
		applyString(&emp.Hometown, patch.Hometown)
		applyString(&emp.NationalID, patch.NationalID)
		applyString(&emp.Email, patch.Email)
		applyString(&emp.Phone, patch.Phone)
		applyString(&emp.BankAccount, patch.BankAccount)
		applyString(&emp.BankAccountName, patch.BankAccountName)
		applyString(&emp.JoinDate, patch.JoinDate)
		applyString(&emp.CVURL, patch.CVURL)
		applyString(&emp.HealthCertURL, patch.HealthCertURL)
		applyString(&emp.DegreeURL, patch.DegreeURL)
		applyString(&emp.ContractURL, patch.ContractURL)
		if patch.Department != nil {
			emp.Department = NormalizeCode(*patch.Department)
		}
		if patch.Position != nil {
			emp.Position = NormalizeCode(*patch.Position)
		}
		if patch.Status != nil {
			switch *patch.Status {
			case EmployeeStatusWorking, EmployeeStatusResigned:
				emp.Status = *patch.Status
			default:
				return hrerr.E(hrerr.Validation, "status", "invalid employee status")
			}
		}
		// A resigned employee holds no assignment.
		if emp.Status == EmployeeStatusResigned {
			emp.Department = ""
			emp.Position = ""
		}

		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		if err := validateAssignment(employees, departments, positions, emp.Department, emp.Position, emp.Code); err != nil {
			return err
		}

		now := time.Now().UTC()
		emp.UpdatedAt = &now
		employees[idx] = emp
		updated = emp
		return tx.Put(CollectionEmployees, employees)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SoftDeleteEmployee resigns the employee: deletedAt and resignedAt set,
// status flipped, assignment cleared so derived counts drop immediately.
func (s *Store) SoftDeleteEmployee(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		idx := findEmployee(employees, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "employee not found")
		}
		now := time.Now().UTC()
		employees[idx].DeletedAt = &now
		employees[idx].ResignedAt = &now
		employees[idx].UpdatedAt = &now
		employees[idx].Status = EmployeeStatusResigned
		employees[idx].Department = ""
		employees[idx].Position = ""
		return tx.Put(CollectionEmployees, employees)
	})
}

// RestoreEmployee reactivates a soft-deleted record. Department and position
// stay cleared; the caller re-assigns through UpdateEmployee so the capacity
// and manager validators run against current state.
func (s *Store) RestoreEmployee(ctx context.Context, code string) (*Employee, error) {
	var restored Employee
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		idx := findEmployee(employees, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "employee not found")
		}
		now := time.Now().UTC()
		employees[idx].DeletedAt = nil
		employees[idx].ResignedAt = nil
		employees[idx].Status = EmployeeStatusWorking
		employees[idx].Department = ""
		employees[idx].Position = ""
		employees[idx].UpdatedAt = &now
		restored = employees[idx]
		return tx.Put(CollectionEmployees, employees)
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

// HardDeleteEmployee removes the record outright. Trash-view only.
func (s *Store) HardDeleteEmployee(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		idx := findEmployee(employees, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "employee not found")
		}
		return tx.Put(CollectionEmployees, append(employees[:idx], employees[idx+1:]...))
	})
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
