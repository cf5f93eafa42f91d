package directory

import (
	"context"
	"time"

	"erphrm/internal/domain/hrerr"
	"erphrm/internal/platform/kvstore"
)

func (s *Store) ListDepartments(ctx context.Context, includeDeleted bool) ([]Department, error) {
	var out []Department
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		list, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		for _, dep := range list {
			if includeDeleted || dep.Active() {
				out = append(out, dep)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) GetDepartment(ctx context.Context, code string) (*Department, error) {
	var found *Department
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		list, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		if idx := findDepartment(list, code); idx != -1 {
			dep := list[idx]
			found = &dep
		}
		return nil
	})
	return found, err
}

func (s *Store) DepartmentCodeExists(ctx context.Context, code string) (bool, error) {
	if NormalizeCode(code) == "" {
		return false, nil
	}
	dep, err := s.GetDepartment(ctx, code)
	return dep != nil, err
}

func (s *Store) CreateDepartment(ctx context.Context, dep Department) (*Department, error) {
	dep.Code = NormalizeCode(dep.Code)
	if dep.Code == "" {
		return nil, hrerr.E(hrerr.Validation, "code", "department code is required")
	}
	if dep.Name == "" {
		return nil, hrerr.E(hrerr.Validation, "name", "department name is required")
	}

	var created Department
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		if findDepartment(departments, dep.Code) != -1 {
			return hrerr.E(hrerr.DuplicateKey, "code", "department code already exists")
		}
		dep.Status = DepartmentStatusActive
		dep.CreatedAt = time.Now().UTC()
		dep.UpdatedAt = nil
		dep.DeletedAt = nil
		created = dep
		return tx.Put(CollectionDepartments, append(departments, dep))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, code string, patch DepartmentUpdate) (*Department, error) {
	var updated Department
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		idx := findDepartment(departments, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "department not found")
		}
		dep := departments[idx]

		applyString(&dep.Name, patch.Name)
		applyString(&dep.Description, patch.Description)
		if patch.Status != nil {
			switch *patch.Status {
			case DepartmentStatusActive:
				dep.Status = DepartmentStatusActive
			case DepartmentStatusInactive:
				employees, err := loadEmployees(tx)
				if err != nil {
					return err
				}
				if countDepartmentMembers(employees, dep.Code) > 0 {
					return hrerr.E(hrerr.DependentRecordsExist, "status",
						"department still has active employees")
				}
				dep.Status = DepartmentStatusInactive
			default:
				return hrerr.E(hrerr.Validation, "status", "invalid department status")
			}
		}

		now := time.Now().UTC()
		dep.UpdatedAt = &now
		departments[idx] = dep
		updated = dep
		return tx.Put(CollectionDepartments, departments)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) SoftDeleteDepartment(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		idx := findDepartment(departments, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "department not found")
		}
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		if countDepartmentMembers(employees, departments[idx].Code) > 0 {
			return hrerr.E(hrerr.DependentRecordsExist, "code",
				"department still has active employees")
		}
		now := time.Now().UTC()
		departments[idx].DeletedAt = &now
		departments[idx].UpdatedAt = &now
		return tx.Put(CollectionDepartments, departments)
	})
}

func (s *Store) RestoreDepartment(ctx context.Context, code string) (*Department, error) {
	var restored Department
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		idx := findDepartment(departments, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "department not found")
		}
		now := time.Now().UTC()
		departments[idx].DeletedAt = nil
		departments[idx].UpdatedAt = &now
		restored = departments[idx]
		return tx.Put(CollectionDepartments, departments)
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (s *Store) HardDeleteDepartment(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		idx := findDepartment(departments, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "department not found")
		}
		return tx.Put(CollectionDepartments, append(departments[:idx], departments[idx+1:]...))
	})
}
