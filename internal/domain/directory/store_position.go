package directory

import (
	"context"
	"fmt"
	"time"

	"erphrm/internal/domain/hrerr"
	"erphrm/internal/platform/kvstore"
)

func (s *Store) ListPositions(ctx context.Context, includeDeleted bool) ([]Position, error) {
	var out []Position
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		list, err := loadPositions(tx)
		if err != nil {
			return err
		}
		for _, pos := range list {
			if includeDeleted || pos.Active() {
				out = append(out, pos)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) GetPosition(ctx context.Context, code string) (*Position, error) {
	var found *Position
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		list, err := loadPositions(tx)
		if err != nil {
			return err
		}
		if idx := findPosition(list, code); idx != -1 {
			pos := list[idx]
			found = &pos
		}
		return nil
	})
	return found, err
}

func (s *Store) PositionCodeExists(ctx context.Context, code string) (bool, error) {
	if NormalizeCode(code) == "" {
		return false, nil
	}
	pos, err := s.GetPosition(ctx, code)
	return pos != nil, err
}

func (s *Store) CreatePosition(ctx context.Context, pos Position) (*Position, error) {
	pos.Code = NormalizeCode(pos.Code)
	pos.Department = NormalizeCode(pos.Department)
	if pos.Code == "" {
		return nil, hrerr.E(hrerr.Validation, "code", "position code is required")
	}
	if !validPositionName(pos.Name) {
		return nil, hrerr.E(hrerr.Validation, "name", "invalid position name")
	}
	if pos.Department == "" {
		return nil, hrerr.E(hrerr.Validation, "department", "position department is required")
	}
	if pos.Capacity < 1 {
		return nil, hrerr.E(hrerr.Validation, "capacity", "capacity must be at least 1")
	}

	var created Position
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		if findPosition(positions, pos.Code) != -1 {
			return hrerr.E(hrerr.DuplicateKey, "code", "position code already exists")
		}
		departments, err := loadDepartments(tx)
		if err != nil {
			return err
		}
		depIdx := findDepartment(departments, pos.Department)
		if depIdx == -1 || !departments[depIdx].Active() {
			return hrerr.E(hrerr.NotFound, "department", "department does not exist")
		}
		pos.Status = PositionStatusActive
		pos.CreatedAt = time.Now().UTC()
		pos.UpdatedAt = nil
		pos.DeletedAt = nil
		created = pos
		return tx.Put(CollectionPositions, append(positions, pos))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePosition patches a position. The code and department are immutable.
// Capacity cannot drop below the current active assignee count, and renaming
// a position to the Manager label re-runs the single-manager rule.
func (s *Store) UpdatePosition(ctx context.Context, code string, patch PositionUpdate) (*Position, error) {
	var updated Position
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		idx := findPosition(positions, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "position not found")
		}
		pos := positions[idx]

		if patch.Name != nil {
			if !validPositionName(*patch.Name) {
				return hrerr.E(hrerr.Validation, "name", "invalid position name")
			}
			pos.Name = *patch.Name
		}
		applyString(&pos.Description, patch.Description)
		if patch.Capacity != nil {
			if *patch.Capacity < 1 {
				return hrerr.E(hrerr.Validation, "capacity", "capacity must be at least 1")
			}
			pos.Capacity = *patch.Capacity
		}
		if patch.Status != nil {
			switch *patch.Status {
			case PositionStatusActive, PositionStatusInactive:
				pos.Status = *patch.Status
			default:
				return hrerr.E(hrerr.Validation, "status", "invalid position status")
			}
		}

		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		assigned := countAssignees(employees, pos.Code, "")
		if assigned > pos.Capacity {
			return hrerr.E(hrerr.CapacityExceeded, "capacity",
				fmt.Sprintf("%d employees currently hold this position", assigned))
		}
		if patch.Name != nil && pos.Name == PositionNameManager && assigned > 0 {
			if assigned > 1 {
				return hrerr.E(hrerr.ManagerConflict, "name",
					"more than one active assignee for a manager position")
			}
			if err := managerRenameConflict(employees, positions, pos); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		pos.UpdatedAt = &now
		positions[idx] = pos
		updated = pos
		return tx.Put(CollectionPositions, positions)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) SoftDeletePosition(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		idx := findPosition(positions, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "position not found")
		}
		employees, err := loadEmployees(tx)
		if err != nil {
			return err
		}
		if countAssignees(employees, positions[idx].Code, "") > 0 {
			return hrerr.E(hrerr.DependentRecordsExist, "code",
				"position still has active assignees")
		}
		now := time.Now().UTC()
		positions[idx].DeletedAt = &now
		positions[idx].UpdatedAt = &now
		return tx.Put(CollectionPositions, positions)
	})
}

func (s *Store) RestorePosition(ctx context.Context, code string) (*Position, error) {
	var restored Position
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		idx := findPosition(positions, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "position not found")
		}
		now := time.Now().UTC()
		positions[idx].DeletedAt = nil
		positions[idx].UpdatedAt = &now
		restored = positions[idx]
		return tx.Put(CollectionPositions, positions)
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (s *Store) HardDeletePosition(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		positions, err := loadPositions(tx)
		if err != nil {
			return err
		}
		idx := findPosition(positions, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "code", "position not found")
		}
		return tx.Put(CollectionPositions, append(positions[:idx], positions[idx+1:]...))
	})
}

// managerRenameConflict checks whether the department already has its manager
// through a different position when pos takes the Manager name.
func managerRenameConflict(employees []Employee, positions []Position, pos Position) error {
	department := NormalizeCode(pos.Department)
	for _, emp := range employees {
		if !emp.Active() || NormalizeCode(emp.Department) != department || emp.Position == "" {
			continue
		}
		if NormalizeCode(emp.Position) == NormalizeCode(pos.Code) {
			continue
		}
		idx := findPosition(positions, emp.Position)
		if idx == -1 {
			continue
		}
		if positions[idx].Name == PositionNameManager {
			return hrerr.E(hrerr.ManagerConflict, "name",
				"department already has a manager: "+emp.Code)
		}
	}
	return nil
}
