package benefit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"erphrm/internal/domain/directory"
	"erphrm/internal/domain/hrerr"
	"erphrm/internal/platform/kvstore"
)

type Store struct {
	db *kvstore.Store
}

func NewStore(db *kvstore.Store) *Store {
	return &Store{db: db}
}

// AssignmentDetail resolves the benefit name and amount plus the employee
// display fields onto the raw assignment.
type AssignmentDetail struct {
	Assignment
	BenefitName string                     `json:"benefitName"`
	Amount      string                     `json:"amount"`
	Employee    *directory.EmployeeSummary `json:"employee"`
}

func loadBenefits(tx *kvstore.Tx) ([]Benefit, error) {
	var list []Benefit
	if err := tx.Get(Collection, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func loadAssignments(tx *kvstore.Tx) ([]Assignment, error) {
	var list []Assignment
	if err := tx.Get(AssignmentsCollection, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func findBenefit(list []Benefit, code string) int {
	target := directory.NormalizeCode(code)
	for i := range list {
		if directory.NormalizeCode(list[i].BenefitCode) == target {
			return i
		}
	}
	return -1
}

func findAssignment(list []Assignment, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) List(ctx context.Context, includeDeleted bool) ([]Benefit, error) {
	var out []Benefit
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		for _, b := range benefits {
			if !includeDeleted && !b.Active() {
				continue
			}
			out = append(out, b)
		}
		return nil
	})
	return out, err
}

func (s *Store) GetByCode(ctx context.Context, code string) (*Benefit, error) {
	var found *Benefit
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		if idx := findBenefit(benefits, code); idx != -1 {
			b := benefits[idx]
			found = &b
		}
		return nil
	})
	return found, err
}

func (s *Store) Create(ctx context.Context, b Benefit) (*Benefit, error) {
	b.BenefitCode = directory.NormalizeCode(b.BenefitCode)
	if b.BenefitCode == "" {
		return nil, hrerr.E(hrerr.Validation, "benefitCode", "benefit code is required")
	}
	if b.Name == "" {
		return nil, hrerr.E(hrerr.Validation, "name", "benefit name is required")
	}
	if b.Amount.IsNegative() {
		return nil, hrerr.E(hrerr.Validation, "amount", "amount cannot be negative")
	}

	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		if findBenefit(benefits, b.BenefitCode) != -1 {
			return hrerr.E(hrerr.DuplicateKey, "benefitCode", "benefit code already exists")
		}
		b.Status = StatusActive
		b.CreatedAt = time.Now().UTC()
		b.UpdatedAt = nil
		b.DeletedAt = nil
		return tx.Put(Collection, append(benefits, b))
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Update(ctx context.Context, code string, patch Update) (*Benefit, error) {
	var updated Benefit
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		idx := findBenefit(benefits, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "benefitCode", "benefit not found")
		}
		b := benefits[idx]
		if patch.Name != nil {
			if *patch.Name == "" {
				return hrerr.E(hrerr.Validation, "name", "benefit name is required")
			}
			b.Name = *patch.Name
		}
		if patch.Amount != nil {
			if patch.Amount.IsNegative() {
				return hrerr.E(hrerr.Validation, "amount", "amount cannot be negative")
			}
			b.Amount = *patch.Amount
		}
		if patch.Description != nil {
			b.Description = *patch.Description
		}
		if patch.Status != nil {
			if *patch.Status != StatusActive && *patch.Status != StatusInactive {
				return hrerr.E(hrerr.Validation, "status", "invalid benefit status")
			}
			b.Status = *patch.Status
		}
		now := time.Now().UTC()
		b.UpdatedAt = &now
		benefits[idx] = b
		updated = b
		return tx.Put(Collection, benefits)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SoftDelete retires a catalog entry. Its assignments are guarded: a benefit
// with live assignments cannot be removed.
func (s *Store) SoftDelete(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		idx := findBenefit(benefits, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "benefitCode", "benefit not found")
		}
		assignments, err := loadAssignments(tx)
		if err != nil {
			return err
		}
		target := directory.NormalizeCode(code)
		for _, a := range assignments {
			if a.Active() && directory.NormalizeCode(a.BenefitCode) == target {
				return hrerr.E(hrerr.DependentRecordsExist, "benefitCode",
					"benefit still has active assignments")
			}
		}
		now := time.Now().UTC()
		benefits[idx].Status = StatusInactive
		benefits[idx].DeletedAt = &now
		return tx.Put(Collection, benefits)
	})
}

func (s *Store) Restore(ctx context.Context, code string) (*Benefit, error) {
	var restored Benefit
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		idx := findBenefit(benefits, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "benefitCode", "benefit not found")
		}
		now := time.Now().UTC()
		benefits[idx].Status = StatusActive
		benefits[idx].DeletedAt = nil
		benefits[idx].UpdatedAt = &now
		restored = benefits[idx]
		return tx.Put(Collection, benefits)
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (s *Store) HardDelete(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		idx := findBenefit(benefits, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "benefitCode", "benefit not found")
		}
		return tx.Put(Collection, append(benefits[:idx], benefits[idx+1:]...))
	})
}

func enrichAssignment(tx *kvstore.Tx, benefits []Benefit, a Assignment) (AssignmentDetail, error) {
	detail := AssignmentDetail{Assignment: a}
	if idx := findBenefit(benefits, a.BenefitCode); idx != -1 {
		detail.BenefitName = benefits[idx].Name
		detail.Amount = benefits[idx].Amount.String()
	}
	var employees []directory.Employee
	if err := tx.Get(directory.CollectionEmployees, &employees); err != nil {
		return detail, err
	}
	var departments []directory.Department
	if err := tx.Get(directory.CollectionDepartments, &departments); err != nil {
		return detail, err
	}
	var positions []directory.Position
	if err := tx.Get(directory.CollectionPositions, &positions); err != nil {
		return detail, err
	}
	detail.Employee = directory.SummarizeEmployee(employees, departments, positions, a.EmployeeCode)
	return detail, nil
}

func (s *Store) ListAssignments(ctx context.Context, includeDeleted bool) ([]AssignmentDetail, error) {
	var out []AssignmentDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		assignments, err := loadAssignments(tx)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if !includeDeleted && !a.Active() {
				continue
			}
			detail, err := enrichAssignment(tx, benefits, a)
			if err != nil {
				return err
			}
			out = append(out, detail)
		}
		return nil
	})
	return out, err
}

func (s *Store) GetAssignment(ctx context.Context, id string) (*AssignmentDetail, error) {
	var found *AssignmentDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		assignments, err := loadAssignments(tx)
		if err != nil {
			return err
		}
		idx := findAssignment(assignments, id)
		if idx == -1 {
			return nil
		}
		detail, err := enrichAssignment(tx, benefits, assignments[idx])
		if err != nil {
			return err
		}
		found = &detail
		return nil
	})
	return found, err
}

// Assign grants a benefit to an employee. Both sides must be live, the
// employee must be working, and the same pair cannot be granted twice.
func (s *Store) Assign(ctx context.Context, a Assignment) (*AssignmentDetail, error) {
	a.BenefitCode = directory.NormalizeCode(a.BenefitCode)
	a.EmployeeCode = directory.NormalizeCode(a.EmployeeCode)
	if a.BenefitCode == "" {
		return nil, hrerr.E(hrerr.Validation, "benefitCode", "a benefit must be selected")
	}
	if a.EmployeeCode == "" {
		return nil, hrerr.E(hrerr.Validation, "employeeCode", "an employee must be selected")
	}

	var created AssignmentDetail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		bIdx := findBenefit(benefits, a.BenefitCode)
		if bIdx == -1 || !benefits[bIdx].Active() {
			return hrerr.E(hrerr.NotFound, "benefitCode", "benefit not found")
		}
		if benefits[bIdx].Status != StatusActive {
			return hrerr.E(hrerr.Validation, "benefitCode", "benefit is inactive")
		}

		var employees []directory.Employee
		if err := tx.Get(directory.CollectionEmployees, &employees); err != nil {
			return err
		}
		if err := requireWorkingEmployee(employees, a.EmployeeCode); err != nil {
			return err
		}

		assignments, err := loadAssignments(tx)
		if err != nil {
			return err
		}
		for _, existing := range assignments {
			if !existing.Active() {
				continue
			}
			if directory.NormalizeCode(existing.BenefitCode) == a.BenefitCode &&
				directory.NormalizeCode(existing.EmployeeCode) == a.EmployeeCode {
				return hrerr.E(hrerr.DuplicateAssignment, "benefitCode",
					"employee already has this benefit")
			}
		}

		a.ID = uuid.NewString()
		a.AssignedAt = time.Now().UTC()
		a.UpdatedAt = nil
		a.DeletedAt = nil
		if err := tx.Put(AssignmentsCollection, append(assignments, a)); err != nil {
			return err
		}
		created, err = enrichAssignment(tx, benefits, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) RevokeAssignment(ctx context.Context, id string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		assignments, err := loadAssignments(tx)
		if err != nil {
			return err
		}
		idx := findAssignment(assignments, id)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "id", "benefit assignment not found")
		}
		now := time.Now().UTC()
		assignments[idx].DeletedAt = &now
		return tx.Put(AssignmentsCollection, assignments)
	})
}

// RestoreAssignment re-grants a revoked assignment after re-checking that the
// pair has not been granted again in the meantime.
func (s *Store) RestoreAssignment(ctx context.Context, id string) (*AssignmentDetail, error) {
	var restored AssignmentDetail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		assignments, err := loadAssignments(tx)
		if err != nil {
			return err
		}
		idx := findAssignment(assignments, id)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "id", "benefit assignment not found")
		}
		a := assignments[idx]
		for i, existing := range assignments {
			if i == idx || !existing.Active() {
				continue
			}
			if directory.NormalizeCode(existing.BenefitCode) == directory.NormalizeCode(a.BenefitCode) &&
				directory.NormalizeCode(existing.EmployeeCode) == directory.NormalizeCode(a.EmployeeCode) {
				return hrerr.E(hrerr.DuplicateAssignment, "benefitCode",
					"employee already has this benefit")
			}
		}
		now := time.Now().UTC()
		assignments[idx].DeletedAt = nil
		assignments[idx].UpdatedAt = &now

		benefits, err := loadBenefits(tx)
		if err != nil {
			return err
		}
		restored, err = enrichAssignment(tx, benefits, assignments[idx])
		if err != nil {
			return err
		}
		return tx.Put(AssignmentsCollection, assignments)
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (s *Store) HardDeleteAssignment(ctx context.Context, id string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		assignments, err := loadAssignments(tx)
		if err != nil {
			return err
		}
		idx := findAssignment(assignments, id)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "id", "benefit assignment not found")
		}
		return tx.Put(AssignmentsCollection, append(assignments[:idx], assignments[idx+1:]...))
	})
}

func requireWorkingEmployee(employees []directory.Employee, code string) error {
	target := directory.NormalizeCode(code)
	for i := range employees {
		if directory.NormalizeCode(employees[i].Code) != target {
			continue
		}
		if employees[i].Active() && employees[i].Status == directory.EmployeeStatusWorking {
			return nil
		}
		break
	}
	return hrerr.E(hrerr.InvalidEmployeeState, "employeeCode",
		"benefits can only be assigned to working employees")
}
