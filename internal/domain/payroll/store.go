package payroll

import (
	"context"
	"time"

	"erphrm/internal/domain/contract"
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

func loadPeriods(tx *kvstore.Tx) ([]Period, error) {
	var list []Period
	if err := tx.Get(Collection, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func findPeriod(list []Period, period string) int {
	for i := range list {
		if list[i].Period == period {
			return i
		}
	}
	return -1
}

func validPeriod(period string) bool {
	_, err := time.Parse("2006-01", period)
	return err == nil
}

func (s *Store) List(ctx context.Context) ([]Period, error) {
	var out []Period
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		periods, err := loadPeriods(tx)
		if err != nil {
			return err
		}
		out = periods
		return nil
	})
	return out, err
}

func (s *Store) GetByPeriod(ctx context.Context, period string) (*Period, error) {
	var found *Period
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		periods, err := loadPeriods(tx)
		if err != nil {
			return err
		}
		if idx := findPeriod(periods, period); idx != -1 {
			p := periods[idx]
			found = &p
		}
		return nil
	})
	return found, err
}

// Generate creates a draft run for the period with one line per working
// employee, seeded with the base salary from the contract currently in force.
func (s *Store) Generate(ctx context.Context, period string) (*Period, error) {
	if !validPeriod(period) {
		return nil, hrerr.E(hrerr.Validation, "period", "period must be YYYY-MM")
	}

	var created Period
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		periods, err := loadPeriods(tx)
		if err != nil {
			return err
		}
		if findPeriod(periods, period) != -1 {
			return hrerr.E(hrerr.DuplicateKey, "period", "payroll for this period already exists")
		}

		var employees []directory.Employee
		if err := tx.Get(directory.CollectionEmployees, &employees); err != nil {
			return err
		}
		var departments []directory.Department
		if err := tx.Get(directory.CollectionDepartments, &departments); err != nil {
			return err
		}
		var contracts []contract.Contract
		if err := tx.Get(contract.Collection, &contracts); err != nil {
			return err
		}

		var items []PayslipLine
		for _, e := range employees {
			if !e.Active() || e.Status != directory.EmployeeStatusWorking {
				continue
			}
			line := PayslipLine{
				EmployeeCode: e.Code,
				EmployeeName: e.Name,
				BaseSalary:   contract.ActiveSalary(contracts, e.Code),
			}
			for _, d := range departments {
				if directory.NormalizeCode(d.Code) == directory.NormalizeCode(e.Department) {
					line.DepartmentName = d.Name
					break
				}
			}
			line.ComputeNetPay()
			items = append(items, line)
		}

		created = Period{
			ID:        "PR-" + period,
			Period:    period,
			Status:    StatusDraft,
			Items:     items,
			CreatedAt: time.Now().UTC(),
		}
		return tx.Put(Collection, append(periods, created))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateItems adjusts payslip components on a run that is not yet closed.
func (s *Store) UpdateItems(ctx context.Context, period string, patches []LinePatch) (*Period, error) {
	var updated Period
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		periods, err := loadPeriods(tx)
		if err != nil {
			return err
		}
		idx := findPeriod(periods, period)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "period", "payroll period not found")
		}
		p := periods[idx]
		if p.Status == StatusClosed {
			return hrerr.E(hrerr.Validation, "status", "a closed payroll period cannot be changed")
		}

		for _, patch := range patches {
			code := directory.NormalizeCode(patch.EmployeeCode)
			lineIdx := -1
			for i := range p.Items {
				if directory.NormalizeCode(p.Items[i].EmployeeCode) == code {
					lineIdx = i
					break
				}
			}
			if lineIdx == -1 {
				return hrerr.E(hrerr.NotFound, "employeeCode", "employee is not on this payroll")
			}
			line := &p.Items[lineIdx]
			if patch.Allowance != nil {
				line.Allowance = *patch.Allowance
			}
			if patch.Bonus != nil {
				line.Bonus = *patch.Bonus
			}
			if patch.Deduction != nil {
				line.Deduction = *patch.Deduction
			}
			if patch.Insurance != nil {
				line.Insurance = *patch.Insurance
			}
			if patch.Tax != nil {
				line.Tax = *patch.Tax
			}
			line.ComputeNetPay()
		}

		now := time.Now().UTC()
		p.UpdatedAt = &now
		periods[idx] = p
		updated = p
		return tx.Put(Collection, periods)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Approve moves a draft run to approved. Transitions are one-way.
func (s *Store) Approve(ctx context.Context, period, approvedBy string) (*Period, error) {
	var updated Period
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		periods, err := loadPeriods(tx)
		if err != nil {
			return err
		}
		idx := findPeriod(periods, period)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "period", "payroll period not found")
		}
		p := periods[idx]
		if p.Status != StatusDraft {
			return hrerr.E(hrerr.Validation, "status", "only a draft payroll can be approved")
		}
		now := time.Now().UTC()
		p.Status = StatusApproved
		p.ApprovedBy = approvedBy
		p.ApprovedAt = &now
		p.UpdatedAt = &now
		periods[idx] = p
		updated = p
		return tx.Put(Collection, periods)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Close finalizes an approved run. Closed runs are immutable.
func (s *Store) Close(ctx context.Context, period string) (*Period, error) {
	var updated Period
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		periods, err := loadPeriods(tx)
		if err != nil {
			return err
		}
		idx := findPeriod(periods, period)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "period", "payroll period not found")
		}
		p := periods[idx]
		if p.Status != StatusApproved {
			return hrerr.E(hrerr.Validation, "status", "only an approved payroll can be closed")
		}
		now := time.Now().UTC()
		p.Status = StatusClosed
		p.ClosedAt = &now
		p.UpdatedAt = &now
		periods[idx] = p
		updated = p
		return tx.Put(Collection, periods)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a run outright. Only drafts can be deleted; approved and
// closed runs are part of the record.
func (s *Store) Delete(ctx context.Context, period string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		periods, err := loadPeriods(tx)
		if err != nil {
			return err
		}
		idx := findPeriod(periods, period)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "period", "payroll period not found")
		}
		if periods[idx].Status != StatusDraft {
			return hrerr.E(hrerr.Validation, "status", "only a draft payroll can be deleted")
		}
		return tx.Put(Collection, append(periods[:idx], periods[idx+1:]...))
	})
}
