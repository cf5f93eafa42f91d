package reports

import (
	"context"
	"sort"
	"time"

	"erphrm/internal/domain/directory"
	"erphrm/internal/domain/leave"
	"erphrm/internal/platform/kvstore"
)

type Store struct {
	db *kvstore.Store
}

func NewStore(db *kvstore.Store) *Store {
	return &Store{db: db}
}

// Overview is the dashboard headline: headcount, active departments and who
// is on approved leave today.
type Overview struct {
	TotalEmployees   int `json:"totalEmployees"`
	WorkingEmployees int `json:"workingEmployees"`
	TodayLeaveCount  int `json:"todayLeaveCount"`
	DepartmentCount  int `json:"departmentCount"`
}

func (s *Store) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		var employees []directory.Employee
		if err := tx.Get(directory.CollectionEmployees, &employees); err != nil {
			return err
		}
		var departments []directory.Department
		if err := tx.Get(directory.CollectionDepartments, &departments); err != nil {
			return err
		}
		var leaves []leave.Request
		if err := tx.Get(leave.Collection, &leaves); err != nil {
			return err
		}

		for _, e := range employees {
			if !e.Active() {
				continue
			}
			out.TotalEmployees++
			if e.Status == directory.EmployeeStatusWorking {
				out.WorkingEmployees++
			}
		}
		for _, d := range departments {
			if d.Active() && d.Status == directory.DepartmentStatusActive {
				out.DepartmentCount++
			}
		}
		today := time.Now().UTC()
		for _, r := range leaves {
			if r.Active() && r.Status == leave.StatusApproved && r.Spans(today) {
				out.TodayLeaveCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecentEmployees returns the newest active employees, most recent first.
func (s *Store) RecentEmployees(ctx context.Context, limit int) ([]directory.EmployeeDetail, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []directory.EmployeeDetail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		var employees []directory.Employee
		if err := tx.Get(directory.CollectionEmployees, &employees); err != nil {
			return err
		}
		var departments []directory.Department
		if err := tx.Get(directory.CollectionDepartments, &departments); err != nil {
			return err
		}
		var positions []directory.Position
		if err := tx.Get(directory.CollectionPositions, &positions); err != nil {
			return err
		}

		active := make([]directory.Employee, 0, len(employees))
		for _, e := range employees {
			if e.Active() {
				active = append(active, e)
			}
		}
		sort.Slice(active, func(i, j int) bool {
			return active[i].CreatedAt.After(active[j].CreatedAt)
		})
		if len(active) > limit {
			active = active[:limit]
		}
		for _, e := range active {
			out = append(out, directory.EnrichEmployee(e, departments, positions))
		}
		return nil
	})
	return out, err
}
