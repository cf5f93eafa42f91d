package leave

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

type Detail struct {
	Request
	Employee *directory.EmployeeSummary `json:"employee"`
}

func loadRequests(tx *kvstore.Tx) ([]Request, error) {
	var list []Request
	if err := tx.Get(Collection, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func findRequest(list []Request, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func enrich(tx *kvstore.Tx, r Request) (Detail, error) {
	detail := Detail{Request: r}
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
	detail.Employee = directory.SummarizeEmployee(employees, departments, positions, r.EmployeeCode)
	return detail, nil
}

func (s *Store) List(ctx context.Context, includeDeleted bool) ([]Detail, error) {
	var out []Detail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		requests, err := loadRequests(tx)
		if err != nil {
			return err
		}
		for _, r := range requests {
			if !includeDeleted && !r.Active() {
				continue
			}
			detail, err := enrich(tx, r)
			if err != nil {
				return err
			}
			out = append(out, detail)
		}
		return nil
	})
	return out, err
}

func (s *Store) GetByID(ctx context.Context, id string) (*Detail, error) {
	var found *Detail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		requests, err := loadRequests(tx)
		if err != nil {
			return err
		}
		idx := findRequest(requests, id)
		if idx == -1 {
			return nil
		}
		detail, err := enrich(tx, requests[idx])
		if err != nil {
			return err
		}
		found = &detail
		return nil
	})
	return found, err
}

func (s *Store) Create(ctx context.Context, r Request) (*Detail, error) {
	r.EmployeeCode = directory.NormalizeCode(r.EmployeeCode)
	if r.EmployeeCode == "" {
		return nil, hrerr.E(hrerr.Validation, "employeeCode", "an employee must be selected")
	}
	if err := validateTerms(r.LeaveType, r.FromDate, r.ToDate); err != nil {
		return nil, err
	}

	var created Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		requests, err := loadRequests(tx)
		if err != nil {
			return err
		}
		var employees []directory.Employee
		if err := tx.Get(directory.CollectionEmployees, &employees); err != nil {
			return err
		}
		if err := requireWorkingEmployee(employees, r.EmployeeCode); err != nil {
			return err
		}

		r.ID = uuid.NewString()
		r.Status = StatusPending
		r.ApprovedBy = ""
		r.ApprovedAt = nil
		r.RejectReason = ""
		r.CreatedAt = time.Now().UTC()
		r.UpdatedAt = nil
		r.DeletedAt = nil
		if err := tx.Put(Collection, append(requests, r)); err != nil {
			return err
		}
		created, err = enrich(tx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) Update(ctx context.Context, id string, patch Update) (*Detail, error) {
	var updated Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		requests, err := loadRequests(tx)
		if err != nil {
			return err
		}
		idx := findRequest(requests, id)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "id", "leave request not found")
		}
		r := requests[idx]
		if r.Decided() {
			return hrerr.E(hrerr.Validation, "status", "a decided leave request cannot be changed")
		}

		if patch.LeaveType != nil {
			r.LeaveType = *patch.LeaveType
		}
		if patch.FromDate != nil {
			r.FromDate = *patch.FromDate
		}
		if patch.ToDate != nil {
			r.ToDate = *patch.ToDate
		}
		if patch.Reason != nil {
			r.Reason = *patch.Reason
		}
		if err := validateTerms(r.LeaveType, r.FromDate, r.ToDate); err != nil {
			return err
		}

		now := time.Now().UTC()
		r.UpdatedAt = &now
		requests[idx] = r
		if err := tx.Put(Collection, requests); err != nil {
			return err
		}
		updated, err = enrich(tx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Approve moves a pending request to approved. Decisions are terminal.
func (s *Store) Approve(ctx context.Context, id, approvedBy string) (*Detail, error) {
	return s.decide(ctx, id, approvedBy, StatusApproved, "")
}

// Reject moves a pending request to rejected with an optional reason.
func (s *Store) Reject(ctx context.Context, id, approvedBy, reason string) (*Detail, error) {
	return s.decide(ctx, id, approvedBy, StatusRejected, reason)
}

func (s *Store) decide(ctx context.Context, id, approvedBy, status, reason string) (*Detail, error) {
	var decided Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		requests, err := loadRequests(tx)
		if err != nil {
			return err
		}
		idx := findRequest(requests, id)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "id", "leave request not found")
		}
		r := requests[idx]
		if r.Decided() {
			return hrerr.E(hrerr.Validation, "status", "leave request is already decided")
		}
		now := time.Now().UTC()
		r.Status = status
		r.ApprovedBy = approvedBy
		r.ApprovedAt = &now
		r.RejectReason = reason
		r.UpdatedAt = &now
		requests[idx] = r
		if err := tx.Put(Collection, requests); err != nil {
			return err
		}
		decided, err = enrich(tx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &decided, nil
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		requests, err := loadRequests(tx)
		if err != nil {
			return err
		}
		idx := findRequest(requests, id)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "id", "leave request not found")
		}
		now := time.Now().UTC()
		requests[idx].DeletedAt = &now
		return tx.Put(Collection, requests)
	})
}

func (s *Store) Restore(ctx context.Context, id string) (*Detail, error) {
	var restored Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		requests, err := loadRequests(tx)
		if err != nil {
			return err
		}
		idx := findRequest(requests, id)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "id", "leave request not found")
		}
		now := time.Now().UTC()
		requests[idx].DeletedAt = nil
		requests[idx].UpdatedAt = &now
		var err2 error
		restored, err2 = enrich(tx, requests[idx])
		if err2 != nil {
			return err2
		}
		return tx.Put(Collection, requests)
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (s *Store) HardDelete(ctx context.Context, id string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		requests, err := loadRequests(tx)
		if err != nil {
			return err
		}
		idx := findRequest(requests, id)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "id", "leave request not found")
		}
		return tx.Put(Collection, append(requests[:idx], requests[idx+1:]...))
	})
}

// Spans reports whether the request covers the given calendar day.
func (r Request) Spans(day time.Time) bool {
	from, err := parseDate(r.FromDate)
	if err != nil {
		return false
	}
	to, err := parseDate(r.ToDate)
	if err != nil {
		return false
	}
	day = day.Truncate(24 * time.Hour)
	return !day.Before(from) && !day.After(to)
}

func validateTerms(leaveType, fromDate, toDate string) error {
	if !validLeaveType(leaveType) {
		return hrerr.E(hrerr.Validation, "leaveType", "invalid leave type")
	}
	if fromDate == "" {
		return hrerr.E(hrerr.Validation, "fromDate", "from date is required")
	}
	if toDate == "" {
		return hrerr.E(hrerr.Validation, "toDate", "to date is required")
	}
	from, err := parseDate(fromDate)
	if err != nil {
		return hrerr.E(hrerr.Validation, "fromDate", "from date must be YYYY-MM-DD")
	}
	to, err := parseDate(toDate)
	if err != nil {
		return hrerr.E(hrerr.Validation, "toDate", "to date must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return hrerr.E(hrerr.InvalidRange, "toDate", "to date precedes from date")
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
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
		"leave can only be requested for working employees")
}
