package contract

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

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
	Contract
	Employee *directory.EmployeeSummary `json:"employee"`
}

func loadContracts(tx *kvstore.Tx) ([]Contract, error) {
	var list []Contract
	if err := tx.Get(Collection, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func findContract(list []Contract, code string) int {
	target := directory.NormalizeCode(code)
	for i := range list {
		if directory.NormalizeCode(list[i].ContractCode) == target {
			return i
		}
	}
	return -1
}

func enrich(tx *kvstore.Tx, c Contract) (Detail, error) {
	detail := Detail{Contract: c}
	if c.EmployeeCode == "" {
		return detail, nil
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
	detail.Employee = directory.SummarizeEmployee(employees, departments, positions, c.EmployeeCode)
	return detail, nil
}

func (s *Store) List(ctx context.Context, includeDeleted bool) ([]Detail, error) {
	var out []Detail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		contracts, err := loadContracts(tx)
		if err != nil {
			return err
		}
		for _, c := range contracts {
			if !includeDeleted && !c.Active() {
				continue
			}
			detail, err := enrich(tx, c)
			if err != nil {
				return err
			}
			out = append(out, detail)
		}
		return nil
	})
	return out, err
}

// ListActive returns the contracts currently in force.
func (s *Store) ListActive(ctx context.Context) ([]Detail, error) {
	all, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, detail := range all {
		if detail.Status == StatusActive {
			out = append(out, detail)
		}
	}
	return out, nil
}

func (s *Store) GetByCode(ctx context.Context, code string) (*Detail, error) {
	var found *Detail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		contracts, err := loadContracts(tx)
		if err != nil {
			return err
		}
		idx := findContract(contracts, code)
		if idx == -1 {
			return nil
		}
		detail, err := enrich(tx, contracts[idx])
		if err != nil {
			return err
		}
		found = &detail
		return nil
	})
	return found, err
}

func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	if directory.NormalizeCode(code) == "" {
		return false, nil
	}
	detail, err := s.GetByCode(ctx, code)
	return detail != nil, err
}

func (s *Store) Create(ctx context.Context, c Contract) (*Detail, error) {
	c.ContractCode = directory.NormalizeCode(c.ContractCode)
	c.EmployeeCode = directory.NormalizeCode(c.EmployeeCode)
	if c.ContractCode == "" {
		return nil, hrerr.E(hrerr.Validation, "contractCode", "contract code is required")
	}
	if c.EmployeeCode == "" {
		return nil, hrerr.E(hrerr.Validation, "employeeCode", "an employee must be selected")
	}
	if err := validateTerms(c.ContractType, c.StartDate, c.EndDate, c.Salary); err != nil {
		return nil, err
	}

	var created Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		contracts, err := loadContracts(tx)
		if err != nil {
			return err
		}
		if findContract(contracts, c.ContractCode) != -1 {
			return hrerr.E(hrerr.DuplicateKey, "contractCode", "contract code already exists")
		}

		var employees []directory.Employee
		if err := tx.Get(directory.CollectionEmployees, &employees); err != nil {
			return err
		}
		if err := requireWorkingEmployee(employees, c.EmployeeCode); err != nil {
			return err
		}
		if hasActiveContract(contracts, c.EmployeeCode, "") {
			return hrerr.E(hrerr.DuplicateAssignment, "employeeCode",
				"employee already has an active contract")
		}

		c.Status = StatusActive
		c.CreatedAt = time.Now().UTC()
		c.UpdatedAt = nil
		c.DeletedAt = nil
		if err := tx.Put(Collection, append(contracts, c)); err != nil {
			return err
		}
		created, err = enrich(tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) Update(ctx context.Context, code string, patch Update) (*Detail, error) {
	var updated Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		contracts, err := loadContracts(tx)
		if err != nil {
			return err
		}
		idx := findContract(contracts, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "contractCode", "contract not found")
		}
		c := contracts[idx]

		if patch.ContractType != nil {
			c.ContractType = *patch.ContractType
		}
		if patch.StartDate != nil {
			c.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			c.EndDate = *patch.EndDate
		}
		if patch.Salary != nil {
			c.Salary = *patch.Salary
		}
		if patch.Note != nil {
			c.Note = *patch.Note
		}
		if patch.Status != nil {
			switch *patch.Status {
			case StatusActive:
				// Terminal statuses stay terminal; reactivation would dodge
				// the exclusivity rule.
				if c.Status != StatusActive {
					return hrerr.E(hrerr.Validation, "status",
						"an expired or terminated contract cannot return to active")
				}
			case StatusExpired, StatusTerminated:
				c.Status = *patch.Status
			default:
				return hrerr.E(hrerr.Validation, "status", "invalid contract status")
			}
		}
		if err := validateTerms(c.ContractType, c.StartDate, c.EndDate, c.Salary); err != nil {
			return err
		}

		now := time.Now().UTC()
		c.UpdatedAt = &now
		contracts[idx] = c
		if err := tx.Put(Collection, contracts); err != nil {
			return err
		}
		updated, err = enrich(tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SoftDelete terminates the contract: status and deletedAt move together.
func (s *Store) SoftDelete(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		contracts, err := loadContracts(tx)
		if err != nil {
			return err
		}
		idx := findContract(contracts, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "contractCode", "contract not found")
		}
		now := time.Now().UTC()
		contracts[idx].Status = StatusTerminated
		contracts[idx].DeletedAt = &now
		return tx.Put(Collection, contracts)
	})
}

// Restore puts the contract back in force, re-running the exclusivity rule:
// the employee may have signed a new contract since the deletion.
func (s *Store) Restore(ctx context.Context, code string) (*Detail, error) {
	var restored Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		contracts, err := loadContracts(tx)
		if err != nil {
			return err
		}
		idx := findContract(contracts, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "contractCode", "contract not found")
		}
		c := contracts[idx]
		if hasActiveContract(contracts, c.EmployeeCode, c.ContractCode) {
			return hrerr.E(hrerr.DuplicateAssignment, "employeeCode",
				"employee already has an active contract")
		}
		now := time.Now().UTC()
		c.Status = StatusActive
		c.DeletedAt = nil
		c.UpdatedAt = &now
		contracts[idx] = c
		if err := tx.Put(Collection, contracts); err != nil {
			return err
		}
		restored, err = enrich(tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (s *Store) HardDelete(ctx context.Context, code string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		contracts, err := loadContracts(tx)
		if err != nil {
			return err
		}
		idx := findContract(contracts, code)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "contractCode", "contract not found")
		}
		return tx.Put(Collection, append(contracts[:idx], contracts[idx+1:]...))
	})
}

// ActiveSalary returns the salary on the employee's contract currently in
// force, or zero when none exists. Used by payroll generation.
func ActiveSalary(contracts []Contract, employeeCode string) decimal.Decimal {
	code := directory.NormalizeCode(employeeCode)
	for _, c := range contracts {
		if c.Active() && c.Status == StatusActive && directory.NormalizeCode(c.EmployeeCode) == code {
			return c.Salary
		}
	}
	return decimal.Zero
}

func validateTerms(contractType, startDate, endDate string, salary decimal.Decimal) error {
	if !validContractType(contractType) {
		return hrerr.E(hrerr.Validation, "contractType", "invalid contract type")
	}
	if startDate == "" {
		return hrerr.E(hrerr.Validation, "startDate", "start date is required")
	}
	start, err := parseDate(startDate)
	if err != nil {
		return hrerr.E(hrerr.Validation, "startDate", "start date must be YYYY-MM-DD")
	}
	if contractType != TypeIndefinite && endDate == "" {
		return hrerr.E(hrerr.Validation, "endDate", "end date is required for fixed-term contracts")
	}
	if endDate != "" {
		end, err := parseDate(endDate)
		if err != nil {
			return hrerr.E(hrerr.Validation, "endDate", "end date must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return hrerr.E(hrerr.InvalidRange, "endDate", "end date precedes start date")
		}
	}
	if !salary.IsPositive() {
		return hrerr.E(hrerr.Validation, "salary", "salary must be greater than zero")
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
		"contracts can only be created for working employees")
}

func hasActiveContract(contracts []Contract, employeeCode, exceptCode string) bool {
	code := directory.NormalizeCode(employeeCode)
	except := directory.NormalizeCode(exceptCode)
	for _, c := range contracts {
		if !c.Active() || directory.NormalizeCode(c.ContractCode) == except {
			continue
		}
		if c.Status == StatusActive && directory.NormalizeCode(c.EmployeeCode) == code {
			return true
		}
	}
	return false
}
