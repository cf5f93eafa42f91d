package account

import (
	"context"
	"errors"
	"time"

	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/directory"
	"erphrm/internal/domain/hrerr"
	"erphrm/internal/platform/kvstore"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

type Store struct {
	db *kvstore.Store
}

func NewStore(db *kvstore.Store) *Store {
	return &Store{db: db}
}

// Detail is the read-side projection: the account with its credential
// stripped and the owning employee resolved for display.
type Detail struct {
	Account
	Employee *directory.EmployeeSummary `json:"employee"`
}

func loadAccounts(tx *kvstore.Tx) ([]Account, error) {
	var list []Account
	if err := tx.Get(Collection, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func enrich(tx *kvstore.Tx, acc Account) (Detail, error) {
	acc.PasswordHash = ""
	detail := Detail{Account: acc}
	if acc.EmployeeCode == "" {
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
	detail.Employee = directory.SummarizeEmployee(employees, departments, positions, acc.EmployeeCode)
	return detail, nil
}

func (s *Store) List(ctx context.Context, includeDeleted bool) ([]Detail, error) {
	var out []Detail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		for _, acc := range accounts {
			if !includeDeleted && !acc.Active() {
				continue
			}
			detail, err := enrich(tx, acc)
			if err != nil {
				return err
			}
			out = append(out, detail)
		}
		return nil
	})
	return out, err
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*Detail, error) {
	var found *Detail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		idx := findAccount(accounts, username)
		if idx == -1 {
			return nil
		}
		detail, err := enrich(tx, accounts[idx])
		if err != nil {
			return err
		}
		found = &detail
		return nil
	})
	return found, err
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	if NormalizeUsername(username) == "" {
		return false, nil
	}
	detail, err := s.GetByUsername(ctx, username)
	return detail != nil, err
}

func (s *Store) EmployeeHasAccount(ctx context.Context, employeeCode string) (bool, error) {
	code := directory.NormalizeCode(employeeCode)
	if code == "" {
		return false, nil
	}
	var has bool
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		has = employeeHasLiveAccount(accounts, code, "")
		return nil
	})
	return has, err
}

// Create issues an account for a working employee. The username is reserved
// globally and case-insensitively, soft-deleted accounts included.
func (s *Store) Create(ctx context.Context, payload NewAccount) (*Detail, error) {
	username := NormalizeUsername(payload.Username)
	if username == "" {
		return nil, hrerr.E(hrerr.Validation, "username", "username is required")
	}
	if payload.EmployeeCode == "" {
		return nil, hrerr.E(hrerr.Validation, "employeeCode", "an employee must be selected")
	}
	if !auth.ValidRole(payload.Role) {
		return nil, hrerr.E(hrerr.Validation, "role", "invalid role")
	}
	if payload.Password == "" {
		return nil, hrerr.E(hrerr.Validation, "password", "password is required")
	}
	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	employeeCode := directory.NormalizeCode(payload.EmployeeCode)

	var created Detail
	err = s.db.Update(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		if findAccount(accounts, username) != -1 {
			return hrerr.E(hrerr.DuplicateKey, "username", "username already exists")
		}

		var employees []directory.Employee
		if err := tx.Get(directory.CollectionEmployees, &employees); err != nil {
			return err
		}
		if err := requireWorkingEmployee(employees, employeeCode); err != nil {
			return err
		}
		if employeeHasLiveAccount(accounts, employeeCode, "") {
			return hrerr.E(hrerr.DuplicateAssignment, "employeeCode", "employee already has an account")
		}

		acc := Account{
			Username:     username,
			EmployeeCode: employeeCode,
			Role:         payload.Role,
			Status:       StatusActive,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.Put(Collection, append(accounts, acc)); err != nil {
			return err
		}
		created, err = enrich(tx, acc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) Update(ctx context.Context, username string, patch Update) (*Detail, error) {
	var updated Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		idx := findAccount(accounts, username)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "username", "account not found")
		}
		acc := accounts[idx]

		if patch.Role != nil {
			if !auth.ValidRole(*patch.Role) {
				return hrerr.E(hrerr.Validation, "role", "invalid role")
			}
			acc.Role = *patch.Role
		}
		if patch.Status != nil {
			switch *patch.Status {
			case StatusActive, StatusInactive:
				acc.Status = *patch.Status
			default:
				return hrerr.E(hrerr.Validation, "status", "invalid account status")
			}
		}
		if patch.Password != nil && *patch.Password != "" {
			hash, err := auth.HashPassword(*patch.Password)
			if err != nil {
				return err
			}
			acc.PasswordHash = hash
		}

		now := time.Now().UTC()
		acc.UpdatedAt = &now
		accounts[idx] = acc
		if err := tx.Put(Collection, accounts); err != nil {
			return err
		}
		updated, err = enrich(tx, acc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) SoftDelete(ctx context.Context, username string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		idx := findAccount(accounts, username)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "username", "account not found")
		}
		now := time.Now().UTC()
		accounts[idx].Status = StatusDeleted
		accounts[idx].DeletedAt = &now
		return tx.Put(Collection, accounts)
	})
}

// Restore reactivates the account after re-checking the one-live-account
// rule; the employee may have been issued a replacement meanwhile.
func (s *Store) Restore(ctx context.Context, username string) (*Detail, error) {
	var restored Detail
	err := s.db.Update(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		idx := findAccount(accounts, username)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "username", "account not found")
		}
		acc := accounts[idx]
		if acc.EmployeeCode != "" && employeeHasLiveAccount(accounts, acc.EmployeeCode, acc.Username) {
			return hrerr.E(hrerr.DuplicateAssignment, "employeeCode", "employee already has an account")
		}
		now := time.Now().UTC()
		acc.Status = StatusActive
		acc.DeletedAt = nil
		acc.UpdatedAt = &now
		accounts[idx] = acc
		if err := tx.Put(Collection, accounts); err != nil {
			return err
		}
		restored, err = enrich(tx, acc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (s *Store) HardDelete(ctx context.Context, username string) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		idx := findAccount(accounts, username)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "username", "account not found")
		}
		return tx.Put(Collection, append(accounts[:idx], accounts[idx+1:]...))
	})
}

// Authenticate verifies a credential pair for the login flow. Deleted and
// inactive accounts are rejected before the password check.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*Detail, error) {
	var detail Detail
	err := s.db.View(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		idx := findAccount(accounts, username)
		if idx == -1 {
			return ErrInvalidCredentials
		}
		acc := accounts[idx]
		if !acc.Active() || acc.Status != StatusActive {
			return ErrAccountDisabled
		}
		if auth.CheckPassword(acc.PasswordHash, password) != nil {
			return ErrInvalidCredentials
		}
		detail, err = enrich(tx, acc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ResetPassword re-hashes the credential for a live account.
func (s *Store) ResetPassword(ctx context.Context, username, password string) error {
	if password == "" {
		return hrerr.E(hrerr.Validation, "password", "password is required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		idx := findAccount(accounts, username)
		if idx == -1 {
			return hrerr.E(hrerr.NotFound, "username", "account not found")
		}
		if !accounts[idx].Active() {
			return ErrAccountDisabled
		}
		now := time.Now().UTC()
		accounts[idx].PasswordHash = hash
		accounts[idx].UpdatedAt = &now
		return tx.Put(Collection, accounts)
	})
}

// Seed inserts the given accounts unless their usernames are already taken.
// Used at boot to provision the default portal logins.
func (s *Store) Seed(ctx context.Context, defaults []NewAccount) error {
	return s.db.Update(ctx, func(tx *kvstore.Tx) error {
		accounts, err := loadAccounts(tx)
		if err != nil {
			return err
		}
		changed := false
		for _, payload := range defaults {
			username := NormalizeUsername(payload.Username)
			if username == "" || findAccount(accounts, username) != -1 {
				continue
			}
			hash, err := auth.HashPassword(payload.Password)
			if err != nil {
				return err
			}
			accounts = append(accounts, Account{
				Username:     username,
				EmployeeCode: directory.NormalizeCode(payload.EmployeeCode),
				Role:         payload.Role,
				Status:       StatusActive,
				PasswordHash: hash,
				CreatedAt:    time.Now().UTC(),
			})
			changed = true
		}
		if !changed {
			return nil
		}
		return tx.Put(Collection, accounts)
	})
}

func requireWorkingEmployee(employees []directory.Employee, code string) error {
	idx := -1
	target := directory.NormalizeCode(code)
	for i := range employees {
		if directory.NormalizeCode(employees[i].Code) == target {
			idx = i
			break
		}
	}
	if idx == -1 || !employees[idx].Active() || employees[idx].Status != directory.EmployeeStatusWorking {
		return hrerr.E(hrerr.InvalidEmployeeState, "employeeCode",
			"accounts can only be issued to working employees")
	}
	return nil
}

func employeeHasLiveAccount(accounts []Account, employeeCode, exceptUsername string) bool {
	code := directory.NormalizeCode(employeeCode)
	except := NormalizeUsername(exceptUsername)
	for _, acc := range accounts {
		if !acc.Active() || NormalizeUsername(acc.Username) == except {
			continue
		}
		if directory.NormalizeCode(acc.EmployeeCode) == code {
			return true
		}
	}
	return false
}
