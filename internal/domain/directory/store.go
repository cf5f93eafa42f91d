package directory

import (
	"strings"

	"erphrm/internal/platform/kvstore"
)

// Store owns the Employee, Department and Position collections. All mutations
// run their integrity validators inside the same transaction as the write.
type Store struct {
	db *kvstore.Store
}

func NewStore(db *kvstore.Store) *Store {
	return &Store{db: db}
}

// NormalizeCode canonicalizes a business key: trimmed, uppercased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func loadEmployees(tx *kvstore.Tx) ([]Employee, error) {
	var list []Employee
	if err := tx.Get(CollectionEmployees, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func loadDepartments(tx *kvstore.Tx) ([]Department, error) {
	var list []Department
	if err := tx.Get(CollectionDepartments, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func loadPositions(tx *kvstore.Tx) ([]Position, error) {
	var list []Position
	if err := tx.Get(CollectionPositions, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func findEmployee(list []Employee, code string) int {
	target := NormalizeCode(code)
	for i := range list {
		if NormalizeCode(list[i].Code) == target {
			return i
		}
	}
	return -1
}

func findDepartment(list []Department, code string) int {
	target := NormalizeCode(code)
	for i := range list {
		if NormalizeCode(list[i].Code) == target {
			return i
		}
	}
	return -1
}

func findPosition(list []Position, code string) int {
	target := NormalizeCode(code)
	for i := range list {
		if NormalizeCode(list[i].Code) == target {
			return i
		}
	}
	return -1
}
