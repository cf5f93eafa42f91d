package account

import (
	"strings"
	"time"
)

const Collection = "ACCOUNTS"

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusDeleted  = "Deleted"
)

type Account struct {
	Username     string     `json:"username"`
	EmployeeCode string     `json:"employeeCode,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	PasswordHash string     `json:"passwordHash,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

func (a Account) Active() bool { return a.DeletedAt == nil }

// NewAccount is the creation payload; Password arrives in the clear and is
// stored only as a bcrypt hash.
type NewAccount struct {
	Username     string `json:"username"`
	EmployeeCode string `json:"employeeCode"`
	Role         string `json:"role"`
	Password     string `json:"password"`
}

// Update patches role, status or password. Username and employee binding are
// immutable.
type Update struct {
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
	Password *string `json:"password,omitempty"`
}

// NormalizeUsername canonicalizes the business key: trimmed, lowercased.
// Uniqueness is case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func findAccount(list []Account, username string) int {
	target := NormalizeUsername(username)
	for i := range list {
		if NormalizeUsername(list[i].Username) == target {
			return i
		}
	}
	return -1
}
