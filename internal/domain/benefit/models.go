package benefit

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Collection            = "BENEFITS"
	AssignmentsCollection = "BENEFIT_ASSIGNS"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Benefit is a catalog entry: a named allowance with a monetary amount.
type Benefit struct {
	BenefitCode string          `json:"benefitCode"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt"`
}

func (b Benefit) Active() bool { return b.DeletedAt == nil }

// Assignment grants one benefit to one employee.
type Assignment struct {
	ID           string     `json:"id"`
	BenefitCode  string     `json:"benefitCode"`
	EmployeeCode string     `json:"employeeCode"`
	Note         string     `json:"note,omitempty"`
	AssignedAt   time.Time  `json:"assignedAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

func (a Assignment) Active() bool { return a.DeletedAt == nil }

// Update patches a catalog entry. Code is immutable.
type Update struct {
	Name        *string          `json:"name,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *string          `json:"status,omitempty"`
}
