package contract

import (
	"time"

	"github.com/shopspring/decimal"
)

const Collection = "CONTRACTS"

const (
	TypeProbation  = "Probation"
	TypeFixedTerm  = "Fixed-term"
	TypeIndefinite = "Indefinite"

	StatusActive     = "Active"
	StatusExpired    = "Expired"
	StatusTerminated = "Terminated"
)

var contractTypes = []string{TypeProbation, TypeFixedTerm, TypeIndefinite}

type Contract struct {
	ContractCode string          `json:"contractCode"`
	EmployeeCode string          `json:"employeeCode"`
	ContractType string          `json:"contractType"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate,omitempty"`
	Salary       decimal.Decimal `json:"salary"`
	Note         string          `json:"note,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    *time.Time      `json:"updatedAt"`
	DeletedAt    *time.Time      `json:"deletedAt"`
}

func (c Contract) Active() bool { return c.DeletedAt == nil }

// Update patches contract terms. Code and employee binding are immutable.
type Update struct {
	ContractType *string          `json:"contractType,omitempty"`
	StartDate    *string          `json:"startDate,omitempty"`
	EndDate      *string          `json:"endDate,omitempty"`
	Salary       *decimal.Decimal `json:"salary,omitempty"`
	Note         *string          `json:"note,omitempty"`
	Status       *string          `json:"status,omitempty"`
}

func validContractType(value string) bool {
	for _, candidate := range contractTypes {
		if candidate == value {
			return true
		}
	}
	return false
}
