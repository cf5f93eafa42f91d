package directory

import "time"

// Collection names match the persisted layout: one serialized array per
// entity type.
const (
	CollectionEmployees   = "EMPLOYEES"
	CollectionDepartments = "DEPARTMENTS"
	CollectionPositions   = "POSITIONS"
)

const (
	EmployeeStatusWorking  = "Working"
	EmployeeStatusResigned = "Resigned"

	DepartmentStatusActive   = "Active"
	DepartmentStatusInactive = "Inactive"

	PositionStatusActive   = "Active"
	PositionStatusInactive = "Inactive"
)

// PositionNameManager is the designated label for the single-manager rule.
const PositionNameManager = "Manager"

// PositionNames is the fixed set of valid position titles.
var PositionNames = []string{
	PositionNameManager,
	"Deputy Manager",
	"Team Lead",
	"Staff",
	"Intern",
}

type Employee struct {
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Gender          string     `json:"gender"`
	DateOfBirth     string     `json:"dob,omitempty"`
	Hometown        string     `json:"hometown,omitempty"`
	NationalID      string     `json:"nationalId,omitempty"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	BankAccount     string     `json:"bankAccount,omitempty"`
	BankAccountName string     `json:"bankAccountName,omitempty"`
	Department      string     `json:"department,omitempty"`
	Position        string     `json:"position,omitempty"`
	JoinDate        string     `json:"joinDate,omitempty"`
	Status          string     `json:"status"`
	CVURL           string     `json:"cvUrl,omitempty"`
	HealthCertURL   string     `json:"healthCertUrl,omitempty"`
	DegreeURL       string     `json:"degreeUrl,omitempty"`
	ContractURL     string     `json:"contractUrl,omitempty"`
	ResignedAt      *time.Time `json:"resignedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
	DeletedAt       *time.Time `json:"deletedAt"`
}

// Active reports whether the record is live (not soft-deleted).
func (e Employee) Active() bool { return e.DeletedAt == nil }

type Department struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

func (d Department) Active() bool { return d.DeletedAt == nil }

type Position struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Department  string     `json:"department"`
	Description string     `json:"description,omitempty"`
	Capacity    int        `json:"capacity"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

func (p Position) Active() bool { return p.DeletedAt == nil }

// EmployeeUpdate is a partial update; nil fields keep their stored value.
// The business key is immutable and deliberately absent.
type EmployeeUpdate struct {
	Name            *string `json:"name,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	DateOfBirth     *string `json:"dob,omitempty"`
	Hometown        *string `json:"hometown,omitempty"`
	NationalID      *string `json:"nationalId,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	BankAccount     *string `json:"bankAccount,omitempty"`
	BankAccountName *string `json:"bankAccountName,omitempty"`
	Department      *string `json:"department,omitempty"`
	Position        *string `json:"position,omitempty"`
	JoinDate        *string `json:"joinDate,omitempty"`
	Status          *string `json:"status,omitempty"`
	CVURL           *string `json:"cvUrl,omitempty"`
	HealthCertURL   *string `json:"healthCertUrl,omitempty"`
	DegreeURL       *string `json:"degreeUrl,omitempty"`
	ContractURL     *string `json:"contractUrl,omitempty"`
}

type DepartmentUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type PositionUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Status      *string `json:"status,omitempty"`
}
