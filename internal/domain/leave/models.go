package leave

import "time"

const Collection = "ON_LEAVES"

const (
	TypeAnnual    = "Annual"
	TypeSick      = "Sick"
	TypeUnpaid    = "Unpaid"
	TypeMaternity = "Maternity"
	TypeOther     = "Other"

	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

var leaveTypes = []string{TypeAnnual, TypeSick, TypeUnpaid, TypeMaternity, TypeOther}

type Request struct {
	ID           string     `json:"id"`
	EmployeeCode string     `json:"employeeCode"`
	LeaveType    string     `json:"leaveType"`
	FromDate     string     `json:"fromDate"`
	ToDate       string     `json:"toDate"`
	Reason       string     `json:"reason,omitempty"`
	Status       string     `json:"status"`
	ApprovedBy   string     `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt"`
	RejectReason string     `json:"rejectReason,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

func (r Request) Active() bool { return r.DeletedAt == nil }

// Decided reports whether the request has left the pending state. Decisions
// are terminal.
func (r Request) Decided() bool { return r.Status != StatusPending }

// Update patches the leave terms of a pending request. ID and employee
// binding are immutable.
type Update struct {
	LeaveType *string `json:"leaveType,omitempty"`
	FromDate  *string `json:"fromDate,omitempty"`
	ToDate    *string `json:"toDate,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func validLeaveType(value string) bool {
	for _, candidate := range leaveTypes {
		if candidate == value {
			return true
		}
	}
	return false
}
