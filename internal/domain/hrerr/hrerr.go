// Package hrerr carries the error taxonomy shared by the entity stores.
// Transport layers map kinds to protocol codes; domain code never sees HTTP.
package hrerr

import "errors"

type Kind string

const (
	Validation            Kind = "validation_error"
	DuplicateKey          Kind = "duplicate_key"
	NotFound              Kind = "not_found"
	CapacityExceeded      Kind = "capacity_exceeded"
	ManagerConflict       Kind = "manager_conflict"
	DependentRecordsExist Kind = "dependent_records_exist"
	InvalidEmployeeState  Kind = "invalid_employee_state"
	DuplicateAssignment   Kind = "duplicate_assignment"
	InvalidRange          Kind = "invalid_range"
)

type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Field + ": " + e.Message
}

// E builds a taxonomy error. Field may be empty when no single field is at
// fault.
func E(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// KindOf returns the taxonomy kind of err, or "" for foreign errors.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// FieldOf returns the offending field name, when one was identified.
func FieldOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Field
	}
	return ""
}

// MessageOf returns the human message without the kind/field prefix.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
