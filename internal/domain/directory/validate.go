package directory

import (
	"fmt"

	"erphrm/internal/domain/hrerr"
)

func validPositionName(name string) bool {
	for _, candidate := range PositionNames {
		if candidate == name {
			return true
		}
	}
	return false
}

// validateAssignment enforces the referential rules for an employee's
// department/position pair. selfCode excludes the employee being re-validated
// on update. Both references are optional; a set position requires a set
// department and must belong to it.
func validateAssignment(employees []Employee, departments []Department, positions []Position, departmentCode, positionCode, selfCode string) error {
	departmentCode = NormalizeCode(departmentCode)
	positionCode = NormalizeCode(positionCode)

	if departmentCode != "" {
		idx := findDepartment(departments, departmentCode)
		if idx == -1 || !departments[idx].Active() {
			return hrerr.E(hrerr.NotFound, "department", "department does not exist")
		}
	}

	if positionCode == "" {
		return nil
	}
	if departmentCode == "" {
		return hrerr.E(hrerr.Validation, "department", "a position requires a department")
	}

	idx := findPosition(positions, positionCode)
	if idx == -1 || !positions[idx].Active() {
		return hrerr.E(hrerr.NotFound, "position", "position does not exist")
	}
	position := positions[idx]
	if NormalizeCode(position.Department) != departmentCode {
		return hrerr.E(hrerr.Validation, "position", "position belongs to a different department")
	}

	if err := checkPositionCapacity(employees, position, selfCode); err != nil {
		return err
	}
	if position.Name == PositionNameManager {
		if err := checkSingleManager(employees, positions, departmentCode, selfCode); err != nil {
			return err
		}
	}
	return nil
}

// checkPositionCapacity counts the active holders of a position, excluding
// selfCode, and rejects the assignment once capacity is reached.
func checkPositionCapacity(employees []Employee, position Position, selfCode string) error {
	capacity := position.Capacity
	if capacity < 1 {
		capacity = 1
	}
	if countAssignees(employees, position.Code, selfCode) >= capacity {
		return hrerr.E(hrerr.CapacityExceeded, "position",
			fmt.Sprintf("position %s is at capacity (%d)", position.Code, capacity))
	}
	return nil
}

// checkSingleManager rejects the assignment when another active employee
// already holds a Manager-named position within the department.
func checkSingleManager(employees []Employee, positions []Position, departmentCode, selfCode string) error {
	self := NormalizeCode(selfCode)
	for _, emp := range employees {
		if !emp.Active() || NormalizeCode(emp.Code) == self {
			continue
		}
		if NormalizeCode(emp.Department) != departmentCode || emp.Position == "" {
			continue
		}
		idx := findPosition(positions, emp.Position)
		if idx == -1 {
			continue
		}
		if positions[idx].Name == PositionNameManager {
			return hrerr.E(hrerr.ManagerConflict, "position",
				"department already has a manager: "+emp.Code)
		}
	}
	return nil
}

func countAssignees(employees []Employee, positionCode, selfCode string) int {
	target := NormalizeCode(positionCode)
	self := NormalizeCode(selfCode)
	count := 0
	for _, emp := range employees {
		if !emp.Active() || NormalizeCode(emp.Code) == self {
			continue
		}
		if NormalizeCode(emp.Position) == target {
			count++
		}
	}
	return count
}

func countDepartmentMembers(employees []Employee, departmentCode string) int {
	target := NormalizeCode(departmentCode)
	count := 0
	for _, emp := range employees {
		if emp.Active() && NormalizeCode(emp.Department) == target {
			count++
		}
	}
	return count
}
