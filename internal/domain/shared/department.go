package shared

import (
	"strings"

	"github.com/google/uuid"
)

// Department is the organisational unit a user works in
type Department string

const (
	DepartmentShipment Department = "SHIPMENT"
	DepartmentTrucking Department = "TRUCKING"
	DepartmentFinance  Department = "FINANCE"
	DepartmentVerifier Department = "VERIFIER"
)

// AllDepartments returns every known department in display order
func AllDepartments() []Department {
	return []Department{
		DepartmentShipment,
		DepartmentTrucking,
		DepartmentFinance,
		DepartmentVerifier,
	}
}

// ParseDepartment parses a department name case-insensitively
func ParseDepartment(s string) (Department, error) {
	d := Department(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", ErrInvalidDepartment
	}
	return d, nil
}

// IsValid reports whether d is a known department
func (d Department) IsValid() bool {
	switch d {
	case DepartmentShipment, DepartmentTrucking, DepartmentFinance, DepartmentVerifier:
		return true
	}
	return false
}

// String returns the string representation
func (d Department) String() string {
	return string(d)
}

// PathSegment returns the lower-case form used in storage keys
func (d Department) PathSegment() string {
	return strings.ToLower(string(d))
}

// Actor identifies who performed an operation
type Actor struct {
	UserID     uuid.UUID  `json:"user_id"`
	Username   string     `json:"username"`
	Department Department `json:"department"`
	IsAdmin    bool       `json:"is_admin"`
}

// In reports whether the actor belongs to one of the departments.
// Admins belong to every department.
func (a Actor) In(departments ...Department) bool {
	if a.IsAdmin {
		return true
	}
	for _, d := range departments {
		if a.Department == d {
			return true
		}
	}
	return false
}
