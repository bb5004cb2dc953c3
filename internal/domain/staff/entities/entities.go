package entities

import "time"

// Role is the clinic-side role of a staff member
type Role string

const (
	RoleReception Role = "reception"
	RoleNurse     Role = "nurse"
	RoleDoctor    Role = "doctor"
	RoleAdmin     Role = "admin"
)

// StaffMember is a registered clinic employee allowed to log in
type StaffMember struct {
	ID        string
	Username  string
	FullName  string
	Role      Role
	CreatedAt time.Time
}

// ValidRole reports whether r is one of the known roles
func ValidRole(r Role) bool {
	switch r {
	case RoleReception, RoleNurse, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}
