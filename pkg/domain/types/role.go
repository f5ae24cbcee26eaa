package types

import "fmt"

// Role represents the role of an authenticated caller
type Role string

const (
	RoleSubject   Role = "SUBJECT"
	RoleResponder Role = "RESPONDER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{RoleSubject, RoleResponder, RoleModerator, RoleAdmin}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleSubject, RoleResponder, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// Elevated reports whether the role may read incidents it does not own
func (r Role) Elevated() bool {
	return r == RoleModerator || r == RoleAdmin
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return r, nil
}
