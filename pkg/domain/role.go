package domain

import dErrors "sutura/pkg/domain-errors"

// Role is the closed set of actor roles. Every scoping and permission
// function switches exhaustively over it; values outside the set resolve to
// the most restrictive outcome (fail closed), never to implicit access.
type Role string

const (
	// RoleAgent is a field agent: sees and mutates only cases they created.
	RoleAgent Role = "agent"
	// RoleAdmin is a regional administrator: scope is their region.
	RoleAdmin Role = "admin"
	// RoleSuperAdmin is the national administrator: unrestricted scope.
	// Their region attribute is advisory only.
	RoleSuperAdmin Role = "super_admin"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RoleAgent:      true,
	RoleAdmin:      true,
	RoleSuperAdmin: true,
}

// ParseRole constructs a Role from external input (JWT claim, request body).
// Errors: CodeInvalidInput when the value is empty or not a supported role.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported role %q", s)
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// RequiresRegion reports whether actors of this role must carry a region.
// Agents and admins are region-bound; the super-admin's region is advisory.
func (r Role) RequiresRegion() bool {
	switch r {
	case RoleAgent, RoleAdmin:
		return true
	case RoleSuperAdmin:
		return false
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
