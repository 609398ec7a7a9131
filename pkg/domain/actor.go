package domain

import (
	"strings"

	dErrors "sutura/pkg/domain-errors"
)

// Actor is the authenticated identity tuple driving every authorization
// decision. It is produced once from token claims at the start of a request
// and passed explicitly to scoping and lifecycle functions; nothing in the
// core reads a "current user" from shared state.
//
// Invariants:
//   - ID is a non-nil UUID
//   - Role is one of the supported roles
//   - Region is non-empty for agents and admins; for super-admins it is
//     advisory and never restricts scope
type Actor struct {
	ID     ActorID `json:"id"`
	Role   Role    `json:"role"`
	Region string  `json:"region,omitempty"`
	Name   string  `json:"name"`
}

// NewActor validates and constructs an Actor.
// Errors: CodeInvariantViolation when the tuple breaks an invariant above.
func NewActor(id ActorID, role Role, region, name string) (Actor, error) {
	if id.IsZero() {
		return Actor{}, dErrors.New(dErrors.CodeInvariantViolation, "actor id cannot be nil")
	}
	if !role.IsValid() {
		return Actor{}, dErrors.Newf(dErrors.CodeInvariantViolation, "unsupported role %q", role)
	}
	region = strings.TrimSpace(region)
	if role.RequiresRegion() && region == "" {
		return Actor{}, dErrors.Newf(dErrors.CodeInvariantViolation, "role %s requires a region", role)
	}
	return Actor{ID: id, Role: role, Region: region, Name: strings.TrimSpace(name)}, nil
}

// IsZero reports whether the actor is the zero value (no authenticated
// identity). Scoping treats a zero actor as seeing nothing.
func (a Actor) IsZero() bool {
	return a.ID.IsZero() && a.Role == ""
}
