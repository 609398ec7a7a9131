// Package domain holds the shared value types of the case-management core:
// typed identifiers, the actor tuple, and the closed status/role enums.
//
// Identifiers are distinct defined types over uuid.UUID so the compiler
// rejects accidental cross-assignment (an ActorID can never be passed where
// a CaseID is expected). Construct them via the Parse* functions at trust
// boundaries; direct conversion bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "sutura/pkg/domain-errors"
)

// ActorID identifies an authenticated actor (agent, admin, or super-admin).
type ActorID uuid.UUID

// CaseID identifies a violence case report.
type CaseID uuid.UUID

// TaskID identifies a follow-up task.
type TaskID uuid.UUID

// NewActorID returns a fresh random actor ID.
func NewActorID() ActorID { return ActorID(uuid.New()) }

// NewCaseID returns a fresh random case ID.
func NewCaseID() CaseID { return CaseID(uuid.New()) }

// NewTaskID returns a fresh random task ID.
func NewTaskID() TaskID { return TaskID(uuid.New()) }

// ParseActorID constructs an ActorID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseActorID(s string) (ActorID, error) {
	u, err := parseUUID(s, "actor id")
	return ActorID(u), err
}

// ParseCaseID constructs a CaseID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID(s, "case id")
	return CaseID(u), err
}

// ParseTaskID constructs a TaskID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseTaskID(s string) (TaskID, error) {
	u, err := parseUUID(s, "task id")
	return TaskID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", what)
	}
	return u, nil
}

func (id ActorID) String() string { return uuid.UUID(id).String() }
func (id CaseID) String() string  { return uuid.UUID(id).String() }
func (id TaskID) String() string  { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id ActorID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// IsZero reports whether the ID is the nil UUID.
func (id CaseID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// IsZero reports whether the ID is the nil UUID.
func (id TaskID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// Defined types do not inherit uuid.UUID's text marshalling, so each ID type
// re-implements it; without these, JSON encoding would emit a byte array.

func (id ActorID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ActorID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ActorID(u)
	return nil
}

func (id CaseID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *CaseID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = CaseID(u)
	return nil
}

func (id TaskID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *TaskID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = TaskID(u)
	return nil
}
