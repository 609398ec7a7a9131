package domain

import dErrors "sutura/pkg/domain-errors"

// TaskStatus is the lifecycle state of a follow-up task.
//
// The table is deliberately small: pending → completed | cancelled, both
// terminal. A finished task is never re-opened; a new task is created
// instead.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

var validTaskStatuses = map[TaskStatus]bool{
	TaskStatusPending:   true,
	TaskStatusCompleted: true,
	TaskStatusCancelled: true,
}

var taskTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskStatusPending:   {TaskStatusCompleted: true, TaskStatusCancelled: true},
	TaskStatusCompleted: {},
	TaskStatusCancelled: {},
}

// ParseTaskStatus constructs a TaskStatus from external input.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseTaskStatus(s string) (TaskStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "task status cannot be empty")
	}
	st := TaskStatus(s)
	if !st.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported task status %q", s)
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s TaskStatus) IsValid() bool {
	return validTaskStatuses[s]
}

// CanTransitionTo reports whether the fixed table permits moving to the
// given status. Unknown states on either side resolve to false.
func (s TaskStatus) CanTransitionTo(to TaskStatus) bool {
	return taskTransitions[s][to]
}

// IsTerminal reports whether no further transitions are possible.
func (s TaskStatus) IsTerminal() bool {
	return s.IsValid() && len(taskTransitions[s]) == 0
}

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// TaskPriority orders tasks for triage views. It carries no authorization
// semantics.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

var validTaskPriorities = map[TaskPriority]bool{
	TaskPriorityLow:    true,
	TaskPriorityMedium: true,
	TaskPriorityHigh:   true,
}

// ParseTaskPriority constructs a TaskPriority from external input.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseTaskPriority(s string) (TaskPriority, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "task priority cannot be empty")
	}
	p := TaskPriority(s)
	if !validTaskPriorities[p] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported task priority %q", s)
	}
	return p, nil
}

// IsValid checks if the priority is one of the supported enum values.
func (p TaskPriority) IsValid() bool {
	return validTaskPriorities[p]
}

// String returns the string representation of the priority.
func (p TaskPriority) String() string {
	return string(p)
}
