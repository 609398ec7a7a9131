// Package audit records who did what to which record. Events are emitted
// from domain services after a mutation commits and are append-only; they
// fan out to a local store and, when configured, a Kafka topic.
package audit

import (
	"time"

	"sutura/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	ActorID   domain.ActorID `json:"actor_id"`
	ActorRole domain.Role    `json:"actor_role"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Region    string         `json:"region,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	// Detail carries the state change for lifecycle events, e.g.
	// "pending -> open". Never include victim-identifying data here.
	Detail string `json:"detail,omitempty"`
}

// Actions emitted by the domain services.
const (
	ActionCaseCreated        = "case_created"
	ActionCaseUpdated        = "case_updated"
	ActionCaseStatusChanged  = "case_status_changed"
	ActionCaseDeleted        = "case_deleted"
	ActionTaskCreated        = "task_created"
	ActionTaskUpdated        = "task_updated"
	ActionTaskStatusChanged  = "task_status_changed"
	ActionTaskDeleted        = "task_deleted"
	ActionUserCreated        = "user_created"
	ActionUserUpdated        = "user_updated"
	ActionUserDeleted        = "user_deleted"
	ActionMutationDenied     = "mutation_denied"
	ActionTransitionRejected = "transition_rejected"
)
