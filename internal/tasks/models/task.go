// Package models defines the follow-up task aggregate and its request DTOs.
package models

import (
	"strings"
	"time"

	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
)

// Task is a scheduled activity or meeting, optionally linked to a case.
//
// Invariants:
//   - AssignedTo is single-valued: one primary responsible party
//   - Participants grant visibility only, never edit rights
//   - CreatorRole is recorded at creation so the edit matrix can refuse
//     admin edits of super-admin tasks without a user lookup
//   - Region is the scoping region inherited from the creator (or the
//     related case) at creation time
type Task struct {
	ID            domain.TaskID       `json:"id"`
	CreatedBy     domain.ActorID      `json:"created_by"`
	CreatorRole   domain.Role         `json:"creator_role"`
	AssignedTo    domain.ActorID      `json:"assigned_to"`
	Participants  []domain.ActorID    `json:"participants,omitempty"`
	Region        string              `json:"region,omitempty"`
	Title         string              `json:"title"`
	Notes         string              `json:"notes,omitempty"`
	Status        domain.TaskStatus   `json:"status"`
	Priority      domain.TaskPriority `json:"priority"`
	Date          string              `json:"date,omitempty"`
	Time          string              `json:"time,omitempty"`
	RelatedCaseID *domain.CaseID      `json:"related_case_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// HasParticipant reports whether the actor is on the participant list.
func (t *Task) HasParticipant(actorID domain.ActorID) bool {
	for _, p := range t.Participants {
		if p == actorID {
			return true
		}
	}
	return false
}

// CreateTaskRequest is the payload for scheduling a new task.
// AssignedTo and Participants are honored only for super-admins; for other
// roles the task is self-assigned and the service rejects both fields.
type CreateTaskRequest struct {
	Title         string   `json:"title"`
	Notes         string   `json:"notes"`
	Priority      string   `json:"priority"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	AssignedTo    string   `json:"assigned_to,omitempty"`
	Participants  []string `json:"participants,omitempty"`
	RelatedCaseID string   `json:"related_case_id,omitempty"`
}

// Normalize trims whitespace and defaults the priority to medium.
func (r *CreateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Notes = strings.TrimSpace(r.Notes)
	r.Priority = strings.TrimSpace(r.Priority)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.AssignedTo = strings.TrimSpace(r.AssignedTo)
	r.RelatedCaseID = strings.TrimSpace(r.RelatedCaseID)
	if r.Priority == "" {
		r.Priority = domain.TaskPriorityMedium.String()
	}
}

// Validate reports every violated field constraint.
// Errors: CodeValidation with one detail per field.
func (r *CreateTaskRequest) Validate() error {
	var details []string
	if r.Title == "" {
		details = append(details, "title is required")
	}
	if _, err := domain.ParseTaskPriority(r.Priority); err != nil {
		details = append(details, "priority must be one of low, medium, high")
	}
	if r.Date != "" {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			details = append(details, "date must use the YYYY-MM-DD format")
		}
	}
	if r.Time != "" {
		if _, err := time.Parse("15:04", r.Time); err != nil {
			details = append(details, "time must use the HH:MM format")
		}
	}
	if r.AssignedTo != "" {
		if _, err := domain.ParseActorID(r.AssignedTo); err != nil {
			details = append(details, "assigned_to must be a valid actor id")
		}
	}
	for _, p := range r.Participants {
		if _, err := domain.ParseActorID(strings.TrimSpace(p)); err != nil {
			details = append(details, "participants must contain valid actor ids")
			break
		}
	}
	if r.RelatedCaseID != "" {
		if _, err := domain.ParseCaseID(r.RelatedCaseID); err != nil {
			details = append(details, "related_case_id must be a valid case id")
		}
	}
	if len(details) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid task payload", details)
	}
	return nil
}

// UpdateTaskRequest is the payload for mutating a task. Nil fields are left
// untouched; a non-nil Status must pass the task lifecycle table.
type UpdateTaskRequest struct {
	Title    *string `json:"title,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Date     *string `json:"date,omitempty"`
	Time     *string `json:"time,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// Normalize trims whitespace on all supplied fields.
func (r *UpdateTaskRequest) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.Title)
	trim(r.Notes)
	trim(r.Priority)
	trim(r.Date)
	trim(r.Time)
	trim(r.Status)
}

// Validate reports every violated field constraint.
// Errors: CodeValidation with one detail per field.
func (r *UpdateTaskRequest) Validate() error {
	var details []string
	if r.Title != nil && *r.Title == "" {
		details = append(details, "title cannot be empty")
	}
	if r.Priority != nil {
		if _, err := domain.ParseTaskPriority(*r.Priority); err != nil {
			details = append(details, "priority must be one of low, medium, high")
		}
	}
	if r.Date != nil && *r.Date != "" {
		if _, err := time.Parse("2006-01-02", *r.Date); err != nil {
			details = append(details, "date must use the YYYY-MM-DD format")
		}
	}
	if r.Time != nil && *r.Time != "" {
		if _, err := time.Parse("15:04", *r.Time); err != nil {
			details = append(details, "time must use the HH:MM format")
		}
	}
	if r.Status != nil {
		if _, err := domain.ParseTaskStatus(*r.Status); err != nil {
			details = append(details, "status must be one of pending, completed, cancelled")
		}
	}
	if len(details) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid task payload", details)
	}
	return nil
}
