// Package models defines the case aggregate and its request DTOs.
package models

import (
	"strings"
	"time"

	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
)

// Case is a single gender-based-violence incident report.
//
// Invariants:
//   - exactly one owning creator (AgentID) and one owning region (VictimRegion)
//   - Status is always a valid CaseStatus; changes go through the lifecycle table
//   - SubmittedAt is immutable after construction
type Case struct {
	ID                   domain.CaseID     `json:"id"`
	AgentID              domain.ActorID    `json:"agent_id"`
	VictimRegion         string            `json:"victim_region"`
	VictimCommune        string            `json:"victim_commune,omitempty"`
	VictimAge            int               `json:"victim_age"`
	MaritalStatus        string            `json:"marital_status,omitempty"`
	HasDisability        bool              `json:"has_disability"`
	ViolenceType         string            `json:"violence_type"`
	RelationshipToVictim string            `json:"relationship_to_victim,omitempty"`
	Description          string            `json:"description,omitempty"`
	Status               domain.CaseStatus `json:"status"`
	SubmittedAt          time.Time         `json:"submitted_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// NewCase validates invariants and constructs a Case owned by the creator.
func NewCase(id domain.CaseID, agentID domain.ActorID, req *CreateCaseRequest, status domain.CaseStatus, now time.Time) (*Case, error) {
	if id.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "case id cannot be nil")
	}
	if agentID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "case must have an owning creator")
	}
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unsupported case status %q", status)
	}
	return &Case{
		ID:                   id,
		AgentID:              agentID,
		VictimRegion:         req.VictimRegion,
		VictimCommune:        req.VictimCommune,
		VictimAge:            req.VictimAge,
		MaritalStatus:        req.MaritalStatus,
		HasDisability:        req.HasDisability,
		ViolenceType:         req.ViolenceType,
		RelationshipToVictim: req.RelationshipToVictim,
		Description:          req.Description,
		Status:               status,
		SubmittedAt:          now,
		UpdatedAt:            now,
	}, nil
}

// CreateCaseRequest is the payload for registering a new case.
// Status is optional: only admins and super-admins may set it (pre-triaged
// imports); the service enforces that rule.
type CreateCaseRequest struct {
	VictimRegion         string `json:"victim_region"`
	VictimCommune        string `json:"victim_commune"`
	VictimAge            int    `json:"victim_age"`
	MaritalStatus        string `json:"marital_status"`
	HasDisability        bool   `json:"has_disability"`
	ViolenceType         string `json:"violence_type"`
	RelationshipToVictim string `json:"relationship_to_victim"`
	Description          string `json:"description"`
	Status               string `json:"status,omitempty"`
}

// Normalize trims whitespace on all free-text fields.
func (r *CreateCaseRequest) Normalize() {
	r.VictimRegion = strings.TrimSpace(r.VictimRegion)
	r.VictimCommune = strings.TrimSpace(r.VictimCommune)
	r.MaritalStatus = strings.TrimSpace(r.MaritalStatus)
	r.ViolenceType = strings.TrimSpace(r.ViolenceType)
	r.RelationshipToVictim = strings.TrimSpace(r.RelationshipToVictim)
	r.Description = strings.TrimSpace(r.Description)
	r.Status = strings.TrimSpace(r.Status)
}

// Validate reports every violated field constraint.
// Errors: CodeValidation with one detail per field.
func (r *CreateCaseRequest) Validate() error {
	var details []string
	if r.VictimRegion == "" {
		details = append(details, "victim_region is required")
	}
	if r.ViolenceType == "" {
		details = append(details, "violence_type is required")
	}
	if r.VictimAge < 0 || r.VictimAge > 130 {
		details = append(details, "victim_age must be between 0 and 130")
	}
	if r.Status != "" {
		if _, err := domain.ParseCaseStatus(r.Status); err != nil {
			details = append(details, "status must be one of pending, open, completed, follow_up, archived")
		}
	}
	if len(details) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid case payload", details)
	}
	return nil
}

// UpdateCaseRequest is the payload for mutating a case. Nil fields are left
// untouched; a non-nil Status must pass the lifecycle table against the
// record's state at write time.
type UpdateCaseRequest struct {
	VictimCommune        *string `json:"victim_commune,omitempty"`
	VictimAge            *int    `json:"victim_age,omitempty"`
	MaritalStatus        *string `json:"marital_status,omitempty"`
	HasDisability        *bool   `json:"has_disability,omitempty"`
	ViolenceType         *string `json:"violence_type,omitempty"`
	RelationshipToVictim *string `json:"relationship_to_victim,omitempty"`
	Description          *string `json:"description,omitempty"`
	Status               *string `json:"status,omitempty"`
}

// Normalize trims whitespace on all supplied free-text fields.
func (r *UpdateCaseRequest) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.VictimCommune)
	trim(r.MaritalStatus)
	trim(r.ViolenceType)
	trim(r.RelationshipToVictim)
	trim(r.Description)
	trim(r.Status)
}

// Validate reports every violated field constraint.
// Errors: CodeValidation with one detail per field.
func (r *UpdateCaseRequest) Validate() error {
	var details []string
	if r.ViolenceType != nil && *r.ViolenceType == "" {
		details = append(details, "violence_type cannot be empty")
	}
	if r.VictimAge != nil && (*r.VictimAge < 0 || *r.VictimAge > 130) {
		details = append(details, "victim_age must be between 0 and 130")
	}
	if r.Status != nil {
		if _, err := domain.ParseCaseStatus(*r.Status); err != nil {
			details = append(details, "status must be one of pending, open, completed, follow_up, archived")
		}
	}
	if len(details) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid case payload", details)
	}
	return nil
}
