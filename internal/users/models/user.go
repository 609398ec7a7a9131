// Package models defines the administrative user account and its DTOs.
package models

import (
	"strings"
	"time"

	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
)

// User is an account that can authenticate against the service. The ID
// doubles as the ActorID carried in token claims.
type User struct {
	ID           domain.ActorID `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone,omitempty"`
	Role         domain.Role    `json:"role"`
	Region       string         `json:"region,omitempty"`
	PasswordHash string         `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Actor projects the account onto the identity tuple the scoping engine
// consumes.
func (u *User) Actor() domain.Actor {
	return domain.Actor{ID: u.ID, Role: u.Role, Region: u.Region, Name: u.Name}
}

// NewUser validates invariants and constructs a User.
func NewUser(id domain.ActorID, name, email, phone string, role domain.Role, region, passwordHash string, now time.Time) (*User, error) {
	if id.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id cannot be nil")
	}
	if !role.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unsupported role %q", role)
	}
	if role.RequiresRegion() && region == "" {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "role %s requires a region", role)
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user must have a password hash")
	}
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		Phone:        phone,
		Role:         role,
		Region:       region,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CreateUserRequest is the payload for registering an account. When
// Password is empty a random one is generated and returned once in the
// create response.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Region   string `json:"region"`
	Password string `json:"password,omitempty"`
}

// Normalize trims whitespace and lowercases the email.
func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Role = strings.TrimSpace(r.Role)
	r.Region = strings.TrimSpace(r.Region)
}

// Validate reports every violated field constraint.
// Errors: CodeValidation with one detail per field.
func (r *CreateUserRequest) Validate() error {
	var details []string
	if r.Name == "" {
		details = append(details, "name is required")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		details = append(details, "email must be a valid address")
	}
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		details = append(details, "role must be one of agent, admin, super_admin")
	} else if role.RequiresRegion() && r.Region == "" {
		details = append(details, "region is required for agents and admins")
	}
	if r.Password != "" && len(r.Password) < 8 {
		details = append(details, "password must be at least 8 characters")
	}
	if len(details) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid user payload", details)
	}
	return nil
}

// UpdateUserRequest is the payload for mutating an account. Role changes
// are deliberately excluded; accounts are re-created to change role.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Region   *string `json:"region,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Normalize trims whitespace on all supplied fields.
func (r *UpdateUserRequest) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.Name)
	trim(r.Phone)
	trim(r.Region)
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
}

// Validate reports every violated field constraint.
// Errors: CodeValidation with one detail per field.
func (r *UpdateUserRequest) Validate() error {
	var details []string
	if r.Name != nil && *r.Name == "" {
		details = append(details, "name cannot be empty")
	}
	if r.Email != nil && (*r.Email == "" || !strings.Contains(*r.Email, "@")) {
		details = append(details, "email must be a valid address")
	}
	if r.Password != nil && len(*r.Password) < 8 {
		details = append(details, "password must be at least 8 characters")
	}
	if len(details) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid user payload", details)
	}
	return nil
}
