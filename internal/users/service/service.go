// Package service holds account administration logic. Role gating here is
// stricter than the case rules: agents manage only themselves, admins
// manage non-super accounts in their region, super-admins manage everyone.
package service

import (
	"context"
	"errors"
	"log/slog"

	"sutura/internal/audit"
	"sutura/internal/users/metrics"
	"sutura/internal/users/models"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/platform/sentinel"
	"sutura/pkg/requestcontext"
	"sutura/pkg/secrets"
)

// UserStore is the persistence surface the service needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id domain.ActorID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id domain.ActorID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates account management.
type Service struct {
	store          UserStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store UserStore, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// canManage reports whether the actor may create, update, or delete the
// account described by (role, region). Self-management is handled by the
// callers before this check.
func canManage(actor domain.Actor, role domain.Role, region string) bool {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleAdmin:
		return role != domain.RoleSuperAdmin && actor.Region != "" && region == actor.Region
	}
	return false
}

// canSee reports whether the actor may read the account.
func canSee(actor domain.Actor, u *models.User) bool {
	if actor.ID == u.ID {
		return true
	}
	return canManage(actor, u.Role, u.Region)
}

// Create registers an account. The cleartext password is returned exactly
// once, for operator handoff, when the request did not supply one.
func (s *Service) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, string, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, "", dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, "", dErrors.New(dErrors.CodeValidation, err.Error())
	}
	if !canManage(actor, role, req.Region) {
		s.incrementMutationDenied()
		return nil, "", dErrors.New(dErrors.CodeForbidden, "you cannot create this account")
	}

	generated := ""
	password := req.Password
	if password == "" {
		password, err = secrets.Generate()
		if err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate password")
		}
		generated = password
	}
	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	u, err := models.NewUser(domain.NewActorID(), req.Name, req.Email, req.Phone,
		role, req.Region, hash, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, "", dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, "", err
	}

	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "email is already in use")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.emitAudit(ctx, actor, audit.ActionUserCreated, u)
	if s.metrics != nil {
		s.metrics.UsersCreated.WithLabelValues(string(role)).Inc()
	}
	return u, generated, nil
}

// Get returns a single account; out-of-scope accounts read as not found.
func (s *Service) Get(ctx context.Context, id domain.ActorID) (*models.User, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !canSee(actor, u) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return u, nil
}

// List returns the accounts the actor may see: themselves for agents,
// their region for admins, everyone for super-admins.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	visible := make([]*models.User, 0, len(all))
	for _, u := range all {
		if canSee(actor, u) {
			visible = append(visible, u)
		}
	}
	return visible, nil
}

// Update mutates an account. Everyone may edit their own profile; region
// changes on someone else's account follow the same gating as creation.
func (s *Service) Update(ctx context.Context, id domain.ActorID, req *models.UpdateUserRequest) (*models.User, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !canSee(actor, current) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if actor.ID != current.ID && !canManage(actor, current.Role, current.Region) {
		s.incrementMutationDenied()
		return nil, dErrors.New(dErrors.CodeForbidden, "you cannot edit this account")
	}

	updated := *current
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.Phone != nil {
		updated.Phone = *req.Phone
	}
	if req.Region != nil && *req.Region != current.Region {
		// Region is the scoping boundary. A regional actor must not move
		// their own account into another region; only a super-admin may
		// change their own region, and it stays advisory for them.
		if actor.ID == current.ID && actor.Role != domain.RoleSuperAdmin {
			s.incrementMutationDenied()
			return nil, dErrors.New(dErrors.CodeForbidden, "you cannot change your own region")
		}
		if updated.Role.RequiresRegion() && *req.Region == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "region is required for agents and admins")
		}
		updated.Region = *req.Region
	}
	if req.Password != nil {
		hash, err := secrets.Hash(*req.Password)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		updated.PasswordHash = hash
	}
	updated.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, &updated); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already in use")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	s.emitAudit(ctx, actor, audit.ActionUserUpdated, &updated)
	return &updated, nil
}

// Delete removes an account. Self-deletion is not allowed; someone with
// broader scope has to do it.
func (s *Service) Delete(ctx context.Context, id domain.ActorID) error {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !canSee(actor, current) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if actor.ID == current.ID || !canManage(actor, current.Role, current.Region) {
		s.incrementMutationDenied()
		return dErrors.New(dErrors.CodeForbidden, "you cannot delete this account")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	s.emitAudit(ctx, actor, audit.ActionUserDeleted, current)
	return nil
}

func (s *Service) emitAudit(ctx context.Context, actor domain.Actor, action string, u *models.User) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    action,
		Entity:    "user",
		EntityID:  u.ID.String(),
		Region:    u.Region,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) incrementMutationDenied() {
	if s.metrics != nil {
		s.metrics.MutationsDenied.Inc()
	}
}
