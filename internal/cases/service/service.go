// Package service holds the case domain logic: creation, scoped reads,
// lifecycle-checked updates, and deletion. All authorization decisions
// delegate to the scope package; the service owns sequencing and audit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sutura/internal/audit"
	"sutura/internal/cases/metrics"
	"sutura/internal/cases/models"
	"sutura/internal/scope"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/platform/sentinel"
	"sutura/pkg/requestcontext"
)

// CaseStore is the persistence surface the service needs. Update is
// compare-and-set on status: it fails with sentinel.ErrConflict when the
// persisted status no longer matches expectedStatus.
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, id domain.CaseID) (*models.Case, error)
	List(ctx context.Context) ([]*models.Case, error)
	Update(ctx context.Context, c *models.Case, expectedStatus domain.CaseStatus) error
	Delete(ctx context.Context, id domain.CaseID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates case management.
type Service struct {
	store          CaseStore
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
func New(store CaseStore, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new case owned by the calling actor. Agents always
// start at pending; admins and super-admins may supply an initial status
// for pre-triaged imports.
func (s *Service) Create(ctx context.Context, req *models.CreateCaseRequest) (*models.Case, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := domain.CaseStatusPending
	if req.Status != "" && actor.Role != domain.RoleAgent {
		parsed, err := domain.ParseCaseStatus(req.Status)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		status = parsed
	}

	c, err := models.NewCase(domain.NewCaseID(), actor.ID, req, status, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case")
	}

	s.emitAudit(ctx, actor, audit.ActionCaseCreated, c, "")
	s.incrementCaseCreated()

	return c, nil
}

// Get returns a single case. A case outside the actor's scope is reported
// as not found, indistinguishable from one that does not exist.
func (s *Service) Get(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	if !scope.VisibleCase(actor, c) {
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	return c, nil
}

// List returns every case the actor may see, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Case, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	return scope.VisibleCases(actor, all), nil
}

// updateAttempts bounds the compare-and-set retry loop. One retry covers
// the common interleaving; anything persistent surfaces as a conflict.
const updateAttempts = 2

// Update applies a partial mutation. Status changes are checked against
// the lifecycle table at write time, under the store's compare-and-set, so
// a concurrent transition cannot slip an illegal edge through.
func (s *Service) Update(ctx context.Context, id domain.CaseID, req *models.UpdateCaseRequest) (*models.Case, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		current, err := s.store.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
		}
		if !scope.VisibleCase(actor, current) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		if !scope.CanMutateCase(actor, current) {
			s.emitAudit(ctx, actor, audit.ActionMutationDenied, current, "")
			s.incrementMutationDenied()
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}

		updated := *current
		applyCaseUpdate(&updated, req)
		updated.UpdatedAt = requestcontext.Now(ctx)

		transition := ""
		if req.Status != nil {
			next, err := domain.ParseCaseStatus(*req.Status)
			if err != nil {
				return nil, dErrors.New(dErrors.CodeValidation, err.Error())
			}
			if !current.Status.CanTransitionTo(next) {
				s.emitAudit(ctx, actor, audit.ActionTransitionRejected, current,
					fmt.Sprintf("%s -> %s", current.Status, next))
				s.incrementTransitionRejected()
				return nil, dErrors.Newf(dErrors.CodeInvalidTransition,
					"cannot move case from %s to %s", current.Status, next)
			}
			updated.Status = next
			transition = fmt.Sprintf("%s -> %s", current.Status, next)
		}

		if err := s.store.Update(ctx, &updated, current.Status); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				// Someone moved the record first. Re-read and re-validate
				// against the new state before giving up.
				lastErr = err
				continue
			}
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update case")
		}

		if transition != "" {
			s.emitAudit(ctx, actor, audit.ActionCaseStatusChanged, &updated, transition)
			s.incrementTransition(current.Status, updated.Status)
		} else {
			s.emitAudit(ctx, actor, audit.ActionCaseUpdated, &updated, "")
		}
		return &updated, nil
	}

	return nil, dErrors.Wrap(lastErr, dErrors.CodeConflict, "case was modified concurrently")
}

// Delete removes a case. Out-of-scope records report not found.
func (s *Service) Delete(ctx context.Context, id domain.CaseID) error {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	if !scope.VisibleCase(actor, current) || !scope.CanMutateCase(actor, current) {
		return dErrors.New(dErrors.CodeNotFound, "case not found")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete case")
	}

	s.emitAudit(ctx, actor, audit.ActionCaseDeleted, current, "")
	return nil
}

func applyCaseUpdate(c *models.Case, req *models.UpdateCaseRequest) {
	if req.VictimCommune != nil {
		c.VictimCommune = *req.VictimCommune
	}
	if req.VictimAge != nil {
		c.VictimAge = *req.VictimAge
	}
	if req.MaritalStatus != nil {
		c.MaritalStatus = *req.MaritalStatus
	}
	if req.HasDisability != nil {
		c.HasDisability = *req.HasDisability
	}
	if req.ViolenceType != nil {
		c.ViolenceType = *req.ViolenceType
	}
	if req.RelationshipToVictim != nil {
		c.RelationshipToVictim = *req.RelationshipToVictim
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
}

func (s *Service) emitAudit(ctx context.Context, actor domain.Actor, action string, c *models.Case, detail string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    action,
		Entity:    "case",
		EntityID:  c.ID.String(),
		Region:    c.VictimRegion,
		RequestID: requestcontext.RequestID(ctx),
		Detail:    detail,
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) incrementCaseCreated() {
	if s.metrics != nil {
		s.metrics.CasesCreated.Inc()
	}
}

func (s *Service) incrementTransition(from, to domain.CaseStatus) {
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()
	}
}

func (s *Service) incrementMutationDenied() {
	if s.metrics != nil {
		s.metrics.MutationsDenied.Inc()
	}
}

func (s *Service) incrementTransitionRejected() {
	if s.metrics != nil {
		s.metrics.TransitionRejected.Inc()
	}
}
