// Package service holds the task domain logic: scheduling, scoped reads,
// the edit-permission matrix, and the task lifecycle. Visibility and edit
// rights are distinct here; a participant sees a task they cannot touch.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sutura/internal/audit"
	casemodels "sutura/internal/cases/models"
	"sutura/internal/scope"
	"sutura/internal/tasks/metrics"
	"sutura/internal/tasks/models"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/platform/sentinel"
	"sutura/pkg/requestcontext"
)

// TaskStore is the persistence surface the service needs. Update is
// compare-and-set on status, as in the case store.
type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	FindByID(ctx context.Context, id domain.TaskID) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, t *models.Task, expectedStatus domain.TaskStatus) error
	Delete(ctx context.Context, id domain.TaskID) error
}

// CaseFinder resolves the case a task links to, for validating the link
// and inheriting the scoping region.
type CaseFinder interface {
	FindByID(ctx context.Context, id domain.CaseID) (*casemodels.Case, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates task management.
type Service struct {
	store          TaskStore
	cases          CaseFinder
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

// New constructs a Service. The case finder may be nil when tasks are run
// without the cases module; related_case_id is then rejected.
func New(store TaskStore, cases CaseFinder, opts ...Option) *Service {
	s := &Service{store: store, cases: cases}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create schedules a task. Agents and admins are always self-assigned;
// only super-admins may direct a task at someone else or attach
// participants. The scoping region is inherited from the linked case when
// present, otherwise from the creator.
func (s *Service) Create(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if (req.AssignedTo != "" || len(req.Participants) > 0) && !scope.CanAssignTasks(actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only super administrators may assign tasks")
	}

	assignedTo := actor.ID
	if req.AssignedTo != "" {
		parsed, err := domain.ParseActorID(req.AssignedTo)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "assigned_to must be a valid actor id")
		}
		assignedTo = parsed
	}

	var participants []domain.ActorID
	for _, p := range req.Participants {
		parsed, err := domain.ParseActorID(strings.TrimSpace(p))
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "participants must contain valid actor ids")
		}
		participants = append(participants, parsed)
	}

	region := actor.Region
	var relatedCaseID *domain.CaseID
	if req.RelatedCaseID != "" {
		if s.cases == nil {
			return nil, dErrors.New(dErrors.CodeValidation, "related_case_id is not supported")
		}
		caseID, err := domain.ParseCaseID(req.RelatedCaseID)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "related_case_id must be a valid case id")
		}
		related, err := s.cases.FindByID(ctx, caseID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load related case")
		}
		if !scope.VisibleCase(actor, related) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		relatedCaseID = &caseID
		region = related.VictimRegion
	}

	priority, err := domain.ParseTaskPriority(req.Priority)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	now := requestcontext.Now(ctx)
	t := &models.Task{
		ID:            domain.NewTaskID(),
		CreatedBy:     actor.ID,
		CreatorRole:   actor.Role,
		AssignedTo:    assignedTo,
		Participants:  participants,
		Region:        region,
		Title:         req.Title,
		Notes:         req.Notes,
		Status:        domain.TaskStatusPending,
		Priority:      priority,
		Date:          req.Date,
		Time:          req.Time,
		RelatedCaseID: relatedCaseID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create task")
	}

	s.emitAudit(ctx, actor, audit.ActionTaskCreated, t, "")
	s.incrementTaskCreated()

	return t, nil
}

// Get returns a single task. Out-of-scope tasks read as not found.
func (s *Service) Get(ctx context.Context, id domain.TaskID) (*models.Task, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load task")
	}
	if !scope.VisibleTask(actor, t) {
		return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	return t, nil
}

// List returns every task the actor may see, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Task, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return scope.VisibleTasks(actor, all), nil
}

const updateAttempts = 2

// Update applies a partial mutation under the edit-permission matrix. A
// task the actor can see but not edit answers with forbidden; an invisible
// one with not found.
func (s *Service) Update(ctx context.Context, id domain.TaskID, req *models.UpdateTaskRequest) (*models.Task, error) {
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
				return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load task")
		}
		if !scope.VisibleTask(actor, current) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		if !scope.CanMutateTask(actor, current) {
			s.emitAudit(ctx, actor, audit.ActionMutationDenied, current, "")
			s.incrementMutationDenied()
			return nil, dErrors.New(dErrors.CodeForbidden, "you cannot edit this task")
		}

		updated := cloneTask(current)
		applyTaskUpdate(updated, req)
		updated.UpdatedAt = requestcontext.Now(ctx)

		transition := ""
		if req.Status != nil {
			next, err := domain.ParseTaskStatus(*req.Status)
			if err != nil {
				return nil, dErrors.New(dErrors.CodeValidation, err.Error())
			}
			if !current.Status.CanTransitionTo(next) {
				s.emitAudit(ctx, actor, audit.ActionTransitionRejected, current,
					fmt.Sprintf("%s -> %s", current.Status, next))
				s.incrementTransitionRejected()
				return nil, dErrors.Newf(dErrors.CodeInvalidTransition,
					"cannot move task from %s to %s", current.Status, next)
			}
			updated.Status = next
			transition = fmt.Sprintf("%s -> %s", current.Status, next)
		}

		if err := s.store.Update(ctx, updated, current.Status); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				lastErr = err
				continue
			}
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update task")
		}

		if transition != "" {
			s.emitAudit(ctx, actor, audit.ActionTaskStatusChanged, updated, transition)
			s.incrementTransition(current.Status, updated.Status)
		} else {
			s.emitAudit(ctx, actor, audit.ActionTaskUpdated, updated, "")
		}
		return updated, nil
	}

	return nil, dErrors.Wrap(lastErr, dErrors.CodeConflict, "task was modified concurrently")
}

// Delete removes a task under the same matrix as Update.
func (s *Service) Delete(ctx context.Context, id domain.TaskID) error {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load task")
	}
	if !scope.VisibleTask(actor, current) {
		return dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	if !scope.CanMutateTask(actor, current) {
		s.emitAudit(ctx, actor, audit.ActionMutationDenied, current, "")
		s.incrementMutationDenied()
		return dErrors.New(dErrors.CodeForbidden, "you cannot delete this task")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete task")
	}

	s.emitAudit(ctx, actor, audit.ActionTaskDeleted, current, "")
	return nil
}

func cloneTask(t *models.Task) *models.Task {
	out := *t
	if t.Participants != nil {
		out.Participants = append([]domain.ActorID(nil), t.Participants...)
	}
	if t.RelatedCaseID != nil {
		id := *t.RelatedCaseID
		out.RelatedCaseID = &id
	}
	return &out
}

func applyTaskUpdate(t *models.Task, req *models.UpdateTaskRequest) {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Notes != nil {
		t.Notes = *req.Notes
	}
	if req.Priority != nil {
		if p, err := domain.ParseTaskPriority(*req.Priority); err == nil {
			t.Priority = p
		}
	}
	if req.Date != nil {
		t.Date = *req.Date
	}
	if req.Time != nil {
		t.Time = *req.Time
	}
}

func (s *Service) emitAudit(ctx context.Context, actor domain.Actor, action string, t *models.Task, detail string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    action,
		Entity:    "task",
		EntityID:  t.ID.String(),
		Region:    t.Region,
		RequestID: requestcontext.RequestID(ctx),
		Detail:    detail,
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) incrementTaskCreated() {
	if s.metrics != nil {
		s.metrics.TasksCreated.Inc()
	}
}

func (s *Service) incrementTransition(from, to domain.TaskStatus) {
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
