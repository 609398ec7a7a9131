package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sutura/internal/audit"
	casemodels "sutura/internal/cases/models"
	casestore "sutura/internal/cases/store"
	"sutura/internal/tasks/models"
	"sutura/internal/tasks/store"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/requestcontext"
)

// =============================================================================
// Task Service Test Suite
// =============================================================================
// Justification for unit tests: task visibility and edit rights follow
// different rules, and the assignment privilege is role-gated. Each cell of
// that matrix is pinned down here against in-memory stores.

type TaskServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	cases   *casestore.InMemory
	audit   *audit.InMemoryStore
	service *Service

	agentA domain.Actor
	agentB domain.Actor
	admin  domain.Actor
	super  domain.Actor
}

func TestTaskServiceSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceSuite))
}

func (s *TaskServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.cases = casestore.NewInMemory()
	s.audit = audit.NewInMemoryStore()
	s.service = New(s.store, s.cases, WithAuditPublisher(audit.NewPublisher(s.audit)))

	s.agentA = s.actor(domain.RoleAgent, "Dakar")
	s.agentB = s.actor(domain.RoleAgent, "Dakar")
	s.admin = s.actor(domain.RoleAdmin, "Dakar")
	s.super = s.actor(domain.RoleSuperAdmin, "")
}

func (s *TaskServiceSuite) actor(role domain.Role, region string) domain.Actor {
	actor, err := domain.NewActor(domain.NewActorID(), role, region, "test actor")
	s.Require().NoError(err)
	return actor
}

func (s *TaskServiceSuite) ctx(actor domain.Actor) context.Context {
	return requestcontext.WithActor(context.Background(), actor)
}

func (s *TaskServiceSuite) createTask(actor domain.Actor, req *models.CreateTaskRequest) *models.Task {
	if req == nil {
		req = &models.CreateTaskRequest{Title: "follow-up call"}
	}
	t, err := s.service.Create(s.ctx(actor), req)
	s.Require().NoError(err)
	return t
}

func casestoreSeed(cases *casestore.InMemory,agentID domain.ActorID, region string) (*casemodels.Case, error) {
	now := time.Now()
	c := &casemodels.Case{
		ID:           domain.NewCaseID(),
		AgentID:      agentID,
		VictimRegion: region,
		VictimAge:    30,
		ViolenceType: "physical",
		Status:       domain.CaseStatusPending,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}
	return c, cases.Create(context.Background(), c)
}

// =============================================================================
// Create and Assignment Tests
// =============================================================================

func (s *TaskServiceSuite) TestCreate() {
	s.Run("agent is self-assigned with pending status", func() {
		t := s.createTask(s.agentA, nil)
		s.Equal(s.agentA.ID, t.AssignedTo)
		s.Equal(s.agentA.ID, t.CreatedBy)
		s.Equal(domain.RoleAgent, t.CreatorRole)
		s.Equal(domain.TaskStatusPending, t.Status)
		s.Equal(domain.TaskPriorityMedium, t.Priority)
		s.Equal("Dakar", t.Region)
	})

	s.Run("agent cannot assign to someone else", func() {
		_, err := s.service.Create(s.ctx(s.agentA), &models.CreateTaskRequest{
			Title:      "delegated work",
			AssignedTo: s.agentB.ID.String(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin cannot attach participants", func() {
		_, err := s.service.Create(s.ctx(s.admin), &models.CreateTaskRequest{
			Title:        "regional review",
			Participants: []string{s.agentA.ID.String()},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("super-admin assigns and attaches participants", func() {
		t, err := s.service.Create(s.ctx(s.super), &models.CreateTaskRequest{
			Title:        "coordination meeting",
			AssignedTo:   s.agentA.ID.String(),
			Participants: []string{s.agentB.ID.String()},
		})
		s.Require().NoError(err)
		s.Equal(s.agentA.ID, t.AssignedTo)
		s.True(t.HasParticipant(s.agentB.ID))
		s.Equal(domain.RoleSuperAdmin, t.CreatorRole)
	})

	s.Run("malformed payload collects details", func() {
		_, err := s.service.Create(s.ctx(s.agentA), &models.CreateTaskRequest{
			Title:    "",
			Priority: "urgent",
			Date:     "03/01/2026",
			Time:     "9pm",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Len(dErrors.Details(err), 4)
	})
}

func (s *TaskServiceSuite) TestRelatedCase() {
	c, err := casestoreSeed(s.cases, s.agentA.ID, "Thies")
	s.Require().NoError(err)

	s.Run("task inherits the linked case region", func() {
		t, err := s.service.Create(s.ctx(s.super), &models.CreateTaskRequest{
			Title:         "site visit",
			RelatedCaseID: c.ID.String(),
		})
		s.Require().NoError(err)
		s.Equal("Thies", t.Region)
		s.Require().NotNil(t.RelatedCaseID)
		s.Equal(c.ID, *t.RelatedCaseID)
	})

	s.Run("linking a case outside scope reads as not found", func() {
		_, err := s.service.Create(s.ctx(s.agentB), &models.CreateTaskRequest{
			Title:         "site visit",
			RelatedCaseID: c.ID.String(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("linking a missing case reads as not found", func() {
		_, err := s.service.Create(s.ctx(s.super), &models.CreateTaskRequest{
			Title:         "site visit",
			RelatedCaseID: domain.NewCaseID().String(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Visibility Tests
// =============================================================================

func (s *TaskServiceSuite) TestVisibility() {
	mine := s.createTask(s.agentA, nil)
	shared, err := s.service.Create(s.ctx(s.super), &models.CreateTaskRequest{
		Title:        "joint meeting",
		AssignedTo:   s.agentA.ID.String(),
		Participants: []string{s.agentB.ID.String()},
	})
	s.Require().NoError(err)

	s.Run("participant sees the task but not unrelated ones", func() {
		tasks, err := s.service.List(s.ctx(s.agentB))
		s.NoError(err)
		s.Require().Len(tasks, 1)
		s.Equal(shared.ID, tasks[0].ID)
	})

	s.Run("assignee sees both", func() {
		tasks, err := s.service.List(s.ctx(s.agentA))
		s.NoError(err)
		s.Len(tasks, 2)
	})

	s.Run("unrelated agent sees nothing", func() {
		outsider := s.actor(domain.RoleAgent, "Dakar")
		tasks, err := s.service.List(s.ctx(outsider))
		s.NoError(err)
		s.Empty(tasks)

		_, err = s.service.Get(s.ctx(outsider), mine.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("admin sees tasks in their region", func() {
		tasks, err := s.service.List(s.ctx(s.admin))
		s.NoError(err)
		s.Len(tasks, 1)
	})
}

// =============================================================================
// Edit Permission Matrix Tests
// =============================================================================

func (s *TaskServiceSuite) TestEditMatrix() {
	title := "renamed"

	s.Run("participant cannot edit what they can see", func() {
		t, err := s.service.Create(s.ctx(s.super), &models.CreateTaskRequest{
			Title:        "review session",
			AssignedTo:   s.agentA.ID.String(),
			Participants: []string{s.agentB.ID.String()},
		})
		s.Require().NoError(err)

		_, err = s.service.Get(s.ctx(s.agentB), t.ID)
		s.NoError(err)

		_, err = s.service.Update(s.ctx(s.agentB), t.ID, &models.UpdateTaskRequest{Title: &title})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("assignee edits a task they did not create", func() {
		t, err := s.service.Create(s.ctx(s.super), &models.CreateTaskRequest{
			Title:      "assigned work",
			AssignedTo: s.agentA.ID.String(),
		})
		s.Require().NoError(err)

		updated, err := s.service.Update(s.ctx(s.agentA), t.ID, &models.UpdateTaskRequest{Title: &title})
		s.NoError(err)
		s.Equal(title, updated.Title)
	})

	s.Run("admin cannot edit a super-admin task in their region", func() {
		c, err := casestoreSeed(s.cases, s.agentA.ID, "Dakar")
		s.Require().NoError(err)
		t, err := s.service.Create(s.ctx(s.super), &models.CreateTaskRequest{
			Title:         "directive",
			AssignedTo:    s.agentA.ID.String(),
			RelatedCaseID: c.ID.String(),
		})
		s.Require().NoError(err)

		// visible through region scope, still not editable
		_, err = s.service.Get(s.ctx(s.admin), t.ID)
		s.NoError(err)
		_, err = s.service.Update(s.ctx(s.admin), t.ID, &models.UpdateTaskRequest{Title: &title})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		err = s.service.Delete(s.ctx(s.admin), t.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin edits an agent task in their region", func() {
		t := s.createTask(s.agentA, nil)
		updated, err := s.service.Update(s.ctx(s.admin), t.ID, &models.UpdateTaskRequest{Title: &title})
		s.NoError(err)
		s.Equal(title, updated.Title)
	})

	s.Run("super-admin edits anything", func() {
		t := s.createTask(s.agentA, nil)
		updated, err := s.service.Update(s.ctx(s.super), t.ID, &models.UpdateTaskRequest{Title: &title})
		s.NoError(err)
		s.Equal(title, updated.Title)
	})
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func (s *TaskServiceSuite) TestLifecycle() {
	status := func(v string) *string { return &v }

	s.Run("pending completes", func() {
		t := s.createTask(s.agentA, nil)
		updated, err := s.service.Update(s.ctx(s.agentA), t.ID, &models.UpdateTaskRequest{Status: status("completed")})
		s.NoError(err)
		s.Equal(domain.TaskStatusCompleted, updated.Status)
	})

	s.Run("pending cancels", func() {
		t := s.createTask(s.agentA, nil)
		updated, err := s.service.Update(s.ctx(s.agentA), t.ID, &models.UpdateTaskRequest{Status: status("cancelled")})
		s.NoError(err)
		s.Equal(domain.TaskStatusCancelled, updated.Status)
	})

	s.Run("completed is terminal", func() {
		t := s.createTask(s.agentA, nil)
		_, err := s.service.Update(s.ctx(s.agentA), t.ID, &models.UpdateTaskRequest{Status: status("completed")})
		s.Require().NoError(err)

		_, err = s.service.Update(s.ctx(s.agentA), t.ID, &models.UpdateTaskRequest{Status: status("pending")})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		_, err = s.service.Update(s.ctx(s.agentA), t.ID, &models.UpdateTaskRequest{Status: status("cancelled")})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

// =============================================================================
// Audit Tests
// =============================================================================

func (s *TaskServiceSuite) TestAudit() {
	t := s.createTask(s.agentA, nil)
	done := "completed"
	_, err := s.service.Update(s.ctx(s.agentA), t.ID, &models.UpdateTaskRequest{Status: &done})
	s.Require().NoError(err)

	title := "late edit"
	_, err = s.service.Update(s.ctx(s.admin), t.ID, &models.UpdateTaskRequest{Title: &title})
	s.Require().NoError(err)

	events := s.audit.All()
	s.Require().Len(events, 3)
	s.Equal(audit.ActionTaskCreated, events[0].Action)
	s.Equal(audit.ActionTaskStatusChanged, events[1].Action)
	s.Equal("pending -> completed", events[1].Detail)
	s.Equal(audit.ActionTaskUpdated, events[2].Action)
	s.Equal(s.admin.ID, events[2].ActorID)
}
