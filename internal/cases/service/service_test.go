package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sutura/internal/audit"
	"sutura/internal/cases/models"
	"sutura/internal/cases/store"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/requestcontext"
)

// =============================================================================
// Case Service Test Suite
// =============================================================================
// Justification for unit tests: the case service combines role scoping,
// lifecycle enforcement, and compare-and-set writes. Those interleavings are
// hard to reach through HTTP-level tests, so they are pinned down here.

type CaseServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	audit   *audit.InMemoryStore
	service *Service

	agentA domain.Actor
	agentB domain.Actor
	admin  domain.Actor
	super  domain.Actor
}

func TestCaseServiceSuite(t *testing.T) {
	suite.Run(t, new(CaseServiceSuite))
}

func (s *CaseServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.audit = audit.NewInMemoryStore()
	s.service = New(s.store, WithAuditPublisher(audit.NewPublisher(s.audit)))

	s.agentA = s.actor(domain.RoleAgent, "Dakar")
	s.agentB = s.actor(domain.RoleAgent, "Dakar")
	s.admin = s.actor(domain.RoleAdmin, "Dakar")
	s.super = s.actor(domain.RoleSuperAdmin, "")
}

func (s *CaseServiceSuite) actor(role domain.Role, region string) domain.Actor {
	actor, err := domain.NewActor(domain.NewActorID(), role, region, "test actor")
	s.Require().NoError(err)
	return actor
}

func (s *CaseServiceSuite) ctx(actor domain.Actor) context.Context {
	return requestcontext.WithActor(context.Background(), actor)
}

func (s *CaseServiceSuite) createCase(actor domain.Actor, region string) *models.Case {
	c, err := s.service.Create(s.ctx(actor), &models.CreateCaseRequest{
		VictimRegion: region,
		VictimAge:    30,
		ViolenceType: "physical",
	})
	s.Require().NoError(err)
	return c
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *CaseServiceSuite) TestCreate() {
	s.Run("agent creation defaults to pending", func() {
		c := s.createCase(s.agentA, "Dakar")
		s.Equal(domain.CaseStatusPending, c.Status)
		s.Equal(s.agentA.ID, c.AgentID)
		s.False(c.SubmittedAt.IsZero())
	})

	s.Run("agent cannot choose an initial status", func() {
		c, err := s.service.Create(s.ctx(s.agentA), &models.CreateCaseRequest{
			VictimRegion: "Dakar",
			VictimAge:    30,
			ViolenceType: "physical",
			Status:       "open",
		})
		s.NoError(err)
		s.Equal(domain.CaseStatusPending, c.Status)
	})

	s.Run("admin may supply an initial status", func() {
		c, err := s.service.Create(s.ctx(s.admin), &models.CreateCaseRequest{
			VictimRegion: "Dakar",
			VictimAge:    30,
			ViolenceType: "physical",
			Status:       "open",
		})
		s.NoError(err)
		s.Equal(domain.CaseStatusOpen, c.Status)
	})

	s.Run("missing required fields collect per-field details", func() {
		_, err := s.service.Create(s.ctx(s.agentA), &models.CreateCaseRequest{VictimAge: -1})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Len(dErrors.Details(err), 3)
	})

	s.Run("unauthenticated context is rejected", func() {
		_, err := s.service.Create(context.Background(), &models.CreateCaseRequest{
			VictimRegion: "Dakar",
			ViolenceType: "physical",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthenticated))
	})
}

// =============================================================================
// Scoping Tests
// =============================================================================

func (s *CaseServiceSuite) TestScoping() {
	mine := s.createCase(s.agentA, "Dakar")
	theirs := s.createCase(s.agentB, "Dakar")
	elsewhere := s.createCase(s.super, "Thies")

	s.Run("agent lists only own cases", func() {
		cases, err := s.service.List(s.ctx(s.agentA))
		s.NoError(err)
		s.Require().Len(cases, 1)
		s.Equal(mine.ID, cases[0].ID)
	})

	s.Run("admin lists every case in their region", func() {
		cases, err := s.service.List(s.ctx(s.admin))
		s.NoError(err)
		s.Len(cases, 2)
	})

	s.Run("super-admin lists everything", func() {
		cases, err := s.service.List(s.ctx(s.super))
		s.NoError(err)
		s.Len(cases, 3)
	})

	s.Run("out-of-scope get reads as not found", func() {
		_, err := s.service.Get(s.ctx(s.agentA), theirs.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.Get(s.ctx(s.admin), elsewhere.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("out-of-scope update reads as not found", func() {
		notes := "edited"
		_, err := s.service.Update(s.ctx(s.agentA), theirs.ID, &models.UpdateCaseRequest{Description: &notes})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("out-of-scope delete reads as not found", func() {
		err := s.service.Delete(s.ctx(s.agentA), theirs.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		// the record is untouched
		_, err = s.service.Get(s.ctx(s.agentB), theirs.ID)
		s.NoError(err)
	})
}

func (s *CaseServiceSuite) TestListNewestFirst() {
	base := time.Now()
	var ids []domain.CaseID
	for _, hours := range []int{5, 1, 8, 3} {
		ctx := requestcontext.WithTime(s.ctx(s.agentA), base.Add(time.Duration(hours)*time.Hour))
		c, err := s.service.Create(ctx, &models.CreateCaseRequest{
			VictimRegion: "Dakar",
			VictimAge:    30,
			ViolenceType: "physical",
		})
		s.Require().NoError(err)
		ids = append(ids, c.ID)
	}

	cases, err := s.service.List(s.ctx(s.agentA))
	s.Require().NoError(err)
	s.Require().Len(cases, 4)
	s.Equal(ids[2], cases[0].ID, "newest first")
	s.Equal(ids[0], cases[1].ID)
	s.Equal(ids[3], cases[2].ID)
	s.Equal(ids[1], cases[3].ID)
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func (s *CaseServiceSuite) transitionTo(id domain.CaseID, status string) (*models.Case, error) {
	return s.service.Update(s.ctx(s.super), id, &models.UpdateCaseRequest{Status: &status})
}

func (s *CaseServiceSuite) TestLifecycle() {
	s.Run("full path pending open completed archived", func() {
		c := s.createCase(s.agentA, "Dakar")
		for _, next := range []string{"open", "completed", "archived"} {
			updated, err := s.transitionTo(c.ID, next)
			s.Require().NoError(err)
			s.Equal(next, string(updated.Status))
		}
	})

	s.Run("pending cannot jump to completed", func() {
		c := s.createCase(s.agentA, "Dakar")
		_, err := s.transitionTo(c.ID, "completed")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Contains(err.Error(), "pending")
		s.Contains(err.Error(), "completed")
	})

	s.Run("reapplying the current status is rejected", func() {
		c := s.createCase(s.agentA, "Dakar")
		_, err := s.transitionTo(c.ID, "pending")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("archived is terminal", func() {
		c := s.createCase(s.agentA, "Dakar")
		_, err := s.transitionTo(c.ID, "archived")
		s.Require().NoError(err)
		_, err = s.transitionTo(c.ID, "open")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("follow up loops back to open", func() {
		c := s.createCase(s.agentA, "Dakar")
		for _, next := range []string{"open", "follow_up", "open", "completed"} {
			_, err := s.transitionTo(c.ID, next)
			s.Require().NoError(err)
		}
	})

	s.Run("rejected transition leaves the record unchanged", func() {
		c := s.createCase(s.agentA, "Dakar")
		_, err := s.transitionTo(c.ID, "archived")
		s.Require().NoError(err)
		_, err = s.transitionTo(c.ID, "open")
		s.Require().Error(err)

		got, err := s.service.Get(s.ctx(s.super), c.ID)
		s.NoError(err)
		s.Equal(domain.CaseStatusArchived, got.Status)
	})
}

// =============================================================================
// Update and Concurrency Tests
// =============================================================================

func (s *CaseServiceSuite) TestUpdate() {
	s.Run("nil fields leave values untouched", func() {
		c := s.createCase(s.agentA, "Dakar")
		commune := "Plateau"
		updated, err := s.service.Update(s.ctx(s.agentA), c.ID, &models.UpdateCaseRequest{VictimCommune: &commune})
		s.NoError(err)
		s.Equal("Plateau", updated.VictimCommune)
		s.Equal(c.ViolenceType, updated.ViolenceType)
		s.Equal(c.Status, updated.Status)
		s.Equal(c.SubmittedAt, updated.SubmittedAt)
	})

	s.Run("update stamps the request time", func() {
		c := s.createCase(s.agentA, "Dakar")
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(s.ctx(s.agentA), at)
		notes := "follow up scheduled"
		updated, err := s.service.Update(ctx, c.ID, &models.UpdateCaseRequest{Description: &notes})
		s.NoError(err)
		s.Equal(at, updated.UpdatedAt)
	})

	s.Run("stale write re-validates against the moved record", func() {
		c := s.createCase(s.agentA, "Dakar")

		// A competing writer moves the record between our read and write.
		// The store-level CAS trips, the service re-reads, and the retried
		// transition is judged against the new state.
		moved := *c
		moved.Status = domain.CaseStatusArchived
		s.Require().NoError(s.store.Update(context.Background(), &moved, domain.CaseStatusPending))

		_, err := s.transitionTo(c.ID, "open")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

// =============================================================================
// Audit Tests
// =============================================================================

func (s *CaseServiceSuite) TestAudit() {
	c := s.createCase(s.agentA, "Dakar")
	_, err := s.transitionTo(c.ID, "open")
	s.Require().NoError(err)
	_, err = s.transitionTo(c.ID, "completed")
	s.Require().NoError(err)

	events := s.audit.All()
	s.Require().Len(events, 3)
	s.Equal(audit.ActionCaseCreated, events[0].Action)
	s.Equal(audit.ActionCaseStatusChanged, events[1].Action)
	s.Equal("pending -> open", events[1].Detail)
	s.Equal("open -> completed", events[2].Detail)
	for _, e := range events {
		s.Equal("case", e.Entity)
		s.Equal(c.ID.String(), e.EntityID)
		s.Equal("Dakar", e.Region)
	}
}
