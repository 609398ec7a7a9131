package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sutura/internal/cases/models"
	"sutura/pkg/domain"
	"sutura/pkg/platform/sentinel"
)

type CaseStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CaseStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCaseStoreSuite(t *testing.T) {
	suite.Run(t, new(CaseStoreSuite))
}

func (s *CaseStoreSuite) newCase(status domain.CaseStatus) *models.Case {
	now := time.Now()
	return &models.Case{
		ID:           domain.NewCaseID(),
		AgentID:      domain.NewActorID(),
		VictimRegion: "Dakar",
		VictimAge:    30,
		ViolenceType: "physical",
		Status:       status,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}
}

func (s *CaseStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds case by ID", func() {
		c := s.newCase(domain.CaseStatusPending)
		s.Require().NoError(s.store.Create(s.ctx, c))

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.ViolenceType, found.ViolenceType)
		s.Equal(c.Status, found.Status)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewCaseID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		c := s.newCase(domain.CaseStatusPending)
		s.Require().NoError(s.store.Create(s.ctx, c))
		s.ErrorIs(s.store.Create(s.ctx, c), sentinel.ErrConflict)
	})

	s.Run("FindByID returns a copy", func() {
		c := s.newCase(domain.CaseStatusPending)
		s.Require().NoError(s.store.Create(s.ctx, c))

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		found.ViolenceType = "mutated"

		again, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal("physical", again.ViolenceType)
	})
}

func (s *CaseStoreSuite) TestCompareAndSetUpdate() {
	s.Run("update succeeds when expected status matches", func() {
		c := s.newCase(domain.CaseStatusPending)
		s.Require().NoError(s.store.Create(s.ctx, c))

		updated := *c
		updated.Status = domain.CaseStatusOpen
		s.Require().NoError(s.store.Update(s.ctx, &updated, domain.CaseStatusPending))

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusOpen, found.Status)
	})

	s.Run("update fails when the stored status moved", func() {
		c := s.newCase(domain.CaseStatusOpen)
		s.Require().NoError(s.store.Create(s.ctx, c))

		stale := *c
		stale.Status = domain.CaseStatusArchived
		err := s.store.Update(s.ctx, &stale, domain.CaseStatusPending)
		s.Require().ErrorIs(err, sentinel.ErrConflict)

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusOpen, found.Status)
	})

	s.Run("update of a missing case reports ErrNotFound", func() {
		missing := s.newCase(domain.CaseStatusPending)
		err := s.store.Update(s.ctx, missing, domain.CaseStatusPending)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *CaseStoreSuite) TestDelete() {
	c := s.newCase(domain.CaseStatusPending)
	s.Require().NoError(s.store.Create(s.ctx, c))
	s.Require().NoError(s.store.Delete(s.ctx, c.ID))

	_, err := s.store.FindByID(s.ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, c.ID), sentinel.ErrNotFound)
}

func (s *CaseStoreSuite) TestList() {
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Create(s.ctx, s.newCase(domain.CaseStatusPending)))
	}
	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *CaseStoreSuite) TestListOrdering() {
	// Insertion order is shuffled relative to submission time so map
	// iteration cannot accidentally produce the right answer.
	base := time.Now()
	var ids []domain.CaseID
	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 7 * time.Hour, 5 * time.Hour} {
		c := s.newCase(domain.CaseStatusPending)
		c.SubmittedAt = base.Add(offset)
		s.Require().NoError(s.store.Create(s.ctx, c))
		ids = append(ids, c.ID)
	}

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 4)
	s.Equal(ids[2], all[0].ID, "newest first")
	s.Equal(ids[3], all[1].ID)
	s.Equal(ids[0], all[2].ID)
	s.Equal(ids[1], all[3].ID)
}
