//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sutura/internal/cases/models"
	"sutura/internal/cases/store"
	"sutura/pkg/domain"
	"sutura/pkg/platform/sentinel"
	"sutura/pkg/testutil/containers"
)

type PostgresCaseStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresCaseStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCaseStoreSuite))
}

func (s *PostgresCaseStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresCaseStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "cases"))
}

func newTestCase(status domain.CaseStatus) *models.Case {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Case{
		ID:            domain.NewCaseID(),
		AgentID:       domain.NewActorID(),
		VictimRegion:  "Dakar",
		VictimCommune: "Plateau",
		VictimAge:     26,
		MaritalStatus: "single",
		ViolenceType:  "physical",
		Status:        status,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}
}

func (s *PostgresCaseStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	c := newTestCase(domain.CaseStatusPending)
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.AgentID, found.AgentID)
	s.Equal(c.VictimRegion, found.VictimRegion)
	s.Equal(c.VictimCommune, found.VictimCommune)
	s.Equal(c.Status, found.Status)
	s.WithinDuration(c.SubmittedAt, found.SubmittedAt, time.Millisecond)
}

func (s *PostgresCaseStoreSuite) TestDuplicateCreate() {
	ctx := context.Background()
	c := newTestCase(domain.CaseStatusPending)
	s.Require().NoError(s.store.Create(ctx, c))
	s.ErrorIs(s.store.Create(ctx, c), sentinel.ErrConflict)
}

func (s *PostgresCaseStoreSuite) TestCompareAndSetUpdate() {
	ctx := context.Background()
	c := newTestCase(domain.CaseStatusPending)
	s.Require().NoError(s.store.Create(ctx, c))

	updated := *c
	updated.Status = domain.CaseStatusOpen
	s.Require().NoError(s.store.Update(ctx, &updated, domain.CaseStatusPending))

	stale := *c
	stale.Status = domain.CaseStatusArchived
	s.ErrorIs(s.store.Update(ctx, &stale, domain.CaseStatusPending), sentinel.ErrConflict)

	missing := newTestCase(domain.CaseStatusPending)
	s.ErrorIs(s.store.Update(ctx, missing, domain.CaseStatusPending), sentinel.ErrNotFound)
}

func (s *PostgresCaseStoreSuite) TestListOrdering() {
	ctx := context.Background()
	older := newTestCase(domain.CaseStatusPending)
	older.SubmittedAt = older.SubmittedAt.Add(-time.Hour)
	newer := newTestCase(domain.CaseStatusPending)

	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(newer.ID, all[0].ID)
	s.Equal(older.ID, all[1].ID)
}

func (s *PostgresCaseStoreSuite) TestDelete() {
	ctx := context.Background()
	c := newTestCase(domain.CaseStatusPending)
	s.Require().NoError(s.store.Create(ctx, c))

	s.Require().NoError(s.store.Delete(ctx, c.ID))
	_, err := s.store.FindByID(ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, c.ID), sentinel.ErrNotFound)
}
