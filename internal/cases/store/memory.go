// Package store provides case persistence. The in-memory implementation
// backs development and tests; PostgreSQL backs production. Both enforce
// the same compare-and-set discipline on updates so lifecycle checks hold
// at write time.
package store

import (
	"context"
	"sort"
	"sync"

	"sutura/internal/cases/models"
	"sutura/pkg/domain"
	"sutura/pkg/platform/sentinel"
)

// InMemory keeps cases in a map guarded by a RWMutex. It intentionally
// favors clarity over performance.
type InMemory struct {
	mu    sync.RWMutex
	cases map[domain.CaseID]models.Case
}

func NewInMemory() *InMemory {
	return &InMemory{cases: make(map[domain.CaseID]models.Case)}
}

func (s *InMemory) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; ok {
		return sentinel.ErrConflict
	}
	s.cases[c.ID] = *c
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.cases[id]; ok {
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns a snapshot of every case, newest first, matching the
// Postgres store's ordering. Scoping happens in the service; reads never
// block concurrent writers beyond the map copy.
func (s *InMemory) List(_ context.Context) ([]*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Case, 0, len(s.cases))
	for _, c := range s.cases {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// Update persists the record if and only if the stored status still equals
// expectedStatus - the compare-and-set that keeps lifecycle checks honest
// under concurrent mutation.
func (s *InMemory) Update(_ context.Context, c *models.Case, expectedStatus domain.CaseStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.cases[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expectedStatus {
		return sentinel.ErrConflict
	}
	s.cases[c.ID] = *c
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.CaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.cases, id)
	return nil
}
