// Package store provides task persistence. The in-memory implementation
// backs development and tests; PostgreSQL backs production. Both enforce
// the same compare-and-set discipline on updates.
package store

import (
	"context"
	"sort"
	"sync"

	"sutura/internal/tasks/models"
	"sutura/pkg/domain"
	"sutura/pkg/platform/sentinel"
)

// InMemory keeps tasks in a map guarded by a RWMutex.
type InMemory struct {
	mu    sync.RWMutex
	tasks map[domain.TaskID]models.Task
}

func NewInMemory() *InMemory {
	return &InMemory{tasks: make(map[domain.TaskID]models.Task)}
}

func (s *InMemory) Create(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; ok {
		return sentinel.ErrConflict
	}
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.TaskID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tasks[id]; ok {
		out := cloneTask(&t)
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns a snapshot of every task, newest first, matching the
// Postgres store's ordering. Scoping happens in the service.
func (s *InMemory) List(_ context.Context) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		c := cloneTask(&t)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update persists the record if and only if the stored status still equals
// expectedStatus.
func (s *InMemory) Update(_ context.Context, t *models.Task, expectedStatus domain.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tasks[t.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expectedStatus {
		return sentinel.ErrConflict
	}
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// cloneTask copies the task with its participant slice so callers can never
// alias store-owned memory.
func cloneTask(t *models.Task) models.Task {
	out := *t
	if t.Participants != nil {
		out.Participants = append([]domain.ActorID(nil), t.Participants...)
	}
	if t.RelatedCaseID != nil {
		id := *t.RelatedCaseID
		out.RelatedCaseID = &id
	}
	return out
}
