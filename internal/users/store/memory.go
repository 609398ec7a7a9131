// Package store provides user persistence with email uniqueness.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"sutura/internal/users/models"
	"sutura/pkg/domain"
	"sutura/pkg/platform/sentinel"
)

// InMemory keeps users in a map guarded by a RWMutex and enforces
// case-insensitive email uniqueness like the Postgres store's index.
type InMemory struct {
	mu      sync.RWMutex
	users   map[domain.ActorID]models.User
	byEmail map[string]domain.ActorID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[domain.ActorID]models.User),
		byEmail: make(map[string]domain.ActorID),
	}
}

func (s *InMemory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return sentinel.ErrConflict
	}
	key := strings.ToLower(u.Email)
	if _, ok := s.byEmail[key]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.users[u.ID] = *u
	s.byEmail[key] = u.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ActorID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[strings.ToLower(email)]; ok {
		u := s.users[id]
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns every user, newest first, matching the Postgres store's
// ordering.
func (s *InMemory) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[u.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	newKey := strings.ToLower(u.Email)
	oldKey := strings.ToLower(current.Email)
	if newKey != oldKey {
		if _, taken := s.byEmail[newKey]; taken {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.byEmail, oldKey)
		s.byEmail[newKey] = u.ID
	}
	s.users[u.ID] = *u
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.ActorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, strings.ToLower(u.Email))
	delete(s.users, id)
	return nil
}
