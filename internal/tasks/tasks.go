package tasks

import (
	"log/slog"

	"sutura/internal/tasks/handler"
	"sutura/internal/tasks/service"
)

// Service exposes task orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the task service.
type Handler = handler.Handler

// NewService constructs the task service with required dependencies.
func NewService(store service.TaskStore, cases service.CaseFinder, opts ...service.Option) *Service {
	return service.New(store, cases, opts...)
}

// NewHandler constructs an HTTP handler for task routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
