package cases

import (
	"log/slog"

	"sutura/internal/cases/handler"
	"sutura/internal/cases/service"
)

// Service exposes case orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the case service.
type Handler = handler.Handler

// NewService constructs the case service with required dependencies.
func NewService(store service.CaseStore, opts ...service.Option) *Service {
	return service.New(store, opts...)
}

// NewHandler constructs an HTTP handler for case routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
