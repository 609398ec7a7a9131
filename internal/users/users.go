package users

import (
	"log/slog"

	"sutura/internal/users/handler"
	"sutura/internal/users/service"
)

// Service exposes account administration.
type Service = service.Service

// Handler wires HTTP endpoints to the user service.
type Handler = handler.Handler

// NewService constructs the user service with required dependencies.
func NewService(store service.UserStore, opts ...service.Option) *Service {
	return service.New(store, opts...)
}

// NewHandler constructs an HTTP handler for user routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
