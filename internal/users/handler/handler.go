// Package handler exposes the account administration API over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sutura/internal/platform/middleware"
	"sutura/internal/users/models"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/platform/httputil"
)

// Service defines the account operations the handler depends on.
type Service interface {
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, string, error)
	Get(ctx context.Context, id domain.ActorID) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id domain.ActorID, req *models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id domain.ActorID) error
}

// Handler handles user endpoints.
type Handler struct {
	users  Service
	logger *slog.Logger
}

// New creates a new user Handler.
func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// Register mounts the user routes. Authentication middleware is applied by
// the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{userID}", h.handleGet)
		r.Put("/{userID}", h.handleUpdate)
		r.Delete("/{userID}", h.handleDelete)
	})
}

// createUserResponse carries the account plus, when the service generated
// one, the initial password. It is shown exactly once.
type createUserResponse struct {
	*models.User
	InitialPassword string `json:"initial_password,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	u, password, err := h.users.Create(ctx, &req)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to create user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createUserResponse{User: u, InitialPassword: password})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	users, err := h.users.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to list users", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.userIDFromPath(w, r)
	if !ok {
		return
	}

	u, err := h.users.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to load user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.userIDFromPath(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	u, err := h.users.Update(ctx, id, &req)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to update user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.userIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userIDFromPath(w http.ResponseWriter, r *http.Request) (domain.ActorID, bool) {
	id, err := domain.ParseActorID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
		return domain.ActorID{}, false
	}
	return id, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, requestID, msg string, err error) {
	switch dErrors.GetCode(err) {
	case dErrors.CodeInternal, dErrors.CodeInvariantViolation:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	default:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
