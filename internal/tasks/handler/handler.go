// Package handler exposes the task API over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sutura/internal/platform/middleware"
	"sutura/internal/tasks/models"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/platform/httputil"
)

// Service defines the task operations the handler depends on.
type Service interface {
	Create(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error)
	Get(ctx context.Context, id domain.TaskID) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, id domain.TaskID, req *models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id domain.TaskID) error
}

// Handler handles task endpoints.
type Handler struct {
	tasks  Service
	logger *slog.Logger
}

// New creates a new task Handler.
func New(tasks Service, logger *slog.Logger) *Handler {
	return &Handler{tasks: tasks, logger: logger}
}

// Register mounts the task routes. Authentication middleware is applied by
// the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{taskID}", h.handleGet)
		r.Put("/{taskID}", h.handleUpdate)
		r.Delete("/{taskID}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateTaskRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, err := h.tasks.Create(ctx, &req)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to create task", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	tasks, err := h.tasks.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to list tasks", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to load task", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateTaskRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, err := h.tasks.Update(ctx, id, &req)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to update task", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// taskIDFromPath parses the {taskID} path parameter; malformed IDs read as
// not found.
func (h *Handler) taskIDFromPath(w http.ResponseWriter, r *http.Request) (domain.TaskID, bool) {
	id, err := domain.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "task not found"))
		return domain.TaskID{}, false
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
