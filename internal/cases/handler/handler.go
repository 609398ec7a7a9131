// Package handler exposes the case API over HTTP. Handlers stay thin:
// decode, delegate, translate errors.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sutura/internal/cases/models"
	"sutura/internal/platform/middleware"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/platform/httputil"
)

// Service defines the case operations the handler depends on.
type Service interface {
	Create(ctx context.Context, req *models.CreateCaseRequest) (*models.Case, error)
	Get(ctx context.Context, id domain.CaseID) (*models.Case, error)
	List(ctx context.Context) ([]*models.Case, error)
	Update(ctx context.Context, id domain.CaseID, req *models.UpdateCaseRequest) (*models.Case, error)
	Delete(ctx context.Context, id domain.CaseID) error
}

// Handler handles case endpoints.
type Handler struct {
	cases  Service
	logger *slog.Logger
}

// New creates a new case Handler.
func New(cases Service, logger *slog.Logger) *Handler {
	return &Handler{cases: cases, logger: logger}
}

// Register mounts the case routes. Authentication middleware is applied by
// the caller so all protected modules share one chain.
func (h *Handler) Register(r chi.Router) {
	r.Route("/cases", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{caseID}", h.handleGet)
		r.Put("/{caseID}", h.handleUpdate)
		r.Delete("/{caseID}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateCaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.cases.Create(ctx, &req)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to create case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	cases, err := h.cases.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to list cases", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.caseIDFromPath(w, r)
	if !ok {
		return
	}

	c, err := h.cases.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to load case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.caseIDFromPath(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateCaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.cases.Update(ctx, id, &req)
	if err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to update case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, ok := h.caseIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.cases.Delete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, requestID, "failed to delete case", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// caseIDFromPath parses the {caseID} path parameter. A malformed ID writes
// a not-found response so probing with junk IDs learns nothing.
func (h *Handler) caseIDFromPath(w http.ResponseWriter, r *http.Request) (domain.CaseID, bool) {
	id, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "case not found"))
		return domain.CaseID{}, false
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
