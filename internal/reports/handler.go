package reports

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sutura/internal/platform/middleware"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/platform/httputil"
)

// Reporter defines the report operations the handler depends on.
type Reporter interface {
	Summary(ctx context.Context) (*Summary, error)
	Breakdown(ctx context.Context, dimension string) (*Breakdown, error)
	Trend(ctx context.Context) ([]TrendPoint, error)
}

// Handler handles report endpoints.
type Handler struct {
	reports Reporter
	logger  *slog.Logger
}

// NewHandler creates a new report Handler.
func NewHandler(reports Reporter, logger *slog.Logger) *Handler {
	return &Handler{reports: reports, logger: logger}
}

// Register mounts the report routes. Authentication middleware is applied
// by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/summary", h.handleSummary)
		r.Get("/breakdown", h.handleBreakdown)
		r.Get("/trend", h.handleTrend)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.reports.Summary(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to compute summary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dimension := r.URL.Query().Get("dimension")
	if dimension == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "dimension query parameter is required"))
		return
	}
	result, err := h.reports.Breakdown(ctx, dimension)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to compute breakdown", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	points, err := h.reports.Trend(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to compute trend", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"trend": points})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
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
