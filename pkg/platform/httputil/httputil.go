// Package httputil centralizes JSON response writing and request decoding so
// handlers stay thin and error envelopes stay consistent.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "sutura/pkg/domain-errors"
)

// Preparer is implemented by request DTOs: Normalize trims and canonicalizes
// fields, Validate reports structural problems as domain errors.
type Preparer interface {
	Normalize()
	Validate() error
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors omit the description so infrastructure detail never leaks;
// validation errors carry their per-field detail list.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""
	var details []string

	var derr *dErrors.Error
	if errors.As(err, &derr) {
		code = derr.Code
		message = derr.Message
		details = derr.Details
	}

	body := map[string]any{"error": string(code)}
	switch code {
	case dErrors.CodeInternal, dErrors.CodeInvariantViolation:
		// keep the description out of the response
	default:
		if message != "" {
			body["error_description"] = message
		}
	}
	if len(details) > 0 {
		body["details"] = details
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// DecodeAndPrepare decodes the request body into T, normalizes it, and
// validates it. On failure it writes the error response and returns false so
// the handler can bail with a bare return.
func DecodeAndPrepare[T any, P interface {
	*T
	Preparer
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"error", err,
				"request_id", requestID,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return req, false
	}

	p := P(&req)
	p.Normalize()
	if err := p.Validate(); err != nil {
		WriteError(w, err)
		return req, false
	}
	return req, true
}
