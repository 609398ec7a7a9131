package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sutura/pkg/domain-errors"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "world", decodeBody(t, rec)["hello"])
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.New(dErrors.CodeNotFound, "case not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "case not found", body["error_description"])
}

func TestWriteErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.WithDetails(dErrors.CodeValidation, "invalid case", []string{
		"victim_name cannot be empty",
		"victim_age must be between 0 and 120",
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "validation_error", body["error"])
	assert.Len(t, body["details"], 2)
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to load case"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "internal_error", body["error"])
	_, present := body["error_description"]
	assert.False(t, present, "internal detail must not leak")
}

func TestWriteErrorNonDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("something unexpected"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeBody(t, rec)["error"])
}

type prepareProbe struct {
	Name string `json:"name"`
}

func (p *prepareProbe) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
}

func (p *prepareProbe) Validate() error {
	if p.Name == "" {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid probe", []string{"name cannot be empty"})
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("decodes and normalizes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  Awa  "}`))
		rec := httptest.NewRecorder()

		probe, ok := DecodeAndPrepare[prepareProbe](rec, req, nil, context.Background(), "req-1")
		require.True(t, ok)
		assert.Equal(t, "Awa", probe.Name)
	})

	t.Run("malformed JSON yields bad_request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		rec := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[prepareProbe](rec, req, nil, context.Background(), "req-2")
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decodeBody(t, rec)["error"])
	})

	t.Run("validation failure writes the envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"   "}`))
		rec := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[prepareProbe](rec, req, nil, context.Background(), "req-3")
		require.False(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
