package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := New(CodeNotFound, "case not found")
	assert.Equal(t, "not_found: case not found", err.Error())

	wrapped := Wrap(errors.New("sql: no rows"), CodeInternal, "lookup failed")
	assert.Equal(t, "internal_error: lookup failed: sql: no rows", wrapped.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	sentinel := errors.New("record not found")
	err := Wrap(sentinel, CodeNotFound, "case not found")

	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := New(CodeInvariantViolation, "title cannot be empty")
	outer := Wrap(inner, CodeValidation, "invalid case")

	assert.True(t, HasCode(outer, CodeValidation))
	assert.True(t, HasCode(outer, CodeInvariantViolation))
	assert.False(t, HasCode(outer, CodeNotFound))

	// fmt wrapping in between must not break the walk.
	fmtWrapped := fmt.Errorf("create case: %w", outer)
	assert.True(t, HasCode(fmtWrapped, CodeInvariantViolation))

	assert.False(t, HasCode(nil, CodeValidation))
	assert.False(t, HasCode(errors.New("plain"), CodeValidation))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, Code(""), GetCode(nil))
	assert.Equal(t, CodeForbidden, GetCode(New(CodeForbidden, "no")))
	assert.Equal(t, CodeInternal, GetCode(errors.New("plain")))

	outer := Wrap(New(CodeInvariantViolation, "x"), CodeValidation, "y")
	assert.Equal(t, CodeValidation, GetCode(outer), "outermost code wins")
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(CodeValidation, "invalid case", []string{
		"victim_name cannot be empty",
		"victim_age must be between 0 and 120",
	})
	require.Len(t, Details(err), 2)
	assert.Nil(t, Details(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:         http.StatusBadRequest,
		CodeInvalidInput:       http.StatusBadRequest,
		CodeValidation:         http.StatusUnprocessableEntity,
		CodeUnauthenticated:    http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeInvalidTransition:  http.StatusConflict,
		CodeConflict:           http.StatusConflict,
		CodeInvariantViolation: http.StatusInternalServerError,
		CodeInternal:           http.StatusInternalServerError,
		Code("made_up"):        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
