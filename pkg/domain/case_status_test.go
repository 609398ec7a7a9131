package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sutura/pkg/domain-errors"
)

func TestCaseStatusTransitions(t *testing.T) {
	all := []CaseStatus{
		CaseStatusPending,
		CaseStatusOpen,
		CaseStatusCompleted,
		CaseStatusFollowUp,
		CaseStatusArchived,
	}

	// Exhaustive over the full from/to matrix so any accidental loosening of
	// the table shows up as a failing pair.
	legal := map[CaseStatus][]CaseStatus{
		CaseStatusPending:   {CaseStatusOpen, CaseStatusArchived},
		CaseStatusOpen:      {CaseStatusCompleted, CaseStatusFollowUp, CaseStatusArchived},
		CaseStatusFollowUp:  {CaseStatusOpen, CaseStatusArchived},
		CaseStatusCompleted: {CaseStatusArchived},
		CaseStatusArchived:  {},
	}

	for _, from := range all {
		allowed := map[CaseStatus]bool{}
		for _, to := range legal[from] {
			allowed[to] = true
		}
		for _, to := range all {
			got := from.CanTransitionTo(to)
			assert.Equal(t, allowed[to], got, "%s -> %s", from, to)
		}
	}
}

func TestCaseStatusSelfTransitionRejected(t *testing.T) {
	for _, st := range []CaseStatus{CaseStatusPending, CaseStatusOpen, CaseStatusCompleted, CaseStatusFollowUp, CaseStatusArchived} {
		assert.False(t, st.CanTransitionTo(st), "self transition %s", st)
	}
}

func TestCaseStatusTerminal(t *testing.T) {
	assert.True(t, CaseStatusArchived.IsTerminal())
	assert.False(t, CaseStatusCompleted.IsTerminal())
	assert.False(t, CaseStatusPending.IsTerminal())
	assert.False(t, CaseStatus("vanished").IsTerminal())
}

func TestParseCaseStatus(t *testing.T) {
	st, err := ParseCaseStatus("follow_up")
	require.NoError(t, err)
	assert.Equal(t, CaseStatusFollowUp, st)

	_, err = ParseCaseStatus("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseCaseStatus("Open")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "status values are case sensitive")

	_, err = ParseCaseStatus("closed")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCaseStatusUnknownStatesFailClosed(t *testing.T) {
	assert.False(t, CaseStatus("vanished").CanTransitionTo(CaseStatusOpen))
	assert.False(t, CaseStatusOpen.CanTransitionTo(CaseStatus("vanished")))
}
