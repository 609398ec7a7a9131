package domain

import dErrors "sutura/pkg/domain-errors"

// CaseStatus is the lifecycle state of a case report.
//
// The legal transitions form a fixed table:
//
//	pending   → open, archived
//	open      → completed, follow_up, archived
//	follow_up → open, archived
//	completed → archived
//	archived  → (terminal)
//
// Self-transitions are not in the table; re-applying the current status is
// rejected the same as any other illegal transition. `completed` and
// `archived` are distinct states: archiving does not imply resolution.
type CaseStatus string

const (
	CaseStatusPending   CaseStatus = "pending"
	CaseStatusOpen      CaseStatus = "open"
	CaseStatusCompleted CaseStatus = "completed"
	CaseStatusFollowUp  CaseStatus = "follow_up"
	CaseStatusArchived  CaseStatus = "archived"
)

var validCaseStatuses = map[CaseStatus]bool{
	CaseStatusPending:   true,
	CaseStatusOpen:      true,
	CaseStatusCompleted: true,
	CaseStatusFollowUp:  true,
	CaseStatusArchived:  true,
}

// caseTransitions is the single source of truth for legal status changes.
var caseTransitions = map[CaseStatus]map[CaseStatus]bool{
	CaseStatusPending:   {CaseStatusOpen: true, CaseStatusArchived: true},
	CaseStatusOpen:      {CaseStatusCompleted: true, CaseStatusFollowUp: true, CaseStatusArchived: true},
	CaseStatusFollowUp:  {CaseStatusOpen: true, CaseStatusArchived: true},
	CaseStatusCompleted: {CaseStatusArchived: true},
	CaseStatusArchived:  {},
}

// ParseCaseStatus constructs a CaseStatus from external input.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseCaseStatus(s string) (CaseStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "case status cannot be empty")
	}
	st := CaseStatus(s)
	if !st.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported case status %q", s)
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s CaseStatus) IsValid() bool {
	return validCaseStatuses[s]
}

// CanTransitionTo reports whether the fixed table permits moving to the
// given status. Unknown states on either side resolve to false.
func (s CaseStatus) CanTransitionTo(to CaseStatus) bool {
	return caseTransitions[s][to]
}

// IsTerminal reports whether no further transitions are possible.
func (s CaseStatus) IsTerminal() bool {
	return s.IsValid() && len(caseTransitions[s]) == 0
}

// String returns the string representation of the status.
func (s CaseStatus) String() string {
	return string(s)
}
