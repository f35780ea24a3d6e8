package types

import "fmt"

// CaseStatus represents the status of a support case
type CaseStatus string

const (
	CaseStatusOpen           CaseStatus = "open"
	CaseStatusPending        CaseStatus = "pending"
	CaseStatusResolved       CaseStatus = "resolved"
	CaseStatusEscalatedL2    CaseStatus = "escalated_L2"
	CaseStatusEscalatedHuman CaseStatus = "escalated_human"
)

// AllCaseStatuses returns all valid case statuses
func AllCaseStatuses() []CaseStatus {
	return []CaseStatus{
		CaseStatusOpen,
		CaseStatusPending,
		CaseStatusResolved,
		CaseStatusEscalatedL2,
		CaseStatusEscalatedHuman,
	}
}

// caseTransitions is the allowed status transition table.
// resolved is terminal.
var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusOpen:           {CaseStatusPending, CaseStatusResolved, CaseStatusEscalatedL2},
	CaseStatusPending:        {CaseStatusOpen, CaseStatusResolved, CaseStatusEscalatedL2},
	CaseStatusEscalatedL2:    {CaseStatusPending, CaseStatusResolved, CaseStatusEscalatedHuman},
	CaseStatusEscalatedHuman: {CaseStatusResolved},
	CaseStatusResolved:       {},
}

// IsValid checks if the case status is valid
func (s CaseStatus) IsValid() bool {
	_, ok := caseTransitions[s]
	return ok
}

// CanTransitionTo reports whether a transition from s to next is allowed
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	for _, allowed := range caseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions
func (s CaseStatus) IsTerminal() bool {
	return s.IsValid() && len(caseTransitions[s]) == 0
}

// Normalize returns the status, treating empty as CaseStatusOpen
func (s CaseStatus) Normalize() CaseStatus {
	if s == "" {
		return CaseStatusOpen
	}
	return s
}

// String returns the string representation of the case status
func (s CaseStatus) String() string {
	return string(s)
}

// ParseCaseStatus parses a string into a CaseStatus
func ParseCaseStatus(s string) (CaseStatus, error) {
	status := CaseStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid case status: %s", s)
	}
	return status, nil
}
