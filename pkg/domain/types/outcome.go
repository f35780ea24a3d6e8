package types

import "fmt"

// PlaybookOutcome represents the overall outcome of a playbook execution
type PlaybookOutcome string

const (
	PlaybookInProgress PlaybookOutcome = "in_progress"
	PlaybookResolved   PlaybookOutcome = "resolved"
	PlaybookEscalated  PlaybookOutcome = "escalated"
)

// IsValid checks if the playbook outcome is valid
func (o PlaybookOutcome) IsValid() bool {
	switch o {
	case PlaybookInProgress, PlaybookResolved, PlaybookEscalated:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the outcome ends the execution
func (o PlaybookOutcome) IsTerminal() bool {
	return o == PlaybookResolved || o == PlaybookEscalated
}

// String returns the string representation of the playbook outcome
func (o PlaybookOutcome) String() string {
	return string(o)
}

// StepOutcome is the caller-reported result of one troubleshooting step
type StepOutcome string

const (
	StepSuccess StepOutcome = "success"
	StepFailure StepOutcome = "failure"
)

// IsValid checks if the step outcome is valid
func (o StepOutcome) IsValid() bool {
	return o == StepSuccess || o == StepFailure
}

// String returns the string representation of the step outcome
func (o StepOutcome) String() string {
	return string(o)
}

// ParseStepOutcome parses a string into a StepOutcome
func ParseStepOutcome(s string) (StepOutcome, error) {
	outcome := StepOutcome(s)
	if !outcome.IsValid() {
		return "", fmt.Errorf("invalid step outcome: %s", s)
	}
	return outcome, nil
}
