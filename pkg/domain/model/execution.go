package model

import "github.com/NofaBC/TechSupport-AI/pkg/domain/types"

// ExecutionState is the mutable per-case state of one playbook run.
// It is owned exclusively by the case's conversation turn loop and is
// supplied by the caller on every turn; the engine never shares it
// across cases.
type ExecutionState struct {
	PlaybookID     string
	CurrentStepID  string
	StepAttempts   map[string]int
	CompletedSteps []string
	FailedSteps    []string
	Variables      map[string]string
	Outcome        types.PlaybookOutcome
}

// NewExecutionState creates the initial execution state for a playbook,
// positioned at its first declared step.
func NewExecutionState(p *Playbook) *ExecutionState {
	state := &ExecutionState{
		PlaybookID:   p.Metadata.ID,
		StepAttempts: make(map[string]int),
		Variables:    make(map[string]string),
		Outcome:      types.PlaybookInProgress,
	}
	if first := p.FirstStep(); first != nil {
		state.CurrentStepID = first.ID
	}
	for k, v := range p.Variables {
		state.Variables[k] = v
	}
	return state
}

// Attempts returns the attempt count recorded for the given step
func (s *ExecutionState) Attempts(stepID string) int {
	return s.StepAttempts[stepID]
}
