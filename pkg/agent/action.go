// Package agent holds the pieces shared by the tier-1 and tier-2 tool
// sets: the typed actions tools record and the per-turn recorder that
// enforces the one-action-per-turn rule.
package agent

import (
	"sync"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
)

// Action is a structured side-effect signal recorded by a tool call.
// Exactly one variant per turn reaches the caller; informational tools
// (documentation lookup, diagnostics) record nothing.
type Action interface {
	isAction()
}

// PlaybookStepAction reports the outcome of executing the current
// playbook step.
type PlaybookStepAction struct {
	PlaybookID     string
	StepID         string
	Outcome        types.StepOutcome
	ShouldEscalate bool
	Reason         string
	Completed      bool
	NextStepID     string
}

// EscalateAction requests a handoff to a higher tier
type EscalateAction struct {
	Level  types.Tier
	Reason string
}

// ResolveAction marks the case resolved
type ResolveAction struct {
	Summary string
}

// VisualSessionAction reports a created screen/camera sharing session
type VisualSessionAction struct {
	SessionID model.VisualSessionID
	Mode      types.VisualMode
	JoinURL   string
}

func (PlaybookStepAction) isAction()  {}
func (EscalateAction) isAction()      {}
func (ResolveAction) isAction()       {}
func (VisualSessionAction) isAction() {}

// Recorder collects the action of one turn. The first recorded action
// wins; tools observe the rejection and tell the model to stop issuing
// further side effects.
type Recorder struct {
	mu     sync.Mutex
	action Action
}

// NewRecorder creates an empty per-turn Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record stores the action if none has been recorded this turn.
// It reports whether the action was accepted.
func (r *Recorder) Record(a Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.action != nil {
		return false
	}
	r.action = a
	return true
}

// Action returns the recorded action, or nil if the turn had none
func (r *Recorder) Action() Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.action
}
