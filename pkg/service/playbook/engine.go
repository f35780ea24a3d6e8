package playbook

import (
	"sort"
	"strings"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
)

// StepResult is the outcome of one ExecuteStep call. The execution
// state passed in is mutated in place; the result carries the signals
// the agent turn acts on.
type StepResult struct {
	ShouldEscalate   bool
	EscalationReason string
	NextStep         *model.PlaybookStep
	Completed        bool
}

// ExecuteStep advances the state machine for one reported step outcome.
// A missing current step fails closed with an escalation signal rather
// than stalling the case.
func ExecuteStep(p *model.Playbook, state *model.ExecutionState, outcome types.StepOutcome) *StepResult {
	step := p.Step(state.CurrentStepID)
	if step == nil {
		state.Outcome = types.PlaybookEscalated
		return &StepResult{
			ShouldEscalate:   true,
			EscalationReason: "step not found",
		}
	}

	state.StepAttempts[step.ID]++
	attempts := state.StepAttempts[step.ID]

	if outcome == types.StepSuccess {
		state.CompletedSteps = append(state.CompletedSteps, step.ID)
		if step.NextOnSuccess == "" {
			// No next step means the procedure ran to completion
			state.Outcome = types.PlaybookResolved
			return &StepResult{Completed: true}
		}
		state.CurrentStepID = step.NextOnSuccess
		return &StepResult{NextStep: p.Step(step.NextOnSuccess)}
	}

	if attempts > step.AttemptLimit() {
		state.FailedSteps = append(state.FailedSteps, step.ID)
		if step.ShouldEscalateOnFailure() {
			state.Outcome = types.PlaybookEscalated
			return &StepResult{
				ShouldEscalate:   true,
				EscalationReason: "step attempts exhausted",
				NextStep:         step,
			}
		}
		return &StepResult{NextStep: step}
	}

	if step.NextOnFailure != "" {
		state.CurrentStepID = step.NextOnFailure
		return &StepResult{NextStep: p.Step(step.NextOnFailure)}
	}
	return &StepResult{NextStep: step}
}

// FindPlaybooks returns the registered playbooks matching the criteria,
// most specific first. Ties break by version descending, then ID.
func FindPlaybooks(registry *model.PlaybookRegistry, c model.MatchCriteria) []*model.Playbook {
	type candidate struct {
		playbook *model.Playbook
		score    int
	}

	var candidates []candidate
	for _, p := range registry.List() {
		if score := p.MatchScore(c); score >= 0 {
			candidates = append(candidates, candidate{playbook: p, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		vi, vj := candidates[i].playbook.Metadata.Version, candidates[j].playbook.Metadata.Version
		if vi != vj {
			return vi > vj
		}
		return candidates[i].playbook.Metadata.ID < candidates[j].playbook.Metadata.ID
	})

	result := make([]*model.Playbook, len(candidates))
	for i, c := range candidates {
		result[i] = c.playbook
	}
	return result
}

// FormatStep renders a step instruction for prompt injection, expanding
// {{name}} references from the execution-state variables. Unknown
// references are left as-is so a typo is visible instead of vanishing.
func FormatStep(step *model.PlaybookStep, variables map[string]string) string {
	var sb strings.Builder
	sb.WriteString(step.Title)
	sb.WriteString(": ")
	sb.WriteString(substitute(step.Instruction, variables))
	if step.ExpectedOutcome != "" {
		sb.WriteString("\nExpected outcome: ")
		sb.WriteString(substitute(step.ExpectedOutcome, variables))
	}
	return sb.String()
}

func substitute(text string, variables map[string]string) string {
	if len(variables) == 0 {
		return text
	}
	pairs := make([]string, 0, len(variables)*2)
	for k, v := range variables {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
