package playbook_test

import (
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/service/playbook"
	"github.com/m-mizutani/gt"
)

func boolPtr(b bool) *bool { return &b }

func routerPlaybook() *model.Playbook {
	return &model.Playbook{
		Metadata: model.PlaybookMetadata{
			ID:      "router-reset",
			Name:    "Router reset procedure",
			Version: "2",
		},
		Triggers: model.PlaybookTriggers{
			Products: []string{"router-x"},
			Keywords: []string{"no internet", "connection drops"},
		},
		Steps: []model.PlaybookStep{
			{
				ID:            "power-cycle",
				Title:         "Power cycle the router",
				Instruction:   "Unplug the {{device}} for 30 seconds, then plug it back in.",
				NextOnSuccess: "check-lights",
				NextOnFailure: "check-cable",
				MaxAttempts:   2,
			},
			{
				ID:          "check-cable",
				Title:       "Check the cable",
				Instruction: "Verify the WAN cable is seated on both ends.",
			},
			{
				ID:          "check-lights",
				Title:       "Check the status lights",
				Instruction: "Confirm the internet light is solid green.",
			},
		},
		Variables: map[string]string{"device": "router"},
	}
}

func TestExecuteStepSuccessAdvances(t *testing.T) {
	p := routerPlaybook()
	state := model.NewExecutionState(p)

	result := playbook.ExecuteStep(p, state, types.StepSuccess)
	gt.Bool(t, result.ShouldEscalate).False()
	gt.Equal(t, result.NextStep.ID, "check-lights")
	gt.Equal(t, state.CurrentStepID, "check-lights")
	gt.Array(t, state.CompletedSteps).Length(1)
	gt.Equal(t, state.Outcome, types.PlaybookInProgress)
}

func TestExecuteStepLastSuccessResolves(t *testing.T) {
	p := routerPlaybook()
	state := model.NewExecutionState(p)
	state.CurrentStepID = "check-lights"

	result := playbook.ExecuteStep(p, state, types.StepSuccess)
	gt.Bool(t, result.Completed).True()
	gt.Equal(t, state.Outcome, types.PlaybookResolved)
}

func TestExecuteStepFailureBranch(t *testing.T) {
	p := routerPlaybook()
	state := model.NewExecutionState(p)

	result := playbook.ExecuteStep(p, state, types.StepFailure)
	gt.Bool(t, result.ShouldEscalate).False()
	gt.Equal(t, state.CurrentStepID, "check-cable")
}

func TestExecuteStepFailureStaysWithoutBranch(t *testing.T) {
	p := routerPlaybook()
	state := model.NewExecutionState(p)
	state.CurrentStepID = "check-cable"

	result := playbook.ExecuteStep(p, state, types.StepFailure)
	gt.Bool(t, result.ShouldEscalate).False()
	gt.Equal(t, state.CurrentStepID, "check-cable")
	gt.Equal(t, state.Attempts("check-cable"), 1)
}

func TestExecuteStepExhaustedAttemptsEscalate(t *testing.T) {
	p := routerPlaybook()
	// Remove the alternate branch so failures accumulate on one step
	p.Steps[0].NextOnFailure = ""
	state := model.NewExecutionState(p)

	for i := 0; i < 2; i++ {
		result := playbook.ExecuteStep(p, state, types.StepFailure)
		gt.Bool(t, result.ShouldEscalate).False()
	}

	result := playbook.ExecuteStep(p, state, types.StepFailure)
	gt.Bool(t, result.ShouldEscalate).True()
	gt.Array(t, state.FailedSteps).Has("power-cycle")
	gt.Equal(t, state.Outcome, types.PlaybookEscalated)
}

func TestExecuteStepEscalateOnFailureFalse(t *testing.T) {
	p := routerPlaybook()
	p.Steps[0].NextOnFailure = ""
	p.Steps[0].EscalateOnFailure = boolPtr(false)
	p.Steps[0].MaxAttempts = 1
	state := model.NewExecutionState(p)

	playbook.ExecuteStep(p, state, types.StepFailure)
	result := playbook.ExecuteStep(p, state, types.StepFailure)
	gt.Bool(t, result.ShouldEscalate).False()
	gt.Array(t, state.FailedSteps).Has("power-cycle")
	gt.Equal(t, state.Outcome, types.PlaybookInProgress)
}

func TestExecuteStepMissingStepFailsClosed(t *testing.T) {
	p := routerPlaybook()
	state := model.NewExecutionState(p)
	state.CurrentStepID = "no-such-step"

	result := playbook.ExecuteStep(p, state, types.StepFailure)
	gt.Bool(t, result.ShouldEscalate).True()
	gt.Equal(t, result.EscalationReason, "step not found")
	gt.Equal(t, state.Outcome, types.PlaybookEscalated)
}

func TestFindPlaybooksMatching(t *testing.T) {
	registry := model.NewPlaybookRegistry()
	generic := &model.Playbook{
		Metadata: model.PlaybookMetadata{ID: "generic-triage", Name: "Generic triage"},
		Steps:    []model.PlaybookStep{{ID: "s1", Title: "Ask", Instruction: "Ask for details."}},
	}
	registry.Replace([]*model.Playbook{routerPlaybook(), generic})

	matches := playbook.FindPlaybooks(registry, model.MatchCriteria{
		Product: "router-x",
		Message: "my connection drops every night",
	})
	gt.Array(t, matches).Length(2)
	gt.Equal(t, matches[0].Metadata.ID, "router-reset")
	gt.Equal(t, matches[1].Metadata.ID, "generic-triage")
}

func TestFindPlaybooksExcludesMismatchedProduct(t *testing.T) {
	registry := model.NewPlaybookRegistry()
	registry.Replace([]*model.Playbook{routerPlaybook()})

	matches := playbook.FindPlaybooks(registry, model.MatchCriteria{
		Product: "printer-z",
		Message: "my connection drops",
	})
	gt.Array(t, matches).Length(0)
}

func TestFindPlaybooksTieBreakByVersion(t *testing.T) {
	older := routerPlaybook()
	older.Metadata.ID = "router-reset-v1"
	older.Metadata.Version = "1"
	newer := routerPlaybook()

	registry := model.NewPlaybookRegistry()
	registry.Replace([]*model.Playbook{older, newer})

	matches := playbook.FindPlaybooks(registry, model.MatchCriteria{
		Product: "router-x",
		Message: "no internet at all",
	})
	gt.Array(t, matches).Length(2)
	gt.Equal(t, matches[0].Metadata.ID, "router-reset")
}

func TestFormatStepSubstitutesVariables(t *testing.T) {
	p := routerPlaybook()
	state := model.NewExecutionState(p)

	text := playbook.FormatStep(p.FirstStep(), state.Variables)
	gt.Bool(t, text == "Power cycle the router: Unplug the router for 30 seconds, then plug it back in.").True()
}

func TestFormatStepLeavesUnknownReferences(t *testing.T) {
	step := &model.PlaybookStep{
		Title:       "Check",
		Instruction: "Open {{missing}} now",
	}
	text := playbook.FormatStep(step, map[string]string{"device": "router"})
	gt.Equal(t, text, "Check: Open {{missing}} now")
}
