// Package tier1 builds the constrained tool set of the first-line
// agent: documentation lookup, playbook step execution, and the three
// case disposition tools.
package tier1

import (
	"context"
	"fmt"

	"github.com/NofaBC/TechSupport-AI/pkg/agent"
	"github.com/NofaBC/TechSupport-AI/pkg/agent/tool"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/service/playbook"
	"github.com/NofaBC/TechSupport-AI/pkg/service/retrieval"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
	"github.com/m-mizutani/gollem"
)

// Deps carries everything the tier-1 tools need for one turn
type Deps struct {
	Retrieval retrieval.Service
	Recorder  *agent.Recorder

	TenantID string
	Product  string
	Language string

	// Playbook and State are nil when no playbook is active for the case
	Playbook *model.Playbook
	State    *model.ExecutionState
}

// New builds the tier-1 tool set for one conversation turn
func New(deps Deps) []gollem.Tool {
	return []gollem.Tool{
		&lookupDocumentationTool{deps: deps},
		&executePlaybookStepTool{deps: deps},
		&escalateToL2Tool{deps: deps},
		&escalateToHumanTool{deps: deps},
		&markResolvedTool{deps: deps},
	}
}

const rejectedNote = "another action was already taken this turn; do not take further actions"

// lookupDocumentationTool searches the tenant knowledge base
type lookupDocumentationTool struct {
	deps Deps
}

func (t *lookupDocumentationTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "lookup_documentation",
		Description: "Search the tenant knowledge base for documentation relevant to the customer's problem",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "What to search for, phrased as the customer's problem",
				Required:    true,
			},
		},
	}
}

func (t *lookupDocumentationTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, err := agent.StringArg(args, "query")
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, "Searching documentation...")
	results, err := t.deps.Retrieval.Retrieve(ctx, t.deps.TenantID, query, retrieval.Query{
		Product:  t.deps.Product,
		Language: t.deps.Language,
	})
	if err != nil {
		// A broken knowledge base degrades to "nothing found" so the
		// turn still completes.
		logging.From(ctx).Warn("documentation lookup failed", "error", err.Error())
		return map[string]any{"results": []map[string]any{}, "note": "documentation lookup unavailable"}, nil
	}

	items := make([]map[string]any, len(results))
	for i, r := range results {
		items[i] = map[string]any{
			"content": r.Content,
			"score":   r.Score,
			"doc_id":  r.Metadata.DocID,
		}
	}
	return map[string]any{"results": items}, nil
}

// executePlaybookStepTool advances the active playbook by one reported outcome
type executePlaybookStepTool struct {
	deps Deps
}

func (t *executePlaybookStepTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "execute_playbook_step",
		Description: "Report the outcome of the current troubleshooting step and advance the playbook",
		Parameters: map[string]*gollem.Parameter{
			"outcome": {
				Type:        gollem.TypeString,
				Description: "Whether the customer completed the step successfully",
				Enum:        []string{string(types.StepSuccess), string(types.StepFailure)},
				Required:    true,
			},
		},
	}
}

func (t *executePlaybookStepTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	raw, err := agent.StringArg(args, "outcome")
	if err != nil {
		return nil, err
	}
	outcome, err := types.ParseStepOutcome(raw)
	if err != nil {
		return nil, err
	}

	if t.deps.Playbook == nil || t.deps.State == nil {
		return map[string]any{"error": "no playbook is active for this case"}, nil
	}

	tool.Update(ctx, fmt.Sprintf("Recording step outcome: %s", outcome))
	stepID := t.deps.State.CurrentStepID
	result := playbook.ExecuteStep(t.deps.Playbook, t.deps.State, outcome)

	action := agent.PlaybookStepAction{
		PlaybookID:     t.deps.Playbook.Metadata.ID,
		StepID:         stepID,
		Outcome:        outcome,
		ShouldEscalate: result.ShouldEscalate,
		Reason:         result.EscalationReason,
		Completed:      result.Completed,
	}
	if result.NextStep != nil {
		action.NextStepID = result.NextStep.ID
	}
	if !t.deps.Recorder.Record(action) {
		return map[string]any{"note": rejectedNote}, nil
	}

	response := map[string]any{
		"outcome":         string(t.deps.State.Outcome),
		"should_escalate": result.ShouldEscalate,
	}
	if result.NextStep != nil {
		response["next_step"] = playbook.FormatStep(result.NextStep, t.deps.State.Variables)
	}
	if result.Completed {
		response["note"] = "playbook completed, the issue should be resolved"
	}
	return response, nil
}

// escalateToL2Tool hands the case to the tier-2 agent
type escalateToL2Tool struct {
	deps Deps
}

func (t *escalateToL2Tool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "escalate_to_l2",
		Description: "Escalate the case to the specialist tier-2 agent when first-line troubleshooting is exhausted",
		Parameters: map[string]*gollem.Parameter{
			"reason": {
				Type:        gollem.TypeString,
				Description: "Why the case needs a specialist",
				Required:    true,
			},
		},
	}
}

func (t *escalateToL2Tool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	reason, err := agent.StringArg(args, "reason")
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, "Escalating to tier 2...")
	if !t.deps.Recorder.Record(agent.EscalateAction{Level: types.TierL2, Reason: reason}) {
		return map[string]any{"note": rejectedNote}, nil
	}
	return map[string]any{"escalated": true, "level": string(types.TierL2)}, nil
}

// escalateToHumanTool hands the case to the human queue
type escalateToHumanTool struct {
	deps Deps
}

func (t *escalateToHumanTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "escalate_to_human",
		Description: "Escalate the case directly to a human support agent",
		Parameters: map[string]*gollem.Parameter{
			"reason": {
				Type:        gollem.TypeString,
				Description: "Why a human must take over",
				Required:    true,
			},
		},
	}
}

func (t *escalateToHumanTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	reason, err := agent.StringArg(args, "reason")
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, "Escalating to a human agent...")
	if !t.deps.Recorder.Record(agent.EscalateAction{Level: types.TierL3, Reason: reason}) {
		return map[string]any{"note": rejectedNote}, nil
	}
	return map[string]any{"escalated": true, "level": string(types.TierL3)}, nil
}

// markResolvedTool closes the case as resolved
type markResolvedTool struct {
	deps Deps
}

func (t *markResolvedTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "mark_resolved",
		Description: "Mark the case resolved once the customer confirms the problem is fixed",
		Parameters: map[string]*gollem.Parameter{
			"summary": {
				Type:        gollem.TypeString,
				Description: "One-line summary of the resolution",
			},
		},
	}
}

func (t *markResolvedTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	summary := agent.OptionalStringArg(args, "summary", "")

	tool.Update(ctx, "Marking the case resolved...")
	if !t.deps.Recorder.Record(agent.ResolveAction{Summary: summary}) {
		return map[string]any{"note": rejectedNote}, nil
	}
	return map[string]any{"resolved": true}, nil
}
