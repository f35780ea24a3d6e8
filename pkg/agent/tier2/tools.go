// Package tier2 builds the expanded tool set of the specialist agent.
// Compared to tier 1 it adds error analysis, deterministic diagnostic
// steps, and visual session initiation; there is deliberately no
// escalate-to-self tool.
package tier2

import (
	"context"
	"strings"

	"github.com/NofaBC/TechSupport-AI/pkg/agent"
	"github.com/NofaBC/TechSupport-AI/pkg/agent/tool"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/interfaces"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/service/diagnostic"
	"github.com/NofaBC/TechSupport-AI/pkg/service/retrieval"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
	"github.com/m-mizutani/gollem"
)

// RetrievalTopK is the wider fetch size used by tier-2 lookups
const RetrievalTopK = 8

// Deps carries everything the tier-2 tools need for one turn
type Deps struct {
	Retrieval retrieval.Service
	Visual    interfaces.VisualSessionService
	Recorder  *agent.Recorder

	TenantID string
	CaseID   model.CaseID
	Product  string
	Language string
}

// New builds the tier-2 tool set for one conversation turn
func New(deps Deps) []gollem.Tool {
	return []gollem.Tool{
		&lookupDocumentationTool{deps: deps},
		&analyzeErrorTool{},
		&suggestDiagnosticStepsTool{},
		&initiateVisionscreenTool{deps: deps},
		&escalateToHumanTool{deps: deps},
		&markResolvedTool{deps: deps},
	}
}

const rejectedNote = "another action was already taken this turn; do not take further actions"

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
		TopK:     RetrievalTopK,
		Product:  t.deps.Product,
		Language: t.deps.Language,
	})
	if err != nil {
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

// analyzeErrorTool extracts the salient parts of a raw error report so
// the model reasons over structure instead of noise.
type analyzeErrorTool struct{}

func (t *analyzeErrorTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "analyze_error",
		Description: "Break a raw error message or log excerpt into error codes, components, and likely area of failure",
		Parameters: map[string]*gollem.Parameter{
			"error_text": {
				Type:        gollem.TypeString,
				Description: "The raw error message or log excerpt reported by the customer",
				Required:    true,
			},
		},
	}
}

func (t *analyzeErrorTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	errorText, err := agent.StringArg(args, "error_text")
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, "Analyzing the error...")
	category, _ := diagnostic.Suggest(errorText)

	var codes []string
	for _, f := range strings.Fields(errorText) {
		trimmed := strings.Trim(f, ".,:;()[]")
		if isErrorCode(trimmed) {
			codes = append(codes, trimmed)
		}
	}

	return map[string]any{
		"category":    string(category),
		"error_codes": codes,
		"line_count":  strings.Count(errorText, "\n") + 1,
	}, nil
}

// isErrorCode reports whether a token looks like an error identifier,
// e.g. E1234, 0x80070005, ERR_CONNECTION_RESET, or a bare status code.
func isErrorCode(token string) bool {
	if len(token) < 3 {
		return false
	}
	if strings.HasPrefix(token, "0x") {
		return true
	}
	upper := strings.ToUpper(token)
	if upper == token && strings.ContainsAny(token, "0123456789") {
		return true
	}
	if strings.HasPrefix(upper, "ERR") || strings.HasPrefix(upper, "E-") {
		return true
	}
	return false
}

type suggestDiagnosticStepsTool struct{}

func (t *suggestDiagnosticStepsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "suggest_diagnostic_steps",
		Description: "Get a deterministic diagnostic checklist for the customer's problem category",
		Parameters: map[string]*gollem.Parameter{
			"problem": {
				Type:        gollem.TypeString,
				Description: "Short description of the problem to diagnose",
				Required:    true,
			},
		},
	}
}

func (t *suggestDiagnosticStepsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	problem, err := agent.StringArg(args, "problem")
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, "Building a diagnostic checklist...")
	category, steps := diagnostic.Suggest(problem)
	return map[string]any{
		"category": string(category),
		"steps":    steps,
	}, nil
}

type initiateVisionscreenTool struct {
	deps Deps
}

func (t *initiateVisionscreenTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "initiate_visionscreen",
		Description: "Start a screen or camera sharing session so the agent can see what the customer sees",
		Parameters: map[string]*gollem.Parameter{
			"mode": {
				Type:        gollem.TypeString,
				Description: "Whether to share the screen or the device camera",
				Enum:        []string{string(types.VisualModeScreen), string(types.VisualModeCamera)},
				Required:    true,
			},
		},
	}
}

func (t *initiateVisionscreenTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	raw, err := agent.StringArg(args, "mode")
	if err != nil {
		return nil, err
	}
	mode, err := types.ParseVisualMode(raw)
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, "Setting up a visual session...")
	session, err := t.deps.Visual.CreateSession(ctx, t.deps.TenantID, t.deps.CaseID, mode, 0)
	if err != nil {
		logging.From(ctx).Warn("visual session creation failed", "error", err.Error())
		return map[string]any{"note": "visual sessions are unavailable right now"}, nil
	}

	if !t.deps.Recorder.Record(agent.VisualSessionAction{
		SessionID: session.ID,
		Mode:      mode,
		JoinURL:   session.JoinURL,
	}) {
		return map[string]any{"note": rejectedNote}, nil
	}

	return map[string]any{
		"session_id": string(session.ID),
		"join_url":   session.JoinURL,
		"expires_at": session.ExpiresAt.String(),
	}, nil
}

type escalateToHumanTool struct {
	deps Deps
}

func (t *escalateToHumanTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "escalate_to_human",
		Description: "Escalate the case to a human support agent",
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
