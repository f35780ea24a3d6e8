package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/agent"
	"github.com/NofaBC/TechSupport-AI/pkg/agent/tier1"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/service/guardrail"
	"github.com/NofaBC/TechSupport-AI/pkg/service/playbook"
	"github.com/NofaBC/TechSupport-AI/pkg/service/retrieval"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/async"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

//go:embed prompt/tier1_system.md
var tier1SystemPromptTmpl string

var tier1SystemPrompt = template.Must(template.New("tier1_system").Parse(tier1SystemPromptTmpl))

const (
	// tier1ContextBudget is the token budget for injected documentation
	tier1ContextBudget = 2000

	// handoffMessage is returned on the critical short-circuit path,
	// before any LLM or retrieval work happens
	handoffMessage = "I'm connecting you with a human support agent right away. Please stay with me for just a moment."

	// fallbackMessage is used when the model returns no text at all
	fallbackMessage = "I'm sorry, I wasn't able to process that. Could you describe the problem once more? I can also connect you with a human agent."
)

// Tier1UseCase runs first-line conversational turns
type Tier1UseCase struct {
	uc *UseCases
}

type tierPromptData struct {
	TenantID            string
	CaseID              string
	Product             string
	Category            string
	Language            string
	Severity            string
	ContextBlock        string
	PlaybookInstruction string
	EscalationHints     []string
	History             []model.Message
	CaseHistory         *model.TierHistory
}

// HandleTurn processes one inbound customer message and returns the
// agent's response plus side-effect signals. Retrieval and playbook
// failures degrade to absent context; LLM failures propagate.
func (t *Tier1UseCase) HandleTurn(ctx context.Context, in *model.AgentContext) (*model.AgentResponse, error) {
	started := time.Now()
	if err := in.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tier-1 turn input")
	}
	logger := logging.From(ctx)

	redacted := guardrail.Redact(in.Message)
	if redacted.HasSecrets {
		logger.Info("redacted inbound message", "redactions", len(redacted.Records))
	}

	check := guardrail.CheckEscalation(redacted.Text, guardrail.Signals{
		FailedAttempts: in.FailedAttempts,
		CaseSeverity:   in.Severity,
	})
	if check.Severity == types.SeverityCritical {
		reason := strings.Join(check.Reasons, "; ")
		logger.Info("critical trigger short-circuit", "reasons", check.Reasons)
		t.uc.notifyEscalation(ctx, in, types.TierL3, reason)
		return &model.AgentResponse{
			Message:          handoffMessage,
			ShouldEscalate:   true,
			EscalationLevel:  types.TierL3,
			EscalationReason: reason,
			Metadata:         t.uc.metadata(started),
		}, nil
	}

	contextBlock, citations := t.uc.retrieveContext(ctx, in, redacted.Text, retrieval.Query{Product: in.Product, Language: in.Language}, tier1ContextBudget)

	pb, state := t.activePlaybook(ctx, in, redacted.Text)
	var stepInstruction string
	if pb != nil && state != nil && !state.Outcome.IsTerminal() {
		if step := pb.Step(state.CurrentStepID); step != nil {
			stepInstruction = playbook.FormatStep(step, state.Variables)
		}
	}

	prompt, err := renderPrompt(tier1SystemPrompt, tierPromptData{
		TenantID:            in.TenantID,
		CaseID:              in.CaseID,
		Product:             in.Product,
		Category:            in.Category,
		Language:            languageOrDefault(in.Language),
		Severity:            string(in.Severity),
		ContextBlock:        contextBlock,
		PlaybookInstruction: stepInstruction,
		EscalationHints:     check.Reasons,
		History:             in.History,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build tier-1 system prompt")
	}

	recorder := agent.NewRecorder()
	tools := tier1.New(tier1.Deps{
		Retrieval: t.uc.retrieval,
		Recorder:  recorder,
		TenantID:  in.TenantID,
		Product:   in.Product,
		Language:  in.Language,
		Playbook:  pb,
		State:     state,
	})

	resp, err := t.uc.execute(ctx, prompt, tools, redacted.Text)
	if err != nil {
		return nil, goerr.Wrap(err, "tier-1 agent execution failed", goerr.V("case_id", in.CaseID))
	}

	out := &model.AgentResponse{
		Message:  t.uc.sanitize(ctx, strings.Join(resp.Texts, "\n")),
		Sources:  citations,
		Metadata: t.uc.metadata(started),
	}
	t.uc.applyAction(ctx, in, recorder.Action(), out)
	return out, nil
}

// activePlaybook returns the playbook and execution state for this
// turn. An existing state on the context wins; otherwise the best
// matching playbook is selected and a fresh state is attached to the
// context so the caller can persist it.
func (t *Tier1UseCase) activePlaybook(ctx context.Context, in *model.AgentContext, message string) (*model.Playbook, *model.ExecutionState) {
	logger := logging.From(ctx)

	if in.Playbook != nil {
		pb, err := t.uc.registry.Get(in.Playbook.PlaybookID)
		if err != nil {
			logger.Warn("active playbook missing from registry, continuing without",
				"playbook_id", in.Playbook.PlaybookID)
			return nil, nil
		}
		return pb, in.Playbook
	}

	matches := playbook.FindPlaybooks(t.uc.registry, model.MatchCriteria{
		Product:  in.Product,
		Category: in.Category,
		Message:  message,
		Severity: in.Severity,
	})
	if len(matches) == 0 {
		return nil, nil
	}

	pb := matches[0]
	state := model.NewExecutionState(pb)
	in.Playbook = state
	logger.Info("playbook selected", "playbook_id", pb.Metadata.ID, "case_id", in.CaseID)
	return pb, state
}

// retrieveContext fetches and assembles documentation context. A cheap
// relevance probe gates the injection: when no chunk clears the strict
// floor the prompt carries no context block at all. Errors degrade to
// an empty block so the turn always completes.
func (u *UseCases) retrieveContext(ctx context.Context, in *model.AgentContext, query string, q retrieval.Query, budget int) (string, []model.SourceCitation) {
	logger := logging.From(ctx)

	relevant, err := u.retrieval.HasRelevantContent(ctx, in.TenantID, query, q)
	if err != nil {
		logger.Warn("relevance probe failed, continuing without context",
			"case_id", in.CaseID, "error", err.Error())
		return "", nil
	}
	if !relevant {
		return "", nil
	}

	results, err := u.retrieval.Retrieve(ctx, in.TenantID, query, q)
	if err != nil {
		logger.Warn("retrieval failed, continuing without context",
			"case_id", in.CaseID, "error", err.Error())
		return "", nil
	}
	return retrieval.AssembleContextWithCitations(results, budget)
}

func (u *UseCases) execute(ctx context.Context, systemPrompt string, tools []gollem.Tool, message string) (*gollem.ExecuteResponse, error) {
	ag := gollem.New(u.llm,
		gollem.WithSystemPrompt(systemPrompt),
		gollem.WithTools(tools...),
	)
	return ag.Execute(ctx, gollem.Text(message))
}

// sanitize validates outbound text and swaps in the sanitized variant
// when validation fails.
func (u *UseCases) sanitize(ctx context.Context, message string) string {
	if message == "" {
		return fallbackMessage
	}
	validation := guardrail.ValidateResponse(message)
	if !validation.Valid {
		logging.From(ctx).Warn("response sanitized", "issues", validation.Issues)
		return validation.SanitizedResponse
	}
	return message
}

// applyAction folds the recorded tool action into the response contract
func (u *UseCases) applyAction(ctx context.Context, in *model.AgentContext, action agent.Action, out *model.AgentResponse) {
	switch a := action.(type) {
	case nil:

	case agent.PlaybookStepAction:
		out.Action = &model.AgentAction{
			Type: "execute_playbook_step",
			Params: map[string]string{
				"playbook_id": a.PlaybookID,
				"step_id":     a.StepID,
				"outcome":     string(a.Outcome),
			},
		}
		if a.ShouldEscalate {
			out.ShouldEscalate = true
			out.EscalationLevel = types.TierL2
			out.EscalationReason = a.Reason
			u.notifyEscalation(ctx, in, types.TierL2, a.Reason)
		}

	case agent.EscalateAction:
		out.Action = &model.AgentAction{
			Type:   "escalate",
			Params: map[string]string{"level": string(a.Level), "reason": a.Reason},
		}
		out.ShouldEscalate = true
		out.EscalationLevel = a.Level
		out.EscalationReason = a.Reason
		u.notifyEscalation(ctx, in, a.Level, a.Reason)

	case agent.ResolveAction:
		out.Action = &model.AgentAction{
			Type:   "resolve",
			Params: map[string]string{"summary": a.Summary},
		}

	case agent.VisualSessionAction:
		out.Action = &model.AgentAction{
			Type: "start_visual_session",
			Params: map[string]string{
				"session_id": string(a.SessionID),
				"mode":       string(a.Mode),
				"join_url":   a.JoinURL,
			},
		}
	}
}

// notifyEscalation sends the escalation notification without blocking
// or failing the turn.
func (u *UseCases) notifyEscalation(ctx context.Context, in *model.AgentContext, level types.Tier, reason string) {
	c, err := u.repo.Case().Get(ctx, in.TenantID, model.CaseID(in.CaseID))
	if err != nil {
		logging.From(ctx).Warn("cannot load case for escalation notification",
			"case_id", in.CaseID, "error", err.Error())
		c = &model.Case{ID: model.CaseID(in.CaseID), TenantID: in.TenantID, Product: in.Product, Severity: in.Severity}
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return u.notifier.NotifyEscalation(ctx, c, level, reason)
	})
}

func (u *UseCases) metadata(started time.Time) model.ResponseMetadata {
	return model.ResponseMetadata{
		Model:          u.modelID,
		ProcessingTime: time.Since(started),
	}
}

func renderPrompt(tmpl *template.Template, data tierPromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt template")
	}
	return buf.String(), nil
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return "English"
	}
	return lang
}
