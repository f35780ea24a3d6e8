package usecase

import (
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/agent"
	"github.com/NofaBC/TechSupport-AI/pkg/agent/tier2"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/service/guardrail"
	"github.com/NofaBC/TechSupport-AI/pkg/service/retrieval"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/tier2_system.md
var tier2SystemPromptTmpl string

var tier2SystemPrompt = template.Must(template.New("tier2_system").Parse(tier2SystemPromptTmpl))

// tier2ContextBudget is wider than tier 1: escalated cases tend to need
// deeper documentation.
const tier2ContextBudget = 3000

// Tier2UseCase runs specialist conversational turns on escalated cases
type Tier2UseCase struct {
	uc *UseCases
}

// HandleTurn processes one inbound message on an escalated case. The
// turn skeleton matches tier 1; the differences are the wider retrieval
// window, the tier-1 attempt history in the prompt, and the expanded
// tool set. Tier 2 does not execute playbooks.
func (t *Tier2UseCase) HandleTurn(ctx context.Context, in *model.AgentContext) (*model.AgentResponse, error) {
	started := time.Now()
	if err := in.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tier-2 turn input")
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

	contextBlock, citations := t.uc.retrieveContext(ctx, in, redacted.Text, retrieval.Query{
		TopK:     tier2.RetrievalTopK,
		Product:  in.Product,
		Language: in.Language,
	}, tier2ContextBudget)

	prompt, err := renderPrompt(tier2SystemPrompt, tierPromptData{
		TenantID:        in.TenantID,
		CaseID:          in.CaseID,
		Product:         in.Product,
		Category:        in.Category,
		Language:        languageOrDefault(in.Language),
		Severity:        string(in.Severity),
		ContextBlock:    contextBlock,
		EscalationHints: check.Reasons,
		History:         in.History,
		CaseHistory:     in.CaseHistory,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build tier-2 system prompt")
	}

	recorder := agent.NewRecorder()
	tools := tier2.New(tier2.Deps{
		Retrieval: t.uc.retrieval,
		Visual:    t.uc.visual,
		Recorder:  recorder,
		TenantID:  in.TenantID,
		CaseID:    model.CaseID(in.CaseID),
		Product:   in.Product,
		Language:  in.Language,
	})

	resp, err := t.uc.execute(ctx, prompt, tools, redacted.Text)
	if err != nil {
		return nil, goerr.Wrap(err, "tier-2 agent execution failed", goerr.V("case_id", in.CaseID))
	}

	out := &model.AgentResponse{
		Message:  t.uc.sanitize(ctx, strings.Join(resp.Texts, "\n")),
		Sources:  citations,
		Metadata: t.uc.metadata(started),
	}
	t.uc.applyAction(ctx, in, recorder.Action(), out)
	return out, nil
}
