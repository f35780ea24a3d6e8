package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestTier2DirectResponse(t *testing.T) {
	llm := &mockLLMClient{}
	uc := newTestUseCases(t, llm)

	resp, err := uc.Tier2.HandleTurn(context.Background(), &model.AgentContext{
		TenantID: "t1",
		CaseID:   "case-1",
		Message:  "the app still crashes after the reinstall",
		Product:  "AI Factory",
		Severity: types.SeverityMedium,
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, resp.ShouldEscalate).False()
	gt.Bool(t, resp.Message != "").True()
	gt.Equal(t, llm.sessionCalls.Load(), int64(1))
}

func TestTier2CriticalShortCircuit(t *testing.T) {
	llm := &mockLLMClient{}
	uc := newTestUseCases(t, llm)

	resp, err := uc.Tier2.HandleTurn(context.Background(), &model.AgentContext{
		TenantID: "t1",
		CaseID:   "case-1",
		Message:  "my account was hacked and someone is in my files",
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, resp.ShouldEscalate).True()
	gt.Equal(t, resp.EscalationLevel, types.TierL3)
	gt.Equal(t, llm.sessionCalls.Load(), int64(0))
	gt.Equal(t, llm.embedCalls.Load(), int64(0))
}

func TestTier2PromptCarriesTierHistory(t *testing.T) {
	prompt, err := usecase.RenderTier2SystemPrompt(usecase.TierPromptData{
		TenantID: "t1",
		CaseID:   "case-1",
		Product:  "AI Factory",
		Language: "English",
		CaseHistory: &model.TierHistory{
			StepsAttempted: []string{"restart app", "clear cache"},
			FailedSteps:    []string{"clear cache"},
			Summary:        "crash persists after basic steps",
		},
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, strings.Contains(prompt, "restart app")).True()
	gt.Bool(t, strings.Contains(prompt, "clear cache")).True()
	gt.Bool(t, strings.Contains(prompt, "crash persists after basic steps")).True()
	gt.Bool(t, strings.Contains(prompt, "What tier 1 already tried")).True()
}

func TestTier2PromptWithoutHistory(t *testing.T) {
	prompt, err := usecase.RenderTier2SystemPrompt(usecase.TierPromptData{
		TenantID: "t1",
		CaseID:   "case-1",
		Product:  "AI Factory",
		Language: "English",
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, strings.Contains(prompt, "What tier 1 already tried")).False()
}
