package tier2_test

import (
	"context"
	"strings"
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/agent"
	"github.com/NofaBC/TechSupport-AI/pkg/agent/tier2"
	"github.com/NofaBC/TechSupport-AI/pkg/service/visual"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

func toolByName(t *testing.T, tools []gollem.Tool, name string) gollem.Tool {
	t.Helper()
	for _, tl := range tools {
		if tl.Spec().Name == name {
			return tl
		}
	}
	t.Fatalf("tool not found: %s", name)
	return nil
}

func TestToolSetHasNoSelfEscalation(t *testing.T) {
	tools := tier2.New(tier2.Deps{Recorder: agent.NewRecorder()})
	for _, tl := range tools {
		gt.Bool(t, tl.Spec().Name == "escalate_to_l2").False()
	}
	gt.Array(t, tools).Length(6)
}

func TestSuggestDiagnosticStepsTool(t *testing.T) {
	tools := tier2.New(tier2.Deps{Recorder: agent.NewRecorder()})

	tl := toolByName(t, tools, "suggest_diagnostic_steps")
	result, err := tl.Run(context.Background(), map[string]any{"problem": "the app cannot connect to wifi"})
	gt.NoError(t, err)
	gt.Equal(t, result["category"], "connection")

	steps, ok := result["steps"].([]string)
	gt.Bool(t, ok).True()
	gt.Number(t, len(steps)).Greater(0)
}

func TestAnalyzeErrorTool(t *testing.T) {
	tools := tier2.New(tier2.Deps{Recorder: agent.NewRecorder()})

	tl := toolByName(t, tools, "analyze_error")
	result, err := tl.Run(context.Background(), map[string]any{
		"error_text": "app crash with ERR_CONNECTION_RESET (code 0x80070005)",
	})
	gt.NoError(t, err)
	gt.Equal(t, result["category"], "connection")

	codes, ok := result["error_codes"].([]string)
	gt.Bool(t, ok).True()
	gt.Array(t, codes).Has("ERR_CONNECTION_RESET")
	gt.Array(t, codes).Has("0x80070005")
}

func TestInitiateVisionscreenTool(t *testing.T) {
	recorder := agent.NewRecorder()
	tools := tier2.New(tier2.Deps{
		Recorder: recorder,
		Visual:   visual.New(visual.WithBaseURL("https://v.example.com")),
		TenantID: "t1",
		CaseID:   "case-1",
	})

	tl := toolByName(t, tools, "initiate_visionscreen")
	result, err := tl.Run(context.Background(), map[string]any{"mode": "screen"})
	gt.NoError(t, err)

	joinURL, ok := result["join_url"].(string)
	gt.Bool(t, ok).True()
	gt.Bool(t, strings.HasPrefix(joinURL, "https://v.example.com/join/")).True()

	action, ok := recorder.Action().(agent.VisualSessionAction)
	gt.Bool(t, ok).True()
	gt.Bool(t, action.SessionID != "").True()
}

func TestInitiateVisionscreenRejectsBadMode(t *testing.T) {
	tools := tier2.New(tier2.Deps{
		Recorder: agent.NewRecorder(),
		Visual:   visual.New(),
		TenantID: "t1",
	})

	tl := toolByName(t, tools, "initiate_visionscreen")
	_, err := tl.Run(context.Background(), map[string]any{"mode": "telepathy"})
	gt.Error(t, err)
}
