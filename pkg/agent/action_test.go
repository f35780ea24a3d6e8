package agent_test

import (
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/agent"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestRecorderFirstActionWins(t *testing.T) {
	r := agent.NewRecorder()
	gt.Bool(t, r.Record(agent.EscalateAction{Level: types.TierL2, Reason: "stuck"})).True()
	gt.Bool(t, r.Record(agent.ResolveAction{})).False()

	action, ok := r.Action().(agent.EscalateAction)
	gt.Bool(t, ok).True()
	gt.Equal(t, action.Level, types.TierL2)
}

func TestRecorderEmpty(t *testing.T) {
	r := agent.NewRecorder()
	gt.Bool(t, r.Action() == nil).True()
}

func TestStringArg(t *testing.T) {
	args := map[string]any{"query": "paper jam", "count": 3}

	v, err := agent.StringArg(args, "query")
	gt.NoError(t, err)
	gt.Equal(t, v, "paper jam")

	_, err = agent.StringArg(args, "missing")
	gt.Error(t, err)

	_, err = agent.StringArg(args, "count")
	gt.Error(t, err)

	gt.Equal(t, agent.OptionalStringArg(args, "missing", "fallback"), "fallback")
	gt.Equal(t, agent.OptionalStringArg(args, "query", "fallback"), "paper jam")
}
