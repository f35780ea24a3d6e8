package guardrail_test

import (
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/service/guardrail"
	"github.com/m-mizutani/gt"
)

func TestEscalationLawsuitIsCritical(t *testing.T) {
	result := guardrail.CheckEscalation("I will file a LAWSUIT if this is not fixed", guardrail.Signals{})
	gt.Bool(t, result.ShouldEscalate).True()
	gt.Equal(t, result.Severity, types.SeverityCritical)
}

func TestEscalationCleanMessage(t *testing.T) {
	result := guardrail.CheckEscalation("My printer shows error code 42, what does it mean?", guardrail.Signals{})
	gt.Bool(t, result.ShouldEscalate).False()
	gt.Array(t, result.Reasons).Length(0)
	gt.Equal(t, result.Severity, types.SeverityLow)
}

func TestEscalationSeverityNeverDowngrades(t *testing.T) {
	// Critical trigger first, then a medium frustration keyword
	result := guardrail.CheckEscalation("my account was hacked and this is so frustrated honestly", guardrail.Signals{})
	gt.Bool(t, result.ShouldEscalate).True()
	gt.Equal(t, result.Severity, types.SeverityCritical)
	gt.Number(t, len(result.Reasons)).GreaterOrEqual(2)
}

func TestEscalationFailedAttempts(t *testing.T) {
	result := guardrail.CheckEscalation("still not working", guardrail.Signals{FailedAttempts: 3})
	gt.Bool(t, result.ShouldEscalate).True()
	gt.Equal(t, result.Severity, types.SeverityMedium)

	result = guardrail.CheckEscalation("still not working", guardrail.Signals{FailedAttempts: 2})
	gt.Bool(t, result.ShouldEscalate).False()
}

func TestEscalationHumanRequest(t *testing.T) {
	result := guardrail.CheckEscalation("Please let me speak to a human.", guardrail.Signals{})
	gt.Bool(t, result.ShouldEscalate).True()
	gt.Equal(t, result.Severity, types.SeverityHigh)
}

func TestEscalationCaseSeverityFolds(t *testing.T) {
	result := guardrail.CheckEscalation("any update on my issue?", guardrail.Signals{
		CaseSeverity: types.SeverityHigh,
	})
	gt.Bool(t, result.ShouldEscalate).True()
	gt.Equal(t, result.Severity, types.SeverityHigh)

	// Low case severity adds nothing on its own
	result = guardrail.CheckEscalation("any update on my issue?", guardrail.Signals{
		CaseSeverity: types.SeverityLow,
	})
	gt.Bool(t, result.ShouldEscalate).False()
}

func TestEscalationFrustrationIsMedium(t *testing.T) {
	result := guardrail.CheckEscalation("this is completely unacceptable", guardrail.Signals{})
	gt.Bool(t, result.ShouldEscalate).True()
	gt.Equal(t, result.Severity, types.SeverityMedium)
}
