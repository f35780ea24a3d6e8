package guardrail

import (
	"fmt"
	"strings"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
)

// Signals carries the contextual inputs that combine with keyword
// matching during escalation trigger detection.
type Signals struct {
	FailedAttempts int
	CaseSeverity   types.Severity
}

// EscalationResult is the output of CheckEscalation
type EscalationResult struct {
	ShouldEscalate bool
	Reasons        []string
	Severity       types.Severity
}

// maxFailedAttempts is the failed-attempt count that alone forces escalation
const maxFailedAttempts = 3

type triggerCategory struct {
	name     string
	severity types.Severity
	keywords []string
}

var triggerTaxonomy = []triggerCategory{
	{
		name:     "legal or compliance threat",
		severity: types.SeverityCritical,
		keywords: []string{
			"lawsuit", "sue you", "going to sue", "attorney", "lawyer",
			"legal action", "small claims", "better business bureau",
		},
	},
	{
		name:     "security incident",
		severity: types.SeverityCritical,
		keywords: []string{
			"hacked", "data breach", "unauthorized access", "account compromised",
			"identity theft", "stolen account",
		},
	},
	{
		name:     "billing fraud",
		severity: types.SeverityHigh,
		keywords: []string{
			"fraud", "fraudulent", "unauthorized charge", "chargeback",
			"scam", "double charged",
		},
	},
	{
		name:     "urgency",
		severity: types.SeverityHigh,
		keywords: []string{
			"urgent", "emergency", "immediately", "right now", "asap",
			"business down", "production down",
		},
	},
	{
		name:     "customer frustration",
		severity: types.SeverityMedium,
		keywords: []string{
			"frustrated", "angry", "furious", "unacceptable", "ridiculous",
			"worst service", "fed up", "terrible",
		},
	},
}

var humanRequestPhrases = []string{
	"speak to a human", "talk to a human", "speak to a person",
	"real person", "human agent", "speak to someone", "talk to an agent",
	"speak with a representative",
}

// CheckEscalation scans the lowercased message against the trigger
// taxonomy and combines the result with the contextual signals.
// Severity only ever goes up across triggers within one evaluation.
func CheckEscalation(message string, sig Signals) EscalationResult {
	lowered := strings.ToLower(message)
	result := EscalationResult{Severity: types.SeverityLow}

	for _, cat := range triggerTaxonomy {
		for _, kw := range cat.keywords {
			if strings.Contains(lowered, kw) {
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("%s (matched %q)", cat.name, kw))
				result.Severity = types.MaxSeverity(result.Severity, cat.severity)
				break
			}
		}
	}

	for _, phrase := range humanRequestPhrases {
		if strings.Contains(lowered, phrase) {
			result.Reasons = append(result.Reasons, "customer asked for a human")
			result.Severity = types.MaxSeverity(result.Severity, types.SeverityHigh)
			break
		}
	}

	if sig.FailedAttempts >= maxFailedAttempts {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("%d failed resolution attempts", sig.FailedAttempts))
		result.Severity = types.MaxSeverity(result.Severity, types.SeverityMedium)
	}

	if sig.CaseSeverity.Rank() >= types.SeverityHigh.Rank() {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("case severity is %s", sig.CaseSeverity))
		result.Severity = types.MaxSeverity(result.Severity, sig.CaseSeverity)
	}

	result.ShouldEscalate = len(result.Reasons) > 0
	return result
}
