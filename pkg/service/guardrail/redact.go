// Package guardrail holds the safety checks that wrap every agent turn:
// secret redaction, escalation trigger detection, and response
// validation. Everything here is a pure function over text plus
// optional context.
package guardrail

import (
	"fmt"
	"regexp"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
)

// RedactionRecord describes one redacted match. The raw value is never
// kept beyond a short prefix.
type RedactionRecord struct {
	Kind     types.RedactionKind
	Position int
	Prefix   string
}

// RedactionResult is the output of Redact
type RedactionResult struct {
	Text       string
	Records    []RedactionRecord
	HasSecrets bool
}

// prefixLen is how much of a matched value redaction records retain
const prefixLen = 4

type redactionPattern struct {
	kind types.RedactionKind
	re   *regexp.Regexp
}

// The catalogue is ordered from most to least specific so that broad
// patterns never swallow a match a narrower pattern should have
// classified first.
var redactionCatalogue = []redactionPattern{
	{types.RedactionPrivateKey, regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----(?s:.*?)(?:-----END [A-Z ]*PRIVATE KEY-----|\z)`)},
	{types.RedactionConnectionString, regexp.MustCompile(`(?i)\b(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqps?|mssql)://\S+`)},
	{types.RedactionBearerToken, regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]{16,}=*`)},
	{types.RedactionAWSAccessKey, regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
	{types.RedactionGCPKey, regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{35}\b`)},
	{types.RedactionCredentialPair, regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}:[^\s@]{4,}`)},
	{types.RedactionAPIKey, regexp.MustCompile(`(?i)\b(?:api[_-]?key|apikey|access[_-]?token|client[_-]?secret)["']?\s*[:=]\s*["']?[A-Za-z0-9\-._]{12,}["']?`)},
	{types.RedactionAPIKey, regexp.MustCompile(`\bsk-[A-Za-z0-9\-_]{20,}\b`)},
	{types.RedactionPassword, regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)["']?\s*(?:is\s+|[:=]\s*)["']?[^\s"']{6,}["']?`)},
	{types.RedactionCreditCard, regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{1,4}\b`)},
	{types.RedactionSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
}

// Redact replaces every catalogue match with a typed placeholder.
// Redacting already redacted text is a no-op, so it is safe to apply
// on both the inbound and outbound side of a turn.
func Redact(text string) RedactionResult {
	result := RedactionResult{Text: text}
	if text == "" {
		return result
	}

	for _, p := range redactionCatalogue {
		placeholder := fmt.Sprintf("[REDACTED %s]", p.kind)
		for {
			loc := p.re.FindStringIndex(result.Text)
			if loc == nil {
				break
			}
			match := result.Text[loc[0]:loc[1]]
			prefix := match
			if len(prefix) > prefixLen {
				prefix = prefix[:prefixLen]
			}
			result.Records = append(result.Records, RedactionRecord{
				Kind:     p.kind,
				Position: loc[0],
				Prefix:   prefix,
			})
			result.Text = result.Text[:loc[0]] + placeholder + result.Text[loc[1]:]
		}
	}

	result.HasSecrets = len(result.Records) > 0
	return result
}
