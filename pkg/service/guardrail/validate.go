package guardrail

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxResponseChars is the ceiling for AI-generated response length
const MaxResponseChars = 4000

// ValidationResult is the output of ValidateResponse. When Valid is
// false, callers must send SanitizedResponse to the customer, never
// the original text.
type ValidationResult struct {
	Valid             bool
	Issues            []string
	SanitizedResponse string
}

// unsafePhrasings are response fragments a support agent must never
// emit, matched case-insensitively.
var unsafePhrasings = []string{
	"as an ai language model",
	"ignore previous instructions",
	"i guarantee",
	"you should sue",
	"i can waive",
	"we will refund you in full",
	"this is legal advice",
}

// ValidateResponse re-runs redaction over AI output and checks it for
// unsafe phrasings and excessive length. Leaked secrets are stripped,
// overlong responses are truncated; unsafe phrasings are only flagged
// since rewording is the caller's call.
func ValidateResponse(response string) ValidationResult {
	result := ValidationResult{Valid: true, SanitizedResponse: response}

	redacted := Redact(response)
	if redacted.HasSecrets {
		result.Valid = false
		result.SanitizedResponse = redacted.Text
		for _, rec := range redacted.Records {
			result.Issues = append(result.Issues,
				fmt.Sprintf("response leaked a secret (%s at offset %d)", rec.Kind, rec.Position))
		}
	}

	lowered := strings.ToLower(result.SanitizedResponse)
	for _, phrase := range unsafePhrasings {
		if strings.Contains(lowered, phrase) {
			result.Valid = false
			result.Issues = append(result.Issues,
				fmt.Sprintf("unsafe phrasing: %q", phrase))
		}
	}

	if len(result.SanitizedResponse) > MaxResponseChars {
		result.Valid = false
		result.Issues = append(result.Issues,
			fmt.Sprintf("response exceeds %d characters", MaxResponseChars))
		// Back off to a rune boundary so the cut never emits invalid UTF-8
		cut := MaxResponseChars
		for cut > 0 && !utf8.RuneStart(result.SanitizedResponse[cut]) {
			cut--
		}
		result.SanitizedResponse = result.SanitizedResponse[:cut]
	}

	return result
}
