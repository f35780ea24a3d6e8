package model

import (
	"strings"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultStepMaxAttempts is the attempt limit for a step that does not
// declare its own.
const DefaultStepMaxAttempts = 3

// Sentinel errors for playbook validation
var (
	ErrPlaybookInvalid   = goerr.New("invalid playbook")
	ErrStepNotFound      = goerr.New("playbook step not found")
	ErrDanglingReference = goerr.New("step references undeclared step")
)

// PlaybookMetadata identifies a playbook and its targeting dimensions
type PlaybookMetadata struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	Product  string `toml:"product"`
	Category string `toml:"category"`
	Language string `toml:"language"`
}

// PlaybookTriggers declares when a playbook is a candidate for a case.
// A dimension left empty is unconstrained, not excluded.
type PlaybookTriggers struct {
	Keywords   []string `toml:"keywords"`
	Categories []string `toml:"categories"`
	Products   []string `toml:"products"`
	Severity   string   `toml:"severity"`
}

// PlaybookStep is one node of the troubleshooting step graph
type PlaybookStep struct {
	ID                string `toml:"id"`
	Title             string `toml:"title"`
	Instruction       string `toml:"instruction"`
	ExpectedOutcome   string `toml:"expected_outcome"`
	FailureHint       string `toml:"failure_hint"`
	NextOnSuccess     string `toml:"next_on_success"`
	NextOnFailure     string `toml:"next_on_failure"`
	EscalateOnFailure *bool  `toml:"escalate_on_failure"`
	MaxAttempts       int    `toml:"max_attempts"`
}

// AttemptLimit returns the step's max attempts, falling back to the default
func (s *PlaybookStep) AttemptLimit() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultStepMaxAttempts
}

// ShouldEscalateOnFailure reports whether exhausting attempts escalates.
// Defaults to true when the step does not say otherwise.
func (s *PlaybookStep) ShouldEscalateOnFailure() bool {
	if s.EscalateOnFailure == nil {
		return true
	}
	return *s.EscalateOnFailure
}

// PlaybookEscalation configures the escalation path of a playbook
type PlaybookEscalation struct {
	DefaultMessage string   `toml:"default_message"`
	Conditions     []string `toml:"conditions"`
}

// Playbook is a versioned, declarative scripted troubleshooting procedure.
// Instances are immutable after load; a reload replaces the registry
// entry wholesale.
type Playbook struct {
	Metadata   PlaybookMetadata   `toml:"metadata"`
	Triggers   PlaybookTriggers   `toml:"triggers"`
	Steps      []PlaybookStep     `toml:"steps"`
	Escalation PlaybookEscalation `toml:"escalation"`
	Variables  map[string]string  `toml:"variables"`
}

// Step returns the step with the given ID, or nil if not declared
func (p *Playbook) Step(id string) *PlaybookStep {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// FirstStep returns the first declared step, the initial state of an execution
func (p *Playbook) FirstStep() *PlaybookStep {
	if len(p.Steps) == 0 {
		return nil
	}
	return &p.Steps[0]
}

// Validate checks structural invariants of the playbook. It returns a
// fatal error for malformed definitions and a list of non-fatal warnings.
// Dangling nextOnSuccess/nextOnFailure references are load-time errors,
// never runtime ones.
func (p *Playbook) Validate() ([]string, error) {
	if p.Metadata.ID == "" {
		return nil, goerr.Wrap(ErrPlaybookInvalid, "metadata.id is required")
	}
	if p.Metadata.Name == "" {
		return nil, goerr.Wrap(ErrPlaybookInvalid, "metadata.name is required",
			goerr.V("playbook_id", p.Metadata.ID))
	}
	if len(p.Steps) == 0 {
		return nil, goerr.Wrap(ErrPlaybookInvalid, "at least one step is required",
			goerr.V("playbook_id", p.Metadata.ID))
	}

	stepIDs := make(map[string]bool, len(p.Steps))
	for i := range p.Steps {
		step := &p.Steps[i]
		if step.ID == "" {
			return nil, goerr.Wrap(ErrPlaybookInvalid, "step id is required",
				goerr.V("playbook_id", p.Metadata.ID), goerr.V("step_index", i))
		}
		if stepIDs[step.ID] {
			return nil, goerr.Wrap(ErrPlaybookInvalid, "duplicate step id",
				goerr.V("playbook_id", p.Metadata.ID), goerr.V("step_id", step.ID))
		}
		stepIDs[step.ID] = true

		if step.Title == "" {
			return nil, goerr.Wrap(ErrPlaybookInvalid, "step title is required",
				goerr.V("playbook_id", p.Metadata.ID), goerr.V("step_id", step.ID))
		}
		if step.Instruction == "" {
			return nil, goerr.Wrap(ErrPlaybookInvalid, "step instruction is required",
				goerr.V("playbook_id", p.Metadata.ID), goerr.V("step_id", step.ID))
		}
	}

	for i := range p.Steps {
		step := &p.Steps[i]
		if step.NextOnSuccess != "" && !stepIDs[step.NextOnSuccess] {
			return nil, goerr.Wrap(ErrDanglingReference, "next_on_success does not resolve",
				goerr.V("playbook_id", p.Metadata.ID),
				goerr.V("step_id", step.ID),
				goerr.V("reference", step.NextOnSuccess))
		}
		if step.NextOnFailure != "" && !stepIDs[step.NextOnFailure] {
			return nil, goerr.Wrap(ErrDanglingReference, "next_on_failure does not resolve",
				goerr.V("playbook_id", p.Metadata.ID),
				goerr.V("step_id", step.ID),
				goerr.V("reference", step.NextOnFailure))
		}
	}

	var warnings []string
	if p.Metadata.Version == "" {
		warnings = append(warnings, "metadata.version is not set")
	}
	if p.Escalation.DefaultMessage == "" {
		warnings = append(warnings, "escalation.default_message is not set")
	}

	return warnings, nil
}

// MatchCriteria describes a case for playbook selection
type MatchCriteria struct {
	Product  string
	Category string
	Message  string
	Severity types.Severity
}

// MatchScore scores the playbook against the criteria. A negative score
// means the playbook is excluded; otherwise higher is more specific
// (one point per matching declared trigger dimension). Playbooks that
// declare no trigger for a dimension are unconstrained on it and score
// zero for that dimension.
func (p *Playbook) MatchScore(c MatchCriteria) int {
	score := 0

	if len(p.Triggers.Products) > 0 {
		if !containsFold(p.Triggers.Products, c.Product) {
			return -1
		}
		score++
	}

	if len(p.Triggers.Categories) > 0 {
		if !containsFold(p.Triggers.Categories, c.Category) {
			return -1
		}
		score++
	}

	if len(p.Triggers.Keywords) > 0 {
		if !keywordOverlap(p.Triggers.Keywords, c.Message) {
			return -1
		}
		score++
	}

	return score
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// keywordOverlap reports whether any keyword appears in the message or
// the message appears in a keyword, case-insensitively.
func keywordOverlap(keywords []string, message string) bool {
	msg := strings.ToLower(message)
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(msg, k) || strings.Contains(k, msg) {
			return true
		}
	}
	return false
}
