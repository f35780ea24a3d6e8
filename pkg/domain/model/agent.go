package model

import (
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
)

// Role identifies the author of a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry of the ordered, append-only conversation log
type Message struct {
	Role    Role
	Content string
}

// TierHistory summarizes tier-1's attempts for the tier-2 agent so the
// customer never has to repeat themselves.
type TierHistory struct {
	StepsAttempted []string
	FailedSteps    []string
	LastResponse   string
	Summary        string
}

// AgentContext is the full per-turn input to an agent. It is rebuilt by
// the caller on every turn; the agents keep no hidden session state.
type AgentContext struct {
	TenantID string
	CaseID   string
	Message  string

	Product  string
	Category string
	Language string
	Severity types.Severity

	History        []Message
	Playbook       *ExecutionState
	FailedAttempts int

	// CaseHistory carries tier-1's attempt summary on escalated cases.
	// Only the tier-2 agent consumes it.
	CaseHistory *TierHistory
}

// Validate checks the required turn fields
func (c *AgentContext) Validate() error {
	if c == nil {
		return ErrMissingTurnField
	}
	if c.TenantID == "" || c.CaseID == "" || c.Message == "" {
		return ErrMissingTurnField
	}
	return nil
}

// SourceCitation references a knowledge-base document used in a response
type SourceCitation struct {
	Number int
	KBID   string
	DocID  string
}

// AgentAction is a structured side-effect signal returned with a response
type AgentAction struct {
	Type   string
	Params map[string]string
}

// ResponseMetadata carries observability data about one agent turn
type ResponseMetadata struct {
	Model          string
	InputTokens    int
	OutputTokens   int
	ProcessingTime time.Duration
}

// AgentResponse is the sole output contract of both agents
type AgentResponse struct {
	Message          string
	Action           *AgentAction
	ShouldEscalate   bool
	EscalationLevel  types.Tier
	EscalationReason string
	Sources          []SourceCitation
	Metadata         ResponseMetadata
}
