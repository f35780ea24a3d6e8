package usecase

// TierPromptData exposes the prompt template input for tests
type TierPromptData = tierPromptData

// RenderTier1SystemPrompt renders the tier-1 system prompt for tests
func RenderTier1SystemPrompt(data TierPromptData) (string, error) {
	return renderPrompt(tier1SystemPrompt, data)
}

// RenderTier2SystemPrompt renders the tier-2 system prompt for tests
func RenderTier2SystemPrompt(data TierPromptData) (string, error) {
	return renderPrompt(tier2SystemPrompt, data)
}

// HandoffMessage exposes the critical short-circuit response for tests
const HandoffMessage = handoffMessage
