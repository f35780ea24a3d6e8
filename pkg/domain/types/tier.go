package types

import "fmt"

// Tier represents a support tier handling a case
type Tier string

const (
	// TierL1 is the first-line AI agent with a constrained tool set
	TierL1 Tier = "L1"
	// TierL2 is the second-line AI agent with expanded tooling
	TierL2 Tier = "L2"
	// TierL3 is the human support queue
	TierL3 Tier = "L3"
)

// IsValid checks if the tier is valid
func (t Tier) IsValid() bool {
	switch t {
	case TierL1, TierL2, TierL3:
		return true
	default:
		return false
	}
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// ParseTier parses a string into a Tier
func ParseTier(s string) (Tier, error) {
	tier := Tier(s)
	if !tier.IsValid() {
		return "", fmt.Errorf("invalid tier: %s", s)
	}
	return tier, nil
}
