package interfaces

import (
	"context"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
)

// Notifier is a fire-and-forget escalation sink. Send failures are
// logged by the caller and must never abort the owning turn.
type Notifier interface {
	NotifyEscalation(ctx context.Context, c *model.Case, level types.Tier, reason string) error
}
