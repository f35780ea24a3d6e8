package model

import (
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/google/uuid"
)

// VisualSessionID is a UUID-based identifier for a visual session
type VisualSessionID string

// NewVisualSessionID generates a new UUID v7 VisualSessionID
func NewVisualSessionID() VisualSessionID {
	return VisualSessionID(uuid.Must(uuid.NewV7()).String())
}

// VisualSession represents a screen or camera sharing session requested
// by the tier-2 agent. The session token is never logged in clear text.
type VisualSession struct {
	ID        VisualSessionID
	TenantID  string
	CaseID    CaseID
	Mode      types.VisualMode
	Status    types.VisualSessionStatus
	Token     string `masq:"secret"`
	JoinURL   string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
