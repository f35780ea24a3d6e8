package model

import (
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/google/uuid"
)

// CaseID is a UUID-based identifier for a support case
type CaseID string

// NewCaseID generates a new UUID v7 CaseID
func NewCaseID() CaseID {
	return CaseID(uuid.Must(uuid.NewV7()).String())
}

// Case represents one customer support case within a tenant.
// CustomerPhone is tagged so the logging layer masks it.
type Case struct {
	ID            CaseID
	TenantID      string
	Subject       string
	Product       string
	Category      string
	Language      string
	Severity      types.Severity
	Status        types.CaseStatus
	Tier          types.Tier
	CustomerPhone string `masq:"secret"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TimelineEventID is a UUID-based identifier for a timeline event
type TimelineEventID string

// NewTimelineEventID generates a new UUID v7 TimelineEventID
func NewTimelineEventID() TimelineEventID {
	return TimelineEventID(uuid.Must(uuid.NewV7()).String())
}

// TimelineEvent is one entry of a case's append-only event log
type TimelineEvent struct {
	ID          TimelineEventID
	CaseID      CaseID
	Type        types.TimelineEventType
	Description string
	Actor       string
	CreatedAt   time.Time
}
