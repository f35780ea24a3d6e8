package interfaces

import (
	"context"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
)

// CaseRepository defines the interface for case persistence.
// Status updates go through UpdateStatus so the transition table is
// enforced in one place.
type CaseRepository interface {
	// Create creates a new case
	Create(ctx context.Context, tenantID string, c *model.Case) (*model.Case, error)

	// Get retrieves a case by ID
	Get(ctx context.Context, tenantID string, id model.CaseID) (*model.Case, error)

	// UpdateStatus transitions a case to a new status. It fails with
	// model.ErrInvalidTransition when the transition table forbids it.
	UpdateStatus(ctx context.Context, tenantID string, id model.CaseID, status types.CaseStatus) (*model.Case, error)

	// AddTimelineEvent appends an event to the case's timeline
	AddTimelineEvent(ctx context.Context, tenantID string, event *model.TimelineEvent) (*model.TimelineEvent, error)

	// ListTimeline retrieves the case's timeline events in append order
	ListTimeline(ctx context.Context, tenantID string, id model.CaseID) ([]*model.TimelineEvent, error)
}
