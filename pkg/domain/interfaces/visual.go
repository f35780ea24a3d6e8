package interfaces

import (
	"context"
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
)

// VisualSessionService manages screen/camera sharing sessions.
// The session object lifecycle is an external collaborator; the core
// only requests creation and observes status.
type VisualSessionService interface {
	// CreateSession issues a new pending session with a join token
	CreateSession(ctx context.Context, tenantID string, caseID model.CaseID, mode types.VisualMode, expiry time.Duration) (*model.VisualSession, error)

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, tenantID string, id model.VisualSessionID) (*model.VisualSession, error)

	// UpdateStatus transitions the session lifecycle
	// (pending→active→ended|expired)
	UpdateStatus(ctx context.Context, tenantID string, id model.VisualSessionID, status types.VisualSessionStatus) (*model.VisualSession, error)
}
