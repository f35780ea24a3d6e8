// Package visual is the in-process implementation of the visual
// support session collaborator. Sessions live in memory with a join
// token and an expiry; a production deployment would swap in a WebRTC
// signaling backend behind the same interface.
package visual

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/interfaces"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultExpiry is the session lifetime when the caller does not set one
const DefaultExpiry = 15 * time.Minute

type sessionKey struct {
	tenantID string
	id       model.VisualSessionID
}

// Service is the in-memory VisualSessionService
type Service struct {
	mu       sync.RWMutex
	sessions map[sessionKey]*model.VisualSession
	baseURL  string
	now      func() time.Time
}

var _ interfaces.VisualSessionService = &Service{}

// Option is a functional option for Service configuration
type Option func(*Service)

// WithBaseURL sets the public base URL that join links are built from
func WithBaseURL(u string) Option {
	return func(s *Service) {
		s.baseURL = u
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates an in-memory visual session service
func New(opts ...Option) *Service {
	s := &Service{
		sessions: make(map[sessionKey]*model.VisualSession),
		baseURL:  "https://visual.localhost",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func copySession(s *model.VisualSession) *model.VisualSession {
	copied := *s
	return &copied
}

func (s *Service) CreateSession(ctx context.Context, tenantID string, caseID model.CaseID, mode types.VisualMode, expiry time.Duration) (*model.VisualSession, error) {
	if tenantID == "" {
		return nil, goerr.Wrap(model.ErrTenantRequired, "cannot create visual session")
	}
	if !mode.IsValid() {
		return nil, goerr.New("invalid visual mode", goerr.V("mode", mode))
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	now := s.now().UTC()
	session := &model.VisualSession{
		ID:        model.NewVisualSessionID(),
		TenantID:  tenantID,
		CaseID:    caseID,
		Mode:      mode,
		Status:    types.VisualSessionPending,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(expiry),
		CreatedAt: now,
		UpdatedAt: now,
	}
	session.JoinURL = fmt.Sprintf("%s/join/%s?token=%s", s.baseURL, session.ID, session.Token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey{tenantID: tenantID, id: session.ID}] = session

	return copySession(session), nil
}

func (s *Service) GetSession(ctx context.Context, tenantID string, id model.VisualSessionID) (*model.VisualSession, error) {
	// Status, expiry, and the copy are all read under the lock;
	// UpdateStatus mutates the same struct under the write lock.
	s.mu.RLock()
	session, ok := s.sessions[sessionKey{tenantID: tenantID, id: id}]
	if !ok {
		s.mu.RUnlock()
		return nil, goerr.Wrap(model.ErrSessionNotFound, "visual session not found",
			goerr.V("tenant_id", tenantID), goerr.V("session_id", id))
	}

	// Lazily expire on read so callers never see a joinable session
	// past its deadline.
	expired := session.Status != types.VisualSessionEnded &&
		session.Status != types.VisualSessionExpired &&
		s.now().After(session.ExpiresAt)
	var copied *model.VisualSession
	if !expired {
		copied = copySession(session)
	}
	s.mu.RUnlock()

	if expired {
		return s.UpdateStatus(ctx, tenantID, id, types.VisualSessionExpired)
	}
	return copied, nil
}

func (s *Service) UpdateStatus(ctx context.Context, tenantID string, id model.VisualSessionID, status types.VisualSessionStatus) (*model.VisualSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionKey{tenantID: tenantID, id: id}]
	if !ok {
		return nil, goerr.Wrap(model.ErrSessionNotFound, "visual session not found",
			goerr.V("tenant_id", tenantID), goerr.V("session_id", id))
	}
	if !session.Status.CanTransitionTo(status) {
		return nil, goerr.Wrap(model.ErrSessionTransition, "visual session transition rejected",
			goerr.V("session_id", id),
			goerr.V("from", session.Status),
			goerr.V("to", status))
	}

	session.Status = status
	session.UpdatedAt = s.now().UTC()
	return copySession(session), nil
}
