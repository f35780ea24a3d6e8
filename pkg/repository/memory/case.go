package memory

import (
	"context"
	"sync"
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type caseKey struct {
	tenantID string
	caseID   model.CaseID
}

type caseRepository struct {
	mu       sync.RWMutex
	cases    map[caseKey]*model.Case
	timeline map[caseKey][]*model.TimelineEvent
}

func newCaseRepository() *caseRepository {
	return &caseRepository{
		cases:    make(map[caseKey]*model.Case),
		timeline: make(map[caseKey][]*model.TimelineEvent),
	}
}

func copyCase(c *model.Case) *model.Case {
	copied := *c
	return &copied
}

func (r *caseRepository) Create(ctx context.Context, tenantID string, c *model.Case) (*model.Case, error) {
	if tenantID == "" {
		return nil, goerr.Wrap(model.ErrTenantRequired, "cannot create case")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyCase(c)
	if created.ID == "" {
		created.ID = model.NewCaseID()
	}
	created.TenantID = tenantID
	created.Status = created.Status.Normalize()
	if created.Tier == "" {
		created.Tier = types.TierL1
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.cases[caseKey{tenantID, created.ID}] = created
	return copyCase(created), nil
}

func (r *caseRepository) Get(ctx context.Context, tenantID string, id model.CaseID) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.cases[caseKey{tenantID, id}]
	if !exists {
		return nil, goerr.Wrap(model.ErrCaseNotFound, "case not found",
			goerr.V("tenant_id", tenantID), goerr.V("case_id", id))
	}
	return copyCase(c), nil
}

func (r *caseRepository) UpdateStatus(ctx context.Context, tenantID string, id model.CaseID, status types.CaseStatus) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.cases[caseKey{tenantID, id}]
	if !exists {
		return nil, goerr.Wrap(model.ErrCaseNotFound, "case not found",
			goerr.V("tenant_id", tenantID), goerr.V("case_id", id))
	}

	if !c.Status.CanTransitionTo(status) {
		return nil, goerr.Wrap(model.ErrInvalidTransition, "case status transition rejected",
			goerr.V("case_id", id),
			goerr.V("from", c.Status),
			goerr.V("to", status))
	}

	c.Status = status
	switch status {
	case types.CaseStatusEscalatedL2:
		c.Tier = types.TierL2
	case types.CaseStatusEscalatedHuman:
		c.Tier = types.TierL3
	}
	c.UpdatedAt = time.Now().UTC()
	return copyCase(c), nil
}

func (r *caseRepository) AddTimelineEvent(ctx context.Context, tenantID string, event *model.TimelineEvent) (*model.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := caseKey{tenantID, event.CaseID}
	if _, exists := r.cases[key]; !exists {
		return nil, goerr.Wrap(model.ErrCaseNotFound, "case not found for timeline event",
			goerr.V("tenant_id", tenantID), goerr.V("case_id", event.CaseID))
	}

	created := *event
	if created.ID == "" {
		created.ID = model.NewTimelineEventID()
	}
	created.CreatedAt = time.Now().UTC()

	r.timeline[key] = append(r.timeline[key], &created)
	result := created
	return &result, nil
}

func (r *caseRepository) ListTimeline(ctx context.Context, tenantID string, id model.CaseID) ([]*model.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.timeline[caseKey{tenantID, id}]
	result := make([]*model.TimelineEvent, len(events))
	for i, e := range events {
		copied := *e
		result[i] = &copied
	}
	return result, nil
}
