package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// caseDoc is the Firestore document representation of model.Case
type caseDoc struct {
	ID            string    `firestore:"ID"`
	TenantID      string    `firestore:"TenantID"`
	Subject       string    `firestore:"Subject"`
	Product       string    `firestore:"Product"`
	Category      string    `firestore:"Category"`
	Language      string    `firestore:"Language"`
	Severity      string    `firestore:"Severity"`
	Status        string    `firestore:"Status"`
	Tier          string    `firestore:"Tier"`
	CustomerPhone string    `firestore:"CustomerPhone"`
	CreatedAt     time.Time `firestore:"CreatedAt"`
	UpdatedAt     time.Time `firestore:"UpdatedAt"`
}

func toCaseDoc(c *model.Case) *caseDoc {
	return &caseDoc{
		ID:            string(c.ID),
		TenantID:      c.TenantID,
		Subject:       c.Subject,
		Product:       c.Product,
		Category:      c.Category,
		Language:      c.Language,
		Severity:      string(c.Severity),
		Status:        string(c.Status),
		Tier:          string(c.Tier),
		CustomerPhone: c.CustomerPhone,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func fromCaseDoc(d *caseDoc) *model.Case {
	return &model.Case{
		ID:            model.CaseID(d.ID),
		TenantID:      d.TenantID,
		Subject:       d.Subject,
		Product:       d.Product,
		Category:      d.Category,
		Language:      d.Language,
		Severity:      types.Severity(d.Severity),
		Status:        types.CaseStatus(d.Status),
		Tier:          types.Tier(d.Tier),
		CustomerPhone: d.CustomerPhone,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type caseRepository struct {
	client *firestore.Client
}

func newCaseRepository(client *firestore.Client) *caseRepository {
	return &caseRepository{client: client}
}

func (r *caseRepository) casesCollection(tenantID string) *firestore.CollectionRef {
	return tenantDoc(r.client, tenantID).Collection("cases")
}

func (r *caseRepository) timelineCollection(tenantID string, caseID model.CaseID) *firestore.CollectionRef {
	return r.casesCollection(tenantID).Doc(string(caseID)).Collection("timeline")
}

func (r *caseRepository) Create(ctx context.Context, tenantID string, c *model.Case) (*model.Case, error) {
	if tenantID == "" {
		return nil, goerr.Wrap(model.ErrTenantRequired, "cannot create case")
	}

	now := time.Now().UTC()
	created := *c
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

	docRef := r.casesCollection(tenantID).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toCaseDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create case", goerr.V("case_id", created.ID))
	}
	return &created, nil
}

func (r *caseRepository) Get(ctx context.Context, tenantID string, id model.CaseID) (*model.Case, error) {
	doc, err := r.casesCollection(tenantID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrCaseNotFound, "case not found",
				goerr.V("tenant_id", tenantID), goerr.V("case_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("case_id", id))
	}

	var d caseDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal case", goerr.V("case_id", id))
	}
	return fromCaseDoc(&d), nil
}

// UpdateStatus validates the transition inside a transaction so two
// concurrent updates cannot both pass the transition check.
func (r *caseRepository) UpdateStatus(ctx context.Context, tenantID string, id model.CaseID, next types.CaseStatus) (*model.Case, error) {
	docRef := r.casesCollection(tenantID).Doc(string(id))

	var updated *model.Case
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrCaseNotFound, "case not found", goerr.V("case_id", id))
			}
			return goerr.Wrap(err, "failed to get case for status update")
		}

		var d caseDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal case", goerr.V("case_id", id))
		}
		c := fromCaseDoc(&d)

		if !c.Status.CanTransitionTo(next) {
			return goerr.Wrap(model.ErrInvalidTransition, "case status transition rejected",
				goerr.V("case_id", id),
				goerr.V("from", c.Status),
				goerr.V("to", next))
		}

		c.Status = next
		switch next {
		case types.CaseStatusEscalatedL2:
			c.Tier = types.TierL2
		case types.CaseStatusEscalatedHuman:
			c.Tier = types.TierL3
		}
		c.UpdatedAt = time.Now().UTC()
		updated = c

		return tx.Set(docRef, toCaseDoc(c))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// timelineEventDoc is the Firestore document representation of model.TimelineEvent
type timelineEventDoc struct {
	ID          string    `firestore:"ID"`
	CaseID      string    `firestore:"CaseID"`
	Type        string    `firestore:"Type"`
	Description string    `firestore:"Description"`
	Actor       string    `firestore:"Actor"`
	CreatedAt   time.Time `firestore:"CreatedAt"`
}

func (r *caseRepository) AddTimelineEvent(ctx context.Context, tenantID string, event *model.TimelineEvent) (*model.TimelineEvent, error) {
	created := *event
	if created.ID == "" {
		created.ID = model.NewTimelineEventID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.timelineCollection(tenantID, created.CaseID).Doc(string(created.ID))
	doc := &timelineEventDoc{
		ID:          string(created.ID),
		CaseID:      string(created.CaseID),
		Type:        string(created.Type),
		Description: created.Description,
		Actor:       created.Actor,
		CreatedAt:   created.CreatedAt,
	}
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to add timeline event",
			goerr.V("case_id", created.CaseID))
	}
	return &created, nil
}

func (r *caseRepository) ListTimeline(ctx context.Context, tenantID string, id model.CaseID) ([]*model.TimelineEvent, error) {
	iter := r.timelineCollection(tenantID, id).OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var events []*model.TimelineEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate timeline events", goerr.V("case_id", id))
		}

		var d timelineEventDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal timeline event")
		}
		events = append(events, &model.TimelineEvent{
			ID:          model.TimelineEventID(d.ID),
			CaseID:      model.CaseID(d.CaseID),
			Type:        types.TimelineEventType(d.Type),
			Description: d.Description,
			Actor:       d.Actor,
			CreatedAt:   d.CreatedAt,
		})
	}
	return events, nil
}
