package interfaces

import (
	"context"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
)

// VectorIndex defines the interface for the tenant-namespaced vector
// store. Every operation is scoped to one tenant namespace; there is no
// cross-tenant visibility.
type VectorIndex interface {
	// Upsert stores or replaces vector records in the tenant namespace
	Upsert(ctx context.Context, tenantID string, records []*model.VectorRecord) error

	// Query returns up to topK scored matches for the vector, restricted
	// by the optional equality filter. Scores are cosine similarities
	// in [0,1], returned in descending order.
	Query(ctx context.Context, tenantID string, vector []float32, topK int, filter model.VectorFilter) ([]*model.RetrievalResult, error)

	// DeleteByFilter removes all records matching the filter.
	// Used for en-masse deletion of a KB or a single document.
	DeleteByFilter(ctx context.Context, tenantID string, filter model.VectorFilter) error
}
