package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/service/embedding"
	"github.com/m-mizutani/goerr/v2"
)

// vectorIndex is a brute-force cosine scan over per-tenant record maps.
// Good enough for development and tests; the Firestore backend uses
// FindNearest for the same contract.
type vectorIndex struct {
	mu      sync.RWMutex
	tenants map[string]map[model.VectorID]*model.VectorRecord
}

func newVectorIndex() *vectorIndex {
	return &vectorIndex{
		tenants: make(map[string]map[model.VectorID]*model.VectorRecord),
	}
}

func copyVectorRecord(r *model.VectorRecord) *model.VectorRecord {
	copied := &model.VectorRecord{
		ID:       r.ID,
		Metadata: r.Metadata,
	}
	if r.Values != nil {
		copied.Values = make([]float32, len(r.Values))
		copy(copied.Values, r.Values)
	}
	return copied
}

func (x *vectorIndex) Upsert(ctx context.Context, tenantID string, records []*model.VectorRecord) error {
	if tenantID == "" {
		return goerr.Wrap(model.ErrTenantRequired, "cannot upsert vectors")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	ns, ok := x.tenants[tenantID]
	if !ok {
		ns = make(map[model.VectorID]*model.VectorRecord)
		x.tenants[tenantID] = ns
	}

	for _, rec := range records {
		stored := copyVectorRecord(rec)
		if stored.ID == "" {
			stored.ID = model.NewVectorID()
		}
		stored.Metadata.TenantID = tenantID
		ns[stored.ID] = stored
	}
	return nil
}

func (x *vectorIndex) Query(ctx context.Context, tenantID string, vector []float32, topK int, filter model.VectorFilter) ([]*model.RetrievalResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	type scored struct {
		rec   *model.VectorRecord
		score float64
	}

	var matches []scored
	for _, rec := range x.tenants[tenantID] {
		if !filter.Matches(rec.Metadata) {
			continue
		}
		score, err := embedding.CosineSimilarity(vector, rec.Values)
		if err != nil {
			return nil, goerr.Wrap(err, "vector query failed", goerr.V("vector_id", rec.ID))
		}
		if score < 0 {
			score = 0
		}
		matches = append(matches, scored{rec: rec, score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]*model.RetrievalResult, len(matches))
	for i, m := range matches {
		results[i] = &model.RetrievalResult{
			Content:  m.rec.Metadata.Content,
			Score:    m.score,
			Metadata: m.rec.Metadata,
		}
	}
	return results, nil
}

func (x *vectorIndex) DeleteByFilter(ctx context.Context, tenantID string, filter model.VectorFilter) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	ns := x.tenants[tenantID]
	for id, rec := range ns {
		if filter.Matches(rec.Metadata) {
			delete(ns, id)
		}
	}
	return nil
}
