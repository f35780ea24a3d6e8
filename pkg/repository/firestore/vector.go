package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/service/embedding"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// vectorDoc is the Firestore document representation of model.VectorRecord.
// Values is stored as firestore.Vector32 so that FindNearest vector
// search works.
type vectorDoc struct {
	ID         string             `firestore:"ID"`
	Values     firestore.Vector32 `firestore:"Values"`
	KBID       string             `firestore:"KBID"`
	DocID      string             `firestore:"DocID"`
	Product    string             `firestore:"Product"`
	ChunkIndex int                `firestore:"ChunkIndex"`
	Content    string             `firestore:"Content"`
	Language   string             `firestore:"Language"`
}

func toVectorDoc(tenantID string, r *model.VectorRecord) *vectorDoc {
	return &vectorDoc{
		ID:         string(r.ID),
		Values:     firestore.Vector32(r.Values),
		KBID:       r.Metadata.KBID,
		DocID:      r.Metadata.DocID,
		Product:    r.Metadata.Product,
		ChunkIndex: r.Metadata.ChunkIndex,
		Content:    r.Metadata.Content,
		Language:   r.Metadata.Language,
	}
}

func fromVectorDoc(tenantID string, d *vectorDoc) *model.VectorRecord {
	return &model.VectorRecord{
		ID:     model.VectorID(d.ID),
		Values: []float32(d.Values),
		Metadata: model.VectorMetadata{
			TenantID:   tenantID,
			KBID:       d.KBID,
			DocID:      d.DocID,
			Product:    d.Product,
			ChunkIndex: d.ChunkIndex,
			Content:    d.Content,
			Language:   d.Language,
		},
	}
}

type vectorIndex struct {
	client *firestore.Client
}

func newVectorIndex(client *firestore.Client) *vectorIndex {
	return &vectorIndex{client: client}
}

func (x *vectorIndex) vectorsCollection(tenantID string) *firestore.CollectionRef {
	return tenantDoc(x.client, tenantID).Collection("vectors")
}

func (x *vectorIndex) Upsert(ctx context.Context, tenantID string, records []*model.VectorRecord) error {
	if tenantID == "" {
		return goerr.Wrap(model.ErrTenantRequired, "cannot upsert vectors")
	}

	bw := x.client.BulkWriter(ctx)
	col := x.vectorsCollection(tenantID)
	for _, rec := range records {
		stored := *rec
		if stored.ID == "" {
			stored.ID = model.NewVectorID()
		}
		if _, err := bw.Set(col.Doc(string(stored.ID)), toVectorDoc(tenantID, &stored)); err != nil {
			return goerr.Wrap(err, "failed to enqueue vector upsert", goerr.V("vector_id", stored.ID))
		}
	}
	bw.End()
	return nil
}

func (x *vectorIndex) applyFilter(q firestore.Query, filter model.VectorFilter) firestore.Query {
	if filter.KBID != "" {
		q = q.Where("KBID", "==", filter.KBID)
	}
	if filter.DocID != "" {
		q = q.Where("DocID", "==", filter.DocID)
	}
	if filter.Product != "" {
		q = q.Where("Product", "==", filter.Product)
	}
	if filter.Language != "" {
		q = q.Where("Language", "==", filter.Language)
	}
	return q
}

// Query delegates nearest-neighbor search to Firestore FindNearest and
// recomputes the exact cosine score from the returned values, since
// FindNearest reports distance only through an optional result field.
func (x *vectorIndex) Query(ctx context.Context, tenantID string, vector []float32, topK int, filter model.VectorFilter) ([]*model.RetrievalResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	q := x.applyFilter(x.vectorsCollection(tenantID).Query, filter)
	vq := q.FindNearest("Values", firestore.Vector32(vector), topK, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.RetrievalResult, 0, topK)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results",
				goerr.V("tenant_id", tenantID))
		}

		var d vectorDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal vector record")
		}
		rec := fromVectorDoc(tenantID, &d)

		score, err := embedding.CosineSimilarity(vector, rec.Values)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to score vector match", goerr.V("vector_id", rec.ID))
		}
		if score < 0 {
			score = 0
		}

		results = append(results, &model.RetrievalResult{
			Content:  rec.Metadata.Content,
			Score:    score,
			Metadata: rec.Metadata,
		})
	}
	return results, nil
}

func (x *vectorIndex) DeleteByFilter(ctx context.Context, tenantID string, filter model.VectorFilter) error {
	q := x.applyFilter(x.vectorsCollection(tenantID).Query, filter)

	iter := q.Documents(ctx)
	defer iter.Stop()

	bw := x.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate vectors for deletion",
				goerr.V("tenant_id", tenantID))
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to enqueue vector deletion")
		}
	}
	bw.End()
	return nil
}
