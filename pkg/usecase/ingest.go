package usecase

import (
	"context"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/service/chunker"
	"github.com/NofaBC/TechSupport-AI/pkg/service/embedding"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// IngestUseCase feeds tenant documentation into the vector index
type IngestUseCase struct {
	uc *UseCases
}

// Document is one piece of tenant documentation to ingest
type Document struct {
	KBID     string
	DocID    string
	Product  string
	Language string
	Text     string
}

// IngestDocument chunks, embeds, and indexes one document. Re-ingesting
// the same document first drops its previous chunks so the index never
// holds both versions. Returns the number of indexed chunks.
func (i *IngestUseCase) IngestDocument(ctx context.Context, tenantID string, doc Document, onProgress embedding.ProgressFunc) (int, error) {
	if tenantID == "" {
		return 0, goerr.Wrap(model.ErrTenantRequired, "cannot ingest document")
	}
	if doc.KBID == "" || doc.DocID == "" {
		return 0, goerr.New("kb id and doc id are required",
			goerr.V("kb_id", doc.KBID), goerr.V("doc_id", doc.DocID))
	}
	logger := logging.From(ctx)

	chunks := chunker.Split(doc.Text, i.uc.chunkOpts)
	if len(chunks) == 0 {
		logger.Info("document produced no chunks, skipping", "doc_id", doc.DocID)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for idx, c := range chunks {
		texts[idx] = c.Content
	}

	records, err := i.uc.embedder.EmbedBatch(ctx, texts, onProgress)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to embed document chunks",
			goerr.V("doc_id", doc.DocID), goerr.V("chunks", len(chunks)))
	}

	vectors := make([]*model.VectorRecord, len(records))
	for idx, rec := range records {
		vectors[idx] = &model.VectorRecord{
			Values: rec.Embedding,
			Metadata: model.VectorMetadata{
				TenantID:   tenantID,
				KBID:       doc.KBID,
				DocID:      doc.DocID,
				Product:    doc.Product,
				ChunkIndex: rec.SourceIndex,
				Content:    rec.Text,
				Language:   doc.Language,
			},
		}
	}

	if err := i.DeleteDocument(ctx, tenantID, doc.KBID, doc.DocID); err != nil {
		return 0, err
	}
	if err := i.uc.repo.Vector().Upsert(ctx, tenantID, vectors); err != nil {
		return 0, goerr.Wrap(err, "failed to index document chunks", goerr.V("doc_id", doc.DocID))
	}

	logger.Info("document ingested",
		"tenant_id", tenantID, "kb_id", doc.KBID, "doc_id", doc.DocID, "chunks", len(vectors))
	return len(vectors), nil
}

// DeleteDocument removes all indexed chunks of a document
func (i *IngestUseCase) DeleteDocument(ctx context.Context, tenantID, kbID, docID string) error {
	err := i.uc.repo.Vector().DeleteByFilter(ctx, tenantID, model.VectorFilter{
		KBID:  kbID,
		DocID: docID,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete document chunks",
			goerr.V("kb_id", kbID), goerr.V("doc_id", docID))
	}
	return nil
}
