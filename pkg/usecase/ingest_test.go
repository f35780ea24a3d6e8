package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/repository/memory"
	"github.com/NofaBC/TechSupport-AI/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func queryVector() []float32 {
	v := make([]float32, model.EmbeddingDimension)
	v[0] = 1
	return v
}

func TestIngestDocument(t *testing.T) {
	repo := memory.New()
	uc, err := usecase.New(repo, &mockLLMClient{})
	gt.NoError(t, err).Required()

	text := strings.Repeat("The router blinks red when the uplink drops. ", 200)
	count, err := uc.Ingest.IngestDocument(context.Background(), "t1", usecase.Document{
		KBID:    "kb-1",
		DocID:   "doc-1",
		Product: "router-x",
		Text:    text,
	}, nil)
	gt.NoError(t, err).Required()
	gt.Number(t, count).Greater(1)

	results, err := repo.Vector().Query(context.Background(), "t1", queryVector(), 100, model.VectorFilter{})
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(count)
	gt.Equal(t, results[0].Metadata.KBID, "kb-1")
	gt.Equal(t, results[0].Metadata.Product, "router-x")
}

func TestIngestReplacesPreviousVersion(t *testing.T) {
	repo := memory.New()
	uc, err := usecase.New(repo, &mockLLMClient{})
	gt.NoError(t, err).Required()

	long := strings.Repeat("First edition of the troubleshooting guide. ", 200)
	_, err = uc.Ingest.IngestDocument(context.Background(), "t1", usecase.Document{
		KBID: "kb-1", DocID: "doc-1", Text: long,
	}, nil)
	gt.NoError(t, err).Required()

	count, err := uc.Ingest.IngestDocument(context.Background(), "t1", usecase.Document{
		KBID: "kb-1", DocID: "doc-1", Text: "Second edition, much shorter.",
	}, nil)
	gt.NoError(t, err).Required()

	// Only the chunks of the latest version remain
	results, err := repo.Vector().Query(context.Background(), "t1", queryVector(), 100, model.VectorFilter{
		KBID: "kb-1", DocID: "doc-1",
	})
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(count)
}

func TestIngestRequiresIdentity(t *testing.T) {
	uc, err := usecase.New(memory.New(), &mockLLMClient{})
	gt.NoError(t, err).Required()

	_, err = uc.Ingest.IngestDocument(context.Background(), "", usecase.Document{
		KBID: "kb-1", DocID: "doc-1", Text: "text",
	}, nil)
	gt.Error(t, err)

	_, err = uc.Ingest.IngestDocument(context.Background(), "t1", usecase.Document{
		DocID: "doc-1", Text: "text",
	}, nil)
	gt.Error(t, err)
}

func TestIngestEmptyDocument(t *testing.T) {
	uc, err := usecase.New(memory.New(), &mockLLMClient{})
	gt.NoError(t, err).Required()

	count, err := uc.Ingest.IngestDocument(context.Background(), "t1", usecase.Document{
		KBID: "kb-1", DocID: "doc-1", Text: "   ",
	}, nil)
	gt.NoError(t, err)
	gt.Equal(t, count, 0)
}

func TestDeleteDocument(t *testing.T) {
	repo := memory.New()
	uc, err := usecase.New(repo, &mockLLMClient{})
	gt.NoError(t, err).Required()

	_, err = uc.Ingest.IngestDocument(context.Background(), "t1", usecase.Document{
		KBID: "kb-1", DocID: "doc-1", Text: "A short note about reboots.",
	}, nil)
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Ingest.DeleteDocument(context.Background(), "t1", "kb-1", "doc-1"))

	results, err := repo.Vector().Query(context.Background(), "t1", queryVector(), 10, model.VectorFilter{})
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(0)
}
