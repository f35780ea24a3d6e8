package embedding_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/service/embedding"
	"github.com/m-mizutani/gt"
)

// mockEmbedder returns a deterministic vector derived from the input
// index so ordering is observable.
type mockEmbedder struct {
	mu        sync.Mutex
	calls     [][]string
	failAfter int // fail on call N (1-based), 0 = never
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	call := len(m.calls)
	m.mu.Unlock()

	if m.failAfter > 0 && call >= m.failAfter {
		return nil, errors.New("rate limited")
	}

	out := make([][]float64, len(input))
	for i, text := range input {
		var idx int
		fmt.Sscanf(text, "text-%d", &idx)
		out[i] = []float64{float64(idx), 1, 0}
	}
	return out, nil
}

func TestEmbedBatch_PreservesInputOrder(t *testing.T) {
	mock := &mockEmbedder{}
	svc, err := embedding.New(mock, embedding.WithBatchDelay(0), embedding.WithConcurrency(4))
	gt.NoError(t, err).Required()

	texts := make([]string, 250)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	var progress []int
	records, err := svc.EmbedBatch(context.Background(), texts, func(done, total int) {
		progress = append(progress, done)
		gt.Equal(t, total, 250)
	})
	gt.NoError(t, err).Required()

	gt.Array(t, records).Length(250)
	for i, rec := range records {
		gt.Equal(t, rec.SourceIndex, i)
		gt.Equal(t, rec.Text, fmt.Sprintf("text-%d", i))
		gt.Equal(t, rec.Embedding[0], float32(i))
	}

	// 250 texts split into batches of at most 100
	gt.Equal(t, len(mock.calls), 3)
	for _, call := range mock.calls {
		gt.Number(t, len(call)).LessOrEqual(100)
	}

	// One callback per completed batch, with a strictly growing count
	gt.Equal(t, len(progress), 3)
	for i := 1; i < len(progress); i++ {
		gt.Number(t, progress[i]).Greater(progress[i-1])
	}
	gt.Equal(t, progress[len(progress)-1], 250)
}

func TestEmbedBatch_FailedBatchAbortsCall(t *testing.T) {
	mock := &mockEmbedder{failAfter: 2}
	svc, err := embedding.New(mock, embedding.WithBatchDelay(0))
	gt.NoError(t, err).Required()

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	records, err := svc.EmbedBatch(context.Background(), texts, nil)
	gt.Error(t, err)
	gt.Array(t, records).Length(0)
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	svc, err := embedding.New(&mockEmbedder{})
	gt.NoError(t, err).Required()

	records, err := svc.EmbedBatch(context.Background(), nil, nil)
	gt.NoError(t, err)
	gt.Array(t, records).Length(0)
}

func TestEmbed_SingleText(t *testing.T) {
	svc, err := embedding.New(&mockEmbedder{})
	gt.NoError(t, err).Required()

	vec, err := svc.Embed(context.Background(), "text-7")
	gt.NoError(t, err).Required()
	gt.Equal(t, vec[0], float32(7))
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		score, err := embedding.CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})
		gt.NoError(t, err)
		gt.Number(t, score).Greater(0.9999)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		score, err := embedding.CosineSimilarity([]float32{1, 0}, []float32{0, 1})
		gt.NoError(t, err)
		gt.Number(t, score).Less(0.0001)
	})

	t.Run("dimension mismatch fails", func(t *testing.T) {
		_, err := embedding.CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrDimensionMismatch)).True()
	})

	t.Run("zero vector scores 0", func(t *testing.T) {
		score, err := embedding.CosineSimilarity([]float32{0, 0}, []float32{1, 2})
		gt.NoError(t, err)
		gt.Equal(t, score, 0.0)
	})
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := embedding.New(nil)
	gt.Error(t, err)
}
