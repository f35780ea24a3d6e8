// Package embedding turns text into vectors through the configured LLM
// provider and exposes cosine similarity over them.
package embedding

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// ProviderBatchLimit is the maximum number of texts per provider call
const ProviderBatchLimit = 100

// ProgressFunc is called after each completed batch with the number of
// texts embedded so far and the total
type ProgressFunc func(done, total int)

// Service generates embeddings for text
type Service interface {
	// Embed generates an embedding vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds many texts, batching provider calls. Results
	// are returned in input order regardless of batch completion order.
	// A failed batch aborts the whole call.
	EmbedBatch(ctx context.Context, texts []string, onProgress ProgressFunc) ([]model.EmbeddingRecord, error)
}

// client implements Service
type client struct {
	llm         embedder
	dimension   int
	batchSize   int
	batchDelay  time.Duration
	concurrency int
}

// embedder is the slice of gollem.LLMClient this service needs
type embedder interface {
	GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

// Option is a functional option for client configuration
type Option func(*client)

// WithBatchSize overrides the per-call batch size (capped at the
// provider limit)
func WithBatchSize(n int) Option {
	return func(c *client) {
		if n > 0 && n <= ProviderBatchLimit {
			c.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between batch launches to respect
// provider rate limits
func WithBatchDelay(d time.Duration) Option {
	return func(c *client) {
		if d >= 0 {
			c.batchDelay = d
		}
	}
}

// WithConcurrency bounds the number of in-flight provider calls
func WithConcurrency(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithDimension overrides the embedding dimension
func WithDimension(dim int) Option {
	return func(c *client) {
		if dim > 0 {
			c.dimension = dim
		}
	}
}

// New creates a new embedding Service backed by the given provider
func New(llm embedder, opts ...Option) (Service, error) {
	if llm == nil {
		return nil, goerr.New("embedding provider is required")
	}

	c := &client{
		llm:         llm,
		dimension:   model.EmbeddingDimension,
		batchSize:   ProviderBatchLimit,
		batchDelay:  100 * time.Millisecond,
		concurrency: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.llm.GenerateEmbedding(ctx, c.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, goerr.New("embedding provider returned empty result")
	}
	return toFloat32(vectors[0]), nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string, onProgress ProgressFunc) ([]model.EmbeddingRecord, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	records := make([]model.EmbeddingRecord, len(texts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)

	// Progress is reported as each batch lands; the mutex serializes
	// the running count and the callback.
	var progressMu sync.Mutex
	var done int

	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		batchStart, batch := start, texts[start:end]

		eg.Go(func() error {
			vectors, err := c.llm.GenerateEmbedding(egCtx, c.dimension, batch)
			if err != nil {
				return goerr.Wrap(err, "embedding batch failed",
					goerr.V("batch_start", batchStart),
					goerr.V("batch_size", len(batch)))
			}
			if len(vectors) != len(batch) {
				return goerr.New("embedding batch size mismatch",
					goerr.V("want", len(batch)), goerr.V("got", len(vectors)))
			}
			for i, v := range vectors {
				records[batchStart+i] = model.EmbeddingRecord{
					Text:        batch[i],
					Embedding:   toFloat32(v),
					SourceIndex: batchStart + i,
				}
			}
			if onProgress != nil {
				progressMu.Lock()
				done += len(batch)
				onProgress(done, len(texts))
				progressMu.Unlock()
			}
			return nil
		})

		// Pause between launches to respect upstream rate limits
		if end < len(texts) && c.batchDelay > 0 {
			select {
			case <-egCtx.Done():
			case <-time.After(c.batchDelay):
			}
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Provider responses are keyed back by source index above; the sort
	// is kept explicit so ordering never depends on scheduling.
	sort.Slice(records, func(i, j int) bool {
		return records[i].SourceIndex < records[j].SourceIndex
	})

	return records, nil
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Vectors of different lengths fail with model.ErrDimensionMismatch.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, goerr.Wrap(model.ErrDimensionMismatch, "vector lengths differ",
			goerr.V("len_a", len(a)), goerr.V("len_b", len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
