// Package retrieval finds knowledge-base chunks relevant to a query and
// assembles them into a token-bounded context block for prompt injection.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/interfaces"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/service/embedding"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultTopK is the number of chunks fetched per query
	DefaultTopK = 5

	// DefaultMinScore is the relevance floor for returned chunks
	DefaultMinScore = 0.7

	// probeMinScore is the stricter floor used by HasRelevantContent
	probeMinScore = 0.75

	// chunkDelimiter separates chunks inside an assembled context block
	chunkDelimiter = "\n\n---\n\n"

	// minUsefulChars is the smallest truncated chunk prefix worth
	// including when the first chunk alone overflows the budget
	minUsefulChars = 100
)

// Query carries the per-call retrieval parameters. Zero values fall
// back to the defaults above.
type Query struct {
	TopK     int
	MinScore float64
	Product  string
	KBID     string
	Language string
}

// Service retrieves relevant documentation chunks for a tenant
type Service interface {
	// Retrieve embeds the query and returns matching chunks at or
	// above the score floor, sorted by descending score
	Retrieve(ctx context.Context, tenantID, query string, q Query) ([]*model.RetrievalResult, error)

	// HasRelevantContent is a cheap probe that reports whether any
	// chunk clears the strict relevance floor
	HasRelevantContent(ctx context.Context, tenantID, query string, q Query) (bool, error)
}

type client struct {
	embedder embedding.Service
	index    interfaces.VectorIndex
}

var _ Service = &client{}

// New creates a retrieval service over the given embedder and vector index
func New(embedder embedding.Service, index interfaces.VectorIndex) (Service, error) {
	if embedder == nil {
		return nil, goerr.New("embedding service is required")
	}
	if index == nil {
		return nil, goerr.New("vector index is required")
	}
	return &client{embedder: embedder, index: index}, nil
}

func (q Query) normalize() Query {
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}
	if q.MinScore <= 0 {
		q.MinScore = DefaultMinScore
	}
	return q
}

func (c *client) Retrieve(ctx context.Context, tenantID, query string, q Query) ([]*model.RetrievalResult, error) {
	if tenantID == "" {
		return nil, goerr.Wrap(model.ErrTenantRequired, "cannot retrieve context")
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	q = q.normalize()

	vector, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	matches, err := c.index.Query(ctx, tenantID, vector, q.TopK, model.VectorFilter{
		Product:  q.Product,
		KBID:     q.KBID,
		Language: q.Language,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "vector index query failed", goerr.V("tenant_id", tenantID))
	}

	// The index returns approximately sorted results. Filter and
	// re-sort explicitly anyway so the contract holds for any backend.
	results := make([]*model.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		if m.Score < q.MinScore {
			continue
		}
		results = append(results, m)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

func (c *client) HasRelevantContent(ctx context.Context, tenantID, query string, q Query) (bool, error) {
	q.TopK = 1
	q.MinScore = probeMinScore
	results, err := c.Retrieve(ctx, tenantID, query, q)
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}

// AssembleContext joins chunk contents by descending score until the
// estimated token count would exceed the budget. If even the first
// chunk overflows, a truncated prefix is used when it is long enough
// to still be useful.
func AssembleContext(results []*model.RetrievalResult, maxTokenBudget int) string {
	block, _ := assemble(results, maxTokenBudget, false)
	return block
}

// AssembleContextWithCitations behaves like AssembleContext but tags
// each chunk with a source number, deduplicated by (kbId, docId) in the
// order first referenced, and returns the citation list.
func AssembleContextWithCitations(results []*model.RetrievalResult, maxTokenBudget int) (string, []model.SourceCitation) {
	return assemble(results, maxTokenBudget, true)
}

func assemble(results []*model.RetrievalResult, maxTokenBudget int, cite bool) (string, []model.SourceCitation) {
	if len(results) == 0 || maxTokenBudget <= 0 {
		return "", nil
	}

	sorted := make([]*model.RetrievalResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	type sourceKey struct {
		kbID  string
		docID string
	}
	sourceNumbers := make(map[sourceKey]int)
	var citations []model.SourceCitation

	var sb strings.Builder
	used := 0
	for _, r := range sorted {
		piece := r.Content
		key := sourceKey{kbID: r.Metadata.KBID, docID: r.Metadata.DocID}
		number, known := sourceNumbers[key]
		if cite {
			if !known {
				number = len(sourceNumbers) + 1
			}
			piece = fmt.Sprintf("[%d] %s", number, r.Content)
		}

		cost := model.EstimateTokens(piece)
		if sb.Len() > 0 {
			cost += model.EstimateTokens(chunkDelimiter)
		}

		included := false
		if used+cost <= maxTokenBudget {
			if sb.Len() > 0 {
				sb.WriteString(chunkDelimiter)
			}
			sb.WriteString(piece)
			used += cost
			included = true
		} else if sb.Len() == 0 {
			// First chunk alone overflows. Keep a truncated prefix
			// only when the cut still leaves something useful.
			limit := maxTokenBudget * 4
			if limit < len(piece) && limit >= minUsefulChars {
				sb.WriteString(piece[:limit])
				used = maxTokenBudget
				included = true
			}
		}

		if cite && included && !known {
			sourceNumbers[key] = number
			citations = append(citations, model.SourceCitation{
				Number: number,
				KBID:   r.Metadata.KBID,
				DocID:  r.Metadata.DocID,
			})
		}
		if !included {
			break
		}
	}

	if sb.Len() == 0 {
		return "", nil
	}
	return sb.String(), citations
}
