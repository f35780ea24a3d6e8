package model

// EmbeddingDimension is the dimension of the embedding vector.
// OpenAI text-embedding-3-small compatible models use 1536 dimensions.
const EmbeddingDimension = 1536

// EmbeddingRecord pairs a text with its embedding vector.
// SourceIndex preserves the position of the text in the original batch
// so that batch results can be re-ordered after parallel completion.
type EmbeddingRecord struct {
	Text        string
	Embedding   []float32
	SourceIndex int
}
