package model

// Chunk is a bounded-size slice of a source document, the unit of
// embedding and retrieval. Chunks are immutable once created and
// ordered within their document.
type Chunk struct {
	Content       string
	Index         int
	StartChar     int
	EndChar       int
	TokenEstimate int
}

// EstimateTokens approximates the token count of a text as ceil(chars/4)
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
