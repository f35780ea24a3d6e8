package model

import "github.com/google/uuid"

// VectorID is a UUID-based identifier for a persisted vector record
type VectorID string

// NewVectorID generates a new UUID v4 VectorID
func NewVectorID() VectorID {
	return VectorID(uuid.New().String())
}

// VectorMetadata describes the origin of a persisted vector.
// TenantID is also the index namespace; records are never visible
// across tenants.
type VectorMetadata struct {
	TenantID   string
	KBID       string
	DocID      string
	Product    string
	ChunkIndex int
	Content    string
	Language   string
}

// VectorRecord is a persisted embedding owned by a knowledge base.
// Records are deleted en masse when the KB or a document is deleted.
type VectorRecord struct {
	ID       VectorID
	Values   []float32
	Metadata VectorMetadata
}

// VectorFilter holds optional equality filters for vector queries and
// bulk deletion. Empty fields match everything.
type VectorFilter struct {
	KBID     string
	DocID    string
	Product  string
	Language string
}

// Matches reports whether the metadata satisfies every set filter field
func (f VectorFilter) Matches(md VectorMetadata) bool {
	if f.KBID != "" && f.KBID != md.KBID {
		return false
	}
	if f.DocID != "" && f.DocID != md.DocID {
		return false
	}
	if f.Product != "" && f.Product != md.Product {
		return false
	}
	if f.Language != "" && f.Language != md.Language {
		return false
	}
	return true
}

// RetrievalResult is one scored match from a vector query.
// Ephemeral: produced per query, never persisted.
type RetrievalResult struct {
	Content  string
	Score    float64
	Metadata VectorMetadata
}
