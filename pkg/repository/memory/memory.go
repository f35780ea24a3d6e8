// Package memory provides an in-memory Repository implementation for
// development and tests.
package memory

import (
	"github.com/NofaBC/TechSupport-AI/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	cases   *caseRepository
	vectors *vectorIndex
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		cases:   newCaseRepository(),
		vectors: newVectorIndex(),
	}
}

func (m *Memory) Case() interfaces.CaseRepository {
	return m.cases
}

func (m *Memory) Vector() interfaces.VectorIndex {
	return m.vectors
}

func (m *Memory) Close() error {
	return nil
}
