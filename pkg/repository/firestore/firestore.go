// Package firestore provides the Firestore-backed Repository
// implementation. Cases and vectors live under per-tenant subcollections
// so tenant isolation is structural, not filter-based.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

type Firestore struct {
	client  *firestore.Client
	cases   *caseRepository
	vectors *vectorIndex
}

var _ interfaces.Repository = &Firestore{}

func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}

	return &Firestore{
		client:  client,
		cases:   newCaseRepository(client),
		vectors: newVectorIndex(client),
	}, nil
}

func (f *Firestore) Case() interfaces.CaseRepository {
	return f.cases
}

func (f *Firestore) Vector() interfaces.VectorIndex {
	return f.vectors
}

func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

func tenantDoc(client *firestore.Client, tenantID string) *firestore.DocumentRef {
	return client.Collection("tenants").Doc(tenantID)
}
