// Package usecase wires the services into the conversational turn
// handlers and the knowledge ingestion pipeline.
package usecase

import (
	"github.com/NofaBC/TechSupport-AI/pkg/domain/interfaces"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/service/chunker"
	"github.com/NofaBC/TechSupport-AI/pkg/service/embedding"
	"github.com/NofaBC/TechSupport-AI/pkg/service/notify"
	"github.com/NofaBC/TechSupport-AI/pkg/service/retrieval"
	"github.com/NofaBC/TechSupport-AI/pkg/service/visual"
	"github.com/m-mizutani/gollem"
)

type UseCases struct {
	repo      interfaces.Repository
	llm       gollem.LLMClient
	embedder  embedding.Service
	retrieval retrieval.Service
	registry  *model.PlaybookRegistry
	notifier  interfaces.Notifier
	visual    interfaces.VisualSessionService
	chunkOpts chunker.Options
	modelID   string

	Tier1  *Tier1UseCase
	Tier2  *Tier2UseCase
	Ingest *IngestUseCase
}

type Option func(*UseCases)

// WithNotifier sets the escalation notification sink
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithVisualSessions sets the visual session collaborator used by tier 2
func WithVisualSessions(v interfaces.VisualSessionService) Option {
	return func(uc *UseCases) {
		uc.visual = v
	}
}

// WithPlaybookRegistry sets the loaded playbook registry
func WithPlaybookRegistry(r *model.PlaybookRegistry) Option {
	return func(uc *UseCases) {
		uc.registry = r
	}
}

// WithChunkOptions overrides the ingestion chunking parameters
func WithChunkOptions(opts chunker.Options) Option {
	return func(uc *UseCases) {
		uc.chunkOpts = opts
	}
}

// WithModelID records the model identifier reported in response metadata
func WithModelID(id string) Option {
	return func(uc *UseCases) {
		uc.modelID = id
	}
}

// WithRetrieval overrides the retrieval service, for tests
func WithRetrieval(r retrieval.Service) Option {
	return func(uc *UseCases) {
		uc.retrieval = r
	}
}

// WithEmbedder overrides the embedding service, for tests
func WithEmbedder(e embedding.Service) Option {
	return func(uc *UseCases) {
		uc.embedder = e
	}
}

// New assembles the use cases over the repository and LLM client
func New(repo interfaces.Repository, llm gollem.LLMClient, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo:      repo,
		llm:       llm,
		registry:  model.NewPlaybookRegistry(),
		notifier:  notify.NullNotifier{},
		visual:    visual.New(),
		chunkOpts: chunker.DefaultOptions(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.embedder == nil {
		embedder, err := embedding.New(llm)
		if err != nil {
			return nil, err
		}
		uc.embedder = embedder
	}
	if uc.retrieval == nil {
		ret, err := retrieval.New(uc.embedder, repo.Vector())
		if err != nil {
			return nil, err
		}
		uc.retrieval = ret
	}

	uc.Tier1 = &Tier1UseCase{uc: uc}
	uc.Tier2 = &Tier2UseCase{uc: uc}
	uc.Ingest = &IngestUseCase{uc: uc}
	return uc, nil
}
