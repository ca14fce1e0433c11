package graphrag

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sage-clone/backend/internal/constants"
	"sage-clone/backend/pkg/errors"
	"sage-clone/backend/pkg/logger"
)

// Orchestrator coordinates a single query pass: probe availability, embed
// the query, fan out search+respond per category, synthesize and score.
// All collaborators are injected; the orchestrator holds no mutable state,
// so concurrent queries for different owners are fully independent.
type Orchestrator struct {
	store     GraphStore
	directory OwnerDirectory
	embedder  Embedder
	retriever Retriever
	responder *Responder
	synth     *Synthesizer
	topK      int
	logger    *zap.Logger
}

// NewOrchestrator wires a query orchestrator from its collaborators
func NewOrchestrator(store GraphStore, directory OwnerDirectory, embedder Embedder, llm Generator, retriever Retriever, topK int) *Orchestrator {
	if topK < 1 {
		topK = constants.DefaultTopK
	}
	return &Orchestrator{
		store:     store,
		directory: directory,
		embedder:  embedder,
		retriever: retriever,
		responder: NewResponder(llm),
		synth:     NewSynthesizer(llm),
		topK:      topK,
		logger:    logger.Get(),
	}
}

// ExecuteQuery answers a free-text question about one owner's stored data.
//
// Expected conditions never surface as errors: an unknown owner, an owner
// with no content, and content that yields no insight all come back as
// well-formed QueryResults with confidence 0.0, 0.95 and 0.25 respectively.
// Only infrastructure outages (store unreachable, embedding service down)
// return an error, and then no partial result is synthesized.
func (o *Orchestrator) ExecuteQuery(ctx context.Context, ownerID, query string) (*QueryResult, error) {
	o.logger.Info("GraphRAG query started",
		zap.String("owner_id", ownerID),
		zap.String("strategy", string(o.retriever.Strategy())),
	)

	owner, err := o.directory.Resolve(ctx, ownerID)
	if err != nil {
		if errors.IsOwnerNotFound(err) {
			return o.ownerNotFoundResult(ownerID, query), nil
		}
		return nil, err
	}

	available, err := ProbeAvailability(ctx, o.store, ownerID)
	if err != nil {
		return nil, err
	}

	// Definitive absence of data is itself a correct, informative answer.
	// Returning here also guarantees no embedding or generation call is
	// ever paid for an empty owner.
	if len(available) == 0 {
		return o.noContentResult(owner, query), nil
	}

	// Embed once; the vector is shared across every category search. The
	// library-style retriever embeds per search itself, so the up-front
	// call is skipped to avoid a wasted one.
	enhanced := fmt.Sprintf(
		"Question about user %s: %s Please focus on therapy-related content for this specific user.",
		owner.Name, query,
	)
	var queryVector []float32
	if o.retriever.Strategy() == StrategyDirect {
		queryVector, err = o.embedder.Embed(ctx, enhanced)
		if err != nil {
			return nil, err
		}
	}

	// Process categories in declaration order, not map order. Each
	// search+respond pair is independent; synthesis waits on all of them.
	categories := make([]Category, 0, len(available))
	for _, category := range AllCategories {
		if _, ok := available[category]; ok {
			categories = append(categories, category)
		}
	}

	slots := make([]*CategoryResult, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		i, category := i, category
		g.Go(func() error {
			slots[i] = o.queryCategory(gctx, category, owner, query, enhanced, queryVector)
			// Category failures degrade to an empty slot, never abort the run
			return nil
		})
	}
	_ = g.Wait()

	results := make([]CategoryResult, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}

	if len(results) == 0 {
		return o.noInsightResult(owner, query, available), nil
	}

	unified := o.synth.Synthesize(ctx, query, owner.Name, results)

	var confidence float64
	if o.retriever.Strategy() == StrategyDirect {
		confidence = Score(results, available)
	} else {
		confidence = Score(results, nil)
	}

	sources := make([]string, 0, len(results))
	for _, result := range results {
		sources = append(sources, result.Source)
	}

	o.logger.Info("GraphRAG query completed",
		zap.String("owner_id", ownerID),
		zap.Int("categories_answered", len(results)),
		zap.Float64("confidence", confidence),
	)

	return &QueryResult{
		Query:         query,
		OwnerID:       owner.ID,
		OwnerName:     owner.Name,
		UnifiedAnswer: unified,
		Confidence:    confidence,
		DataSources:   sources,
		Details:       results,
	}, nil
}

// queryCategory runs the search+respond pair for one category. Any failure
// or filtered-out answer returns nil; the category contributes nothing.
func (o *Orchestrator) queryCategory(ctx context.Context, category Category, owner *Owner, query, enhanced string, queryVector []float32) *CategoryResult {
	items, err := o.retriever.Retrieve(ctx, category, owner.ID, enhanced, queryVector, o.topK)
	if err != nil {
		o.logger.Warn("Category retrieval failed",
			zap.String("category", category.String()),
			zap.String("owner_id", owner.ID),
			zap.Error(err),
		)
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	answer := o.responder.Respond(ctx, query, owner.Name, category, items)
	if answer == "" || ContainsNoInformationPhrase(answer) {
		return nil
	}

	return &CategoryResult{
		Category:       category,
		Source:         category.DisplayName(),
		Answer:         answer,
		RetrievedCount: len(items),
	}
}

func (o *Orchestrator) ownerNotFoundResult(ownerID, query string) *QueryResult {
	return &QueryResult{
		Query:         query,
		OwnerID:       ownerID,
		OwnerName:     "Unknown",
		UnifiedAnswer: "I'm sorry, I encountered an issue processing your query: User not found",
		Confidence:    0.0,
		DataSources:   []string{},
		Details:       []CategoryResult{},
	}
}

func (o *Orchestrator) noContentResult(owner *Owner, query string) *QueryResult {
	return &QueryResult{
		Query:     query,
		OwnerID:   owner.ID,
		OwnerName: owner.Name,
		UnifiedAnswer: fmt.Sprintf(
			"I don't see any therapy content available for %s yet. Once they have some therapy sessions, I'll be able to provide insights about their progress and patterns.",
			owner.Name,
		),
		Confidence:  0.95,
		DataSources: []string{},
		Details:     []CategoryResult{},
	}
}

func (o *Orchestrator) noInsightResult(owner *Owner, query string, available map[Category]int) *QueryResult {
	sources := make([]string, 0, len(available))
	for _, category := range AllCategories {
		if _, ok := available[category]; ok {
			sources = append(sources, category.DisplayName())
		}
	}

	return &QueryResult{
		Query:     query,
		OwnerID:   owner.ID,
		OwnerName: owner.Name,
		UnifiedAnswer: fmt.Sprintf(
			"I found therapy content for %s, but couldn't generate specific insights for your question. Please try asking about specific aspects like emotions, patterns, or recent sessions.",
			owner.Name,
		),
		Confidence:  0.25,
		DataSources: sources,
		Details:     []CategoryResult{},
	}
}
