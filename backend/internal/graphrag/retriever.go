package graphrag

import (
	"context"
)

// Strategy names one of the two interchangeable retrieval implementations
type Strategy string

const (
	// StrategyDirect searches each index with the query vector the
	// orchestrator embedded once up front
	StrategyDirect Strategy = "direct"

	// StrategyRetriever mirrors a library-driven retriever abstraction:
	// each search embeds the query text itself
	StrategyRetriever Strategy = "retriever"
)

// Retriever fetches the nearest stored items for one category. Both
// implementations share the orchestrator, scorer and synthesizer; only the
// retrieval step differs.
type Retriever interface {
	Strategy() Strategy
	Retrieve(ctx context.Context, category Category, ownerID, query string, queryVector []float32, topK int) ([]RetrievedItem, error)
}

// DirectRetriever performs direct vector similarity search with the
// pre-embedded query vector, so no embedding call happens per category.
type DirectRetriever struct {
	store GraphStore
}

// NewDirectRetriever creates the direct vector search strategy
func NewDirectRetriever(store GraphStore) *DirectRetriever {
	return &DirectRetriever{store: store}
}

// Strategy implements Retriever
func (r *DirectRetriever) Strategy() Strategy {
	return StrategyDirect
}

// Retrieve implements Retriever using the shared query vector
func (r *DirectRetriever) Retrieve(ctx context.Context, category Category, ownerID, query string, queryVector []float32, topK int) ([]RetrievedItem, error) {
	return r.store.SearchCategory(ctx, category, ownerID, queryVector, topK)
}

// IndexRetriever embeds the query text on every search, the way a
// per-index retriever object would. Costs one embedding call per category;
// kept for side-by-side evaluation against the direct strategy.
type IndexRetriever struct {
	store    GraphStore
	embedder Embedder
}

// NewIndexRetriever creates the library-style retrieval strategy
func NewIndexRetriever(store GraphStore, embedder Embedder) *IndexRetriever {
	return &IndexRetriever{store: store, embedder: embedder}
}

// Strategy implements Retriever
func (r *IndexRetriever) Strategy() Strategy {
	return StrategyRetriever
}

// Retrieve implements Retriever, embedding the query itself
func (r *IndexRetriever) Retrieve(ctx context.Context, category Category, ownerID, query string, _ []float32, topK int) ([]RetrievedItem, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.store.SearchCategory(ctx, category, ownerID, vector, topK)
}
