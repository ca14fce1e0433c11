package graphrag

import (
	"context"
	"time"
)

// RetrievedItem is a single piece of stored content pulled from a vector
// index. Items live only for the duration of the query that retrieved them.
type RetrievedItem struct {
	Content         string    `json:"content"`
	OwnerID         string    `json:"owner_id"`
	Timestamp       time.Time `json:"timestamp,omitempty"`
	SimilarityScore float64   `json:"similarity_score"`
}

// CategoryResult is the answer one category contributed to a query
type CategoryResult struct {
	Category       Category `json:"-"`
	Source         string   `json:"source"`
	Answer         string   `json:"answer"`
	RetrievedCount int      `json:"retrieved_count"`
}

// QueryResult is the output of a single query invocation. It is constructed
// once, returned to the caller, and never mutated afterward.
type QueryResult struct {
	Query         string           `json:"query"`
	OwnerID       string           `json:"owner_id"`
	OwnerName     string           `json:"owner_name"`
	UnifiedAnswer string           `json:"unified_answer"`
	Confidence    float64          `json:"confidence"`
	DataSources   []string         `json:"data_sources"`
	Details       []CategoryResult `json:"per_category_detail"`
}

// Owner is a resolved end-user whose data is being queried
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GenOptions carries the knobs a generation call must accept
type GenOptions struct {
	Temperature float32
	MaxTokens   int
}

// Embedder turns text into a fixed-length vector via an external service
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a system prompt and a user prompt via an
// external service
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenOptions) (string, error)
}

// GraphStore is the read-side view of the graph this core needs
type GraphStore interface {
	// ProbeCategory counts stored items for the owner that carry an
	// embedding; items without one are invisible to retrieval
	ProbeCategory(ctx context.Context, category Category, ownerID string) (int, error)

	// SearchCategory returns the top-K nearest stored items for the owner,
	// ordered by descending similarity
	SearchCategory(ctx context.Context, category Category, ownerID string, vector []float32, topK int) ([]RetrievedItem, error)
}

// OwnerDirectory resolves owner identities
type OwnerDirectory interface {
	Resolve(ctx context.Context, ownerID string) (*Owner, error)
}
