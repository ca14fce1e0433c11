package graphrag

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"sage-clone/backend/internal/constants"
	apperrors "sage-clone/backend/pkg/errors"
)

type stubDirectory struct {
	resolveFunc func(ctx context.Context, ownerID string) (*Owner, error)
}

func (s *stubDirectory) Resolve(ctx context.Context, ownerID string) (*Owner, error) {
	return s.resolveFunc(ctx, ownerID)
}

type stubEmbedder struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
	calls     int32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.embedFunc(ctx, text)
}

func knownOwnerDirectory() *stubDirectory {
	return &stubDirectory{
		resolveFunc: func(ctx context.Context, ownerID string) (*Owner, error) {
			return &Owner{ID: ownerID, Name: "Emma"}, nil
		},
	}
}

func workingEmbedder() *stubEmbedder {
	return &stubEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}
}

// categoryAwareGenerator answers per-category prompts with a fixed-length
// answer and synthesis prompts with a long unified response
func categoryAwareGenerator() *stubGenerator {
	return &stubGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts GenOptions) (string, error) {
			if strings.Contains(system, "reviewing multiple data sources") {
				return "Emma shows consistent engagement across her therapy work, " +
					"with growing awareness of her conflict avoidance and a clear commitment to change.", nil
			}
			return answerOfLength(100), nil
		},
	}
}

func TestNewOrchestrator_TopKFallback(t *testing.T) {
	store := &stubStore{}
	orch := NewOrchestrator(store, knownOwnerDirectory(), workingEmbedder(), categoryAwareGenerator(), NewDirectRetriever(store), 0)
	if orch.topK != constants.DefaultTopK {
		t.Errorf("Expected topK fallback %d, got %d", constants.DefaultTopK, orch.topK)
	}
}

func TestExecuteQuery_OwnerNotFound(t *testing.T) {
	directory := &stubDirectory{
		resolveFunc: func(ctx context.Context, ownerID string) (*Owner, error) {
			return nil, apperrors.NewOwnerNotFound(ownerID)
		},
	}
	var probeCalls int32
	store := &stubStore{
		probeFunc: func(ctx context.Context, category Category, ownerID string) (int, error) {
			atomic.AddInt32(&probeCalls, 1)
			return 0, nil
		},
	}

	orch := NewOrchestrator(store, directory, workingEmbedder(), categoryAwareGenerator(), NewDirectRetriever(store), 5)

	result, err := orch.ExecuteQuery(context.Background(), "ghost", "How are they doing?")
	if err != nil {
		t.Fatalf("Expected recovered result, got error: %v", err)
	}
	if result.Confidence != 0.0 {
		t.Errorf("Expected confidence 0.0, got %v", result.Confidence)
	}
	if result.UnifiedAnswer != "I'm sorry, I encountered an issue processing your query: User not found" {
		t.Errorf("Unexpected answer: %q", result.UnifiedAnswer)
	}
	if result.OwnerName != "Unknown" {
		t.Errorf("Expected owner name 'Unknown', got %q", result.OwnerName)
	}
	if probeCalls != 0 {
		t.Errorf("Expected no probes after failed resolution, got %d", probeCalls)
	}
}

func TestExecuteQuery_DirectoryOutagePropagates(t *testing.T) {
	directory := &stubDirectory{
		resolveFunc: func(ctx context.Context, ownerID string) (*Owner, error) {
			return nil, apperrors.NewGraphQueryFailed("resolve user", errors.New("connection refused"))
		},
	}
	store := &stubStore{}

	orch := NewOrchestrator(store, directory, workingEmbedder(), categoryAwareGenerator(), NewDirectRetriever(store), 5)

	_, err := orch.ExecuteQuery(context.Background(), "user-1", "How is Emma doing?")
	if err == nil {
		t.Fatal("Expected infrastructure error to propagate")
	}
}

func TestExecuteQuery_NoContent(t *testing.T) {
	store := &stubStore{
		probeFunc: func(ctx context.Context, category Category, ownerID string) (int, error) {
			return 0, nil
		},
	}
	embedder := workingEmbedder()
	gen := &stubGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts GenOptions) (string, error) {
			t.Fatal("Generate should not be called for an empty owner")
			return "", nil
		},
	}

	orch := NewOrchestrator(store, knownOwnerDirectory(), embedder, gen, NewDirectRetriever(store), 5)

	result, err := orch.ExecuteQuery(context.Background(), "user-1", "How is Emma doing?")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	if result.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %v", result.Confidence)
	}
	if !strings.Contains(result.UnifiedAnswer, "I don't see any therapy content available for Emma yet") {
		t.Errorf("Unexpected answer: %q", result.UnifiedAnswer)
	}
	if atomic.LoadInt32(&embedder.calls) != 0 {
		t.Errorf("Expected no embedding calls for an empty owner, got %d", embedder.calls)
	}
	if len(result.DataSources) != 0 || len(result.Details) != 0 {
		t.Error("Expected empty sources and details for an empty owner")
	}
}

func TestExecuteQuery_StoreOutagePropagates(t *testing.T) {
	store := &stubStore{
		probeFunc: func(ctx context.Context, category Category, ownerID string) (int, error) {
			return 0, errors.New("connection refused")
		},
	}

	orch := NewOrchestrator(store, knownOwnerDirectory(), workingEmbedder(), categoryAwareGenerator(), NewDirectRetriever(store), 5)

	_, err := orch.ExecuteQuery(context.Background(), "user-1", "How is Emma doing?")
	if !apperrors.IsStoreUnavailable(err) {
		t.Errorf("Expected store unavailable error, got %v", err)
	}
}

func TestExecuteQuery_DirectHappyPath(t *testing.T) {
	store := &stubStore{
		probeFunc: func(ctx context.Context, category Category, ownerID string) (int, error) {
			switch category {
			case CategoryMoments:
				return 3, nil
			case CategoryReflections:
				return 2, nil
			default:
				return 0, nil
			}
		},
		searchFunc: func(ctx context.Context, category Category, ownerID string, vector []float32, topK int) ([]RetrievedItem, error) {
			return []RetrievedItem{
				{Content: "Discussed workplace stress and boundary setting", SimilarityScore: 0.91},
				{Content: "Explored recurring tension with her manager", SimilarityScore: 0.87},
			}, nil
		},
	}
	embedder := workingEmbedder()
	gen := categoryAwareGenerator()

	orch := NewOrchestrator(store, knownOwnerDirectory(), embedder, gen, NewDirectRetriever(store), 5)

	result, err := orch.ExecuteQuery(context.Background(), "user-1", "How is Emma doing?")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}

	if atomic.LoadInt32(&embedder.calls) != 1 {
		t.Errorf("Expected exactly 1 embedding call, got %d", embedder.calls)
	}

	// Two concurrent per-category calls plus one synthesis call
	if gen.calls != 3 {
		t.Errorf("Expected 3 generation calls, got %d", gen.calls)
	}

	wantSources := []string{"Therapy Moments", "User Reflections"}
	if len(result.DataSources) != len(wantSources) {
		t.Fatalf("Expected %d sources, got %v", len(wantSources), result.DataSources)
	}
	for i, want := range wantSources {
		if result.DataSources[i] != want {
			t.Errorf("DataSources[%d] = %q, want %q", i, result.DataSources[i], want)
		}
	}

	if len(result.Details) != 2 {
		t.Fatalf("Expected 2 category details, got %d", len(result.Details))
	}
	if result.Details[0].RetrievedCount != 2 {
		t.Errorf("Expected retrieved count 2, got %d", result.Details[0].RetrievedCount)
	}

	// Full coverage (0.85) plus density bonus (avg 2 items, +0.05);
	// length and volume stay neutral
	if !almostEqual(result.Confidence, 0.9) {
		t.Errorf("Expected confidence 0.9, got %v", result.Confidence)
	}

	if !strings.Contains(result.UnifiedAnswer, "Analysis Summary: Based on 2 therapeutic data sources") {
		t.Errorf("Expected synthesis footer, got %q", result.UnifiedAnswer)
	}
}

func TestExecuteQuery_EmbeddingOutagePropagates(t *testing.T) {
	var searchCalls int32
	store := &stubStore{
		probeFunc: func(ctx context.Context, category Category, ownerID string) (int, error) {
			return 2, nil
		},
		searchFunc: func(ctx context.Context, category Category, ownerID string, vector []float32, topK int) ([]RetrievedItem, error) {
			atomic.AddInt32(&searchCalls, 1)
			return nil, nil
		},
	}
	embedder := &stubEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, apperrors.NewEmbeddingUnavailable("text-embedding-3-large", errors.New("timeout"))
		},
	}

	orch := NewOrchestrator(store, knownOwnerDirectory(), embedder, categoryAwareGenerator(), NewDirectRetriever(store), 5)

	_, err := orch.ExecuteQuery(context.Background(), "user-1", "How is Emma doing?")
	if !apperrors.IsEmbeddingUnavailable(err) {
		t.Fatalf("Expected embedding unavailable error, got %v", err)
	}
	if atomic.LoadInt32(&searchCalls) != 0 {
		t.Errorf("Expected no searches after embedding failure, got %d", searchCalls)
	}
}

func TestExecuteQuery_CategoryFailureIsolated(t *testing.T) {
	store := &stubStore{
		probeFunc: func(ctx context.Context, category Category, ownerID string) (int, error) {
			if category == CategoryMoments || category == CategoryReflections {
				return 2, nil
			}
			return 0, nil
		},
		searchFunc: func(ctx context.Context, category Category, ownerID string, vector []float32, topK int) ([]RetrievedItem, error) {
			if category == CategoryMoments {
				return nil, errors.New("index corrupted")
			}
			return []RetrievedItem{{Content: "A reflection on handling grief over time"}}, nil
		},
	}

	orch := NewOrchestrator(store, knownOwnerDirectory(), workingEmbedder(), categoryAwareGenerator(), NewDirectRetriever(store), 5)

	result, err := orch.ExecuteQuery(context.Background(), "user-1", "How is Emma doing?")
	if err != nil {
		t.Fatalf("Expected degraded success, got error: %v", err)
	}
	if len(result.Details) != 1 {
		t.Fatalf("Expected 1 surviving category, got %d", len(result.Details))
	}
	if result.Details[0].Source != "User Reflections" {
		t.Errorf("Expected reflections to survive, got %q", result.Details[0].Source)
	}
}

func TestExecuteQuery_AllAnswersFilteredIsNoInsight(t *testing.T) {
	store := &stubStore{
		probeFunc: func(ctx context.Context, category Category, ownerID string) (int, error) {
			if category == CategoryMoments || category == CategoryValues {
				return 1, nil
			}
			return 0, nil
		},
		searchFunc: func(ctx context.Context, category Category, ownerID string, vector []float32, topK int) ([]RetrievedItem, error) {
			return []RetrievedItem{{Content: "Some stored content for this category"}}, nil
		},
	}
	gen := &stubGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts GenOptions) (string, error) {
			return "There is no information available for this question.", nil
		},
	}

	orch := NewOrchestrator(store, knownOwnerDirectory(), workingEmbedder(), gen, NewDirectRetriever(store), 5)

	result, err := orch.ExecuteQuery(context.Background(), "user-1", "How is Emma doing?")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	if result.Confidence != 0.25 {
		t.Errorf("Expected confidence 0.25, got %v", result.Confidence)
	}
	if !strings.Contains(result.UnifiedAnswer, "couldn't generate specific insights") {
		t.Errorf("Unexpected answer: %q", result.UnifiedAnswer)
	}

	wantSources := []string{"Therapy Moments", "User Values"}
	if len(result.DataSources) != len(wantSources) {
		t.Fatalf("Expected %d sources, got %v", len(wantSources), result.DataSources)
	}
	for i, want := range wantSources {
		if result.DataSources[i] != want {
			t.Errorf("DataSources[%d] = %q, want %q", i, result.DataSources[i], want)
		}
	}
}

func TestExecuteQuery_RetrieverStrategyEmbedsPerCategory(t *testing.T) {
	store := &stubStore{
		probeFunc: func(ctx context.Context, category Category, ownerID string) (int, error) {
			if category == CategoryMoments || category == CategoryReflections {
				return 2, nil
			}
			return 0, nil
		},
		searchFunc: func(ctx context.Context, category Category, ownerID string, vector []float32, topK int) ([]RetrievedItem, error) {
			return []RetrievedItem{{Content: "Stored item long enough to ground on"}}, nil
		},
	}
	embedder := workingEmbedder()

	orch := NewOrchestrator(store, knownOwnerDirectory(), embedder, categoryAwareGenerator(), NewIndexRetriever(store, embedder), 5)

	result, err := orch.ExecuteQuery(context.Background(), "user-1", "How is Emma doing?")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}

	// One embedding per available category, none up front
	if atomic.LoadInt32(&embedder.calls) != 2 {
		t.Errorf("Expected 2 embedding calls, got %d", embedder.calls)
	}

	// Count mode: two answered categories, neutral length, no density or
	// volume adjustments
	if !almostEqual(result.Confidence, 0.65) {
		t.Errorf("Expected confidence 0.65, got %v", result.Confidence)
	}
}
