package adapter

import (
	"context"
	"testing"

	apperrors "sage-clone/backend/pkg/errors"
)

func TestEmbeddingGateway_Embed_RejectsEmptyInput(t *testing.T) {
	gateway := NewEmbeddingGateway("http://localhost:4000", "", "text-embedding-3-large", 3072)

	cases := []string{"", "   ", "\n\t"}
	for _, input := range cases {
		_, err := gateway.Embed(context.Background(), input)
		if err == nil {
			t.Errorf("Embed(%q): expected error, got nil", input)
			continue
		}
		if !apperrors.IsInvalidInput(err) {
			t.Errorf("Embed(%q): expected invalid input error, got %v", input, err)
		}
	}
}

// TestEmbeddingGateway_Embed requires a running LiteLLM instance
func TestEmbeddingGateway_Embed(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	gateway := NewEmbeddingGateway("http://localhost:4000", "", "text-embedding-3-large", 3072)

	vector, err := gateway.Embed(context.Background(), "What progress has this user made in therapy?")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(vector) != 3072 {
		t.Errorf("Expected 3072 dimensions, got %d", len(vector))
	}
}
