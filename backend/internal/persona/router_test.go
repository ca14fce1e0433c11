package persona

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sage-clone/backend/internal/graphrag"
)

type mockGenerator struct {
	generateFunc func(ctx context.Context, systemPrompt, userPrompt string, opts graphrag.GenOptions) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, opts graphrag.GenOptions) (string, error) {
	return m.generateFunc(ctx, systemPrompt, userPrompt, opts)
}

type mockMemorySource struct {
	memory map[graphrag.Category][]string
	owner  *graphrag.Owner
	err    error
}

func (m *mockMemorySource) FetchMemoryContext(ctx context.Context, ownerID string, perCategory int) (map[graphrag.Category][]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.memory, nil
}

func (m *mockMemorySource) GetOrCreateUser(ctx context.Context, ownerID, name string) (*graphrag.Owner, error) {
	if m.owner != nil {
		return m.owner, nil
	}
	return &graphrag.Owner{ID: ownerID, Name: name}, nil
}

func TestRouter_Chat_GroundsPromptInMemory(t *testing.T) {
	var capturedSystem string
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts graphrag.GenOptions) (string, error) {
			capturedSystem = system
			return "That sounds tender. What do you notice in your body?", nil
		},
	}
	source := &mockMemorySource{
		memory: map[graphrag.Category][]string{
			graphrag.CategoryValues: {"Honesty above comfort"},
		},
		owner: &graphrag.Owner{ID: "user-1", Name: "Emma"},
	}

	router := NewRouter(gen, source, nil)

	response, err := router.Chat(context.Background(), "user-1", "Emma", "I lied to my friend and it's eating me up")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if response == "" {
		t.Fatal("Expected non-empty response")
	}
	if !strings.Contains(capturedSystem, "Honesty above comfort") {
		t.Errorf("Expected memory context in system prompt, got:\n%s", capturedSystem)
	}
}

func TestRouter_Chat_SoftensDirectiveResponses(t *testing.T) {
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts graphrag.GenOptions) (string, error) {
			return "You should forgive yourself.", nil
		},
	}
	router := NewRouter(gen, &mockMemorySource{}, nil)

	response, err := router.Chat(context.Background(), "user-1", "Emma", "I keep blaming myself for the breakup")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if response != "You might find forgive yourself." {
		t.Errorf("Expected softened response, got %q", response)
	}
}

func TestRouter_Chat_FallsBackWhenGenerationFails(t *testing.T) {
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts graphrag.GenOptions) (string, error) {
			return "", errors.New("service down")
		},
	}
	router := NewRouter(gen, &mockMemorySource{}, nil)

	response, err := router.Chat(context.Background(), "user-1", "Emma", "I feel so overwhelmed at work")
	if err != nil {
		t.Fatalf("Expected fallback, got error: %v", err)
	}
	if !strings.Contains(response, "a lot to carry") {
		t.Errorf("Expected pattern-based fallback, got %q", response)
	}
}

func TestRouter_Chat_ContinuesWithoutMemoryContext(t *testing.T) {
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts graphrag.GenOptions) (string, error) {
			return "I'm here with you.", nil
		},
	}
	source := &mockMemorySource{err: errors.New("graph down")}
	source.owner = &graphrag.Owner{ID: "user-1", Name: "Emma"}

	router := NewRouter(gen, source, nil)

	response, err := router.Chat(context.Background(), "user-1", "Emma", "Just checking in today")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if response != "I'm here with you." {
		t.Errorf("Unexpected response: %q", response)
	}
}
