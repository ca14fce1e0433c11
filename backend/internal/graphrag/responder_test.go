package graphrag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type stubGenerator struct {
	generateFunc func(ctx context.Context, systemPrompt, userPrompt string, opts GenOptions) (string, error)

	mu       sync.Mutex
	calls    int
	lastUser string
}

func (s *stubGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenOptions) (string, error) {
	s.mu.Lock()
	s.calls++
	s.lastUser = userPrompt
	s.mu.Unlock()
	return s.generateFunc(ctx, systemPrompt, userPrompt, opts)
}

func TestContainsNoInformationPhrase(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"There is no relevant data for this question.", true},
		{"NOT FOUND in the records", true},
		{"The user shows consistent progress in managing anxiety.", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ContainsNoInformationPhrase(tt.text); got != tt.want {
			t.Errorf("ContainsNoInformationPhrase(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestResponder_EmptyItemsSkipsGeneration(t *testing.T) {
	gen := &stubGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts GenOptions) (string, error) {
			return "should not happen", nil
		},
	}
	responder := NewResponder(gen)

	answer := responder.Respond(context.Background(), "How is Emma doing?", "Emma", CategoryMoments, nil)
	if answer != "" {
		t.Errorf("Expected empty answer, got %q", answer)
	}
	if gen.calls != 0 {
		t.Errorf("Expected 0 generation calls, got %d", gen.calls)
	}
}

func TestResponder_NoiseOnlyItemsSkipGeneration(t *testing.T) {
	gen := &stubGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts GenOptions) (string, error) {
			return "should not happen", nil
		},
	}
	responder := NewResponder(gen)

	items := []RetrievedItem{
		{Content: "ok"},
		{Content: "   hm    "},
	}

	answer := responder.Respond(context.Background(), "How is Emma doing?", "Emma", CategoryMoments, items)
	if answer != "" {
		t.Errorf("Expected empty answer, got %q", answer)
	}
	if gen.calls != 0 {
		t.Errorf("Expected 0 generation calls, got %d", gen.calls)
	}
}

func TestResponder_GroundsOnTopItemsOnly(t *testing.T) {
	gen := &stubGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts GenOptions) (string, error) {
			return "Emma has been processing workplace stress.", nil
		},
	}
	responder := NewResponder(gen)

	items := []RetrievedItem{
		{Content: "Discussed workplace stress and boundaries"},
		{Content: "Explored childhood memories with her mother"},
		{Content: "Worked through a conflict with a colleague"},
		{Content: "A fourth item that should be left out entirely"},
	}

	answer := responder.Respond(context.Background(), "What is Emma working through?", "Emma", CategoryMoments, items)
	if answer == "" {
		t.Fatal("Expected non-empty answer")
	}

	if !strings.Contains(gen.lastUser, "- Discussed workplace stress and boundaries") {
		t.Error("Expected first item in grounding context")
	}
	if strings.Contains(gen.lastUser, "fourth item") {
		t.Error("Expected only the top three items in grounding context")
	}
}

func TestResponder_GenerationFailureDegrades(t *testing.T) {
	gen := &stubGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts GenOptions) (string, error) {
			return "", errors.New("service down")
		},
	}
	responder := NewResponder(gen)

	items := []RetrievedItem{{Content: "Discussed workplace stress and boundaries"}}

	answer := responder.Respond(context.Background(), "How is Emma doing?", "Emma", CategoryMoments, items)
	if answer != "" {
		t.Errorf("Expected empty answer on failure, got %q", answer)
	}
}

func TestResponder_TrimsResponse(t *testing.T) {
	gen := &stubGenerator{
		generateFunc: func(ctx context.Context, system, user string, opts GenOptions) (string, error) {
			return "\n  Emma is making steady progress.  \n", nil
		},
	}
	responder := NewResponder(gen)

	items := []RetrievedItem{{Content: "Discussed steady progress over three sessions"}}

	answer := responder.Respond(context.Background(), "How is Emma doing?", "Emma", CategoryMoments, items)
	if answer != "Emma is making steady progress." {
		t.Errorf("Expected trimmed answer, got %q", answer)
	}
}
