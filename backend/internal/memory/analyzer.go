package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sage-clone/backend/internal/constants"
	"sage-clone/backend/internal/graphrag"
	"sage-clone/backend/pkg/logger"
)

// Store is the write-side view of the graph the analyzer needs
type Store interface {
	StoreItem(ctx context.Context, category graphrag.Category, ownerID, content string, vector []float32) (string, error)
}

// Analyzer evaluates conversations to decide what is worth keeping in the
// user's memory graph
type Analyzer struct {
	llm      graphrag.Generator
	embedder graphrag.Embedder
	store    Store
	logger   *zap.Logger
}

// Analysis is the LLM's verdict on a single conversation turn
type Analysis struct {
	ShouldStore bool `json:"should_store"`
	Moments     []struct {
		Context string `json:"context"`
	} `json:"moments"`
	Reflections []struct {
		Content      string `json:"content"`
		Significance string `json:"significance"`
	} `json:"reflections"`
	Patterns []struct {
		Description string `json:"description"`
	} `json:"patterns"`
	Values []struct {
		Description string `json:"description"`
	} `json:"values"`
	Reasoning string `json:"reasoning"`
}

// Proposal is one memory item the analyzer wants to persist
type Proposal struct {
	Category graphrag.Category
	Content  string
}

// NewAnalyzer creates a new conversation analyzer
func NewAnalyzer(llm graphrag.Generator, embedder graphrag.Embedder, store Store) *Analyzer {
	return &Analyzer{
		llm:      llm,
		embedder: embedder,
		store:    store,
		logger:   logger.Get(),
	}
}

const analysisSystemPrompt = `You are a memory analyst for a therapeutic AI system. Your job is to analyze conversations and identify what's worth storing in the user's memory graph.

Review the conversation and identify:

1. MOMENTS: Therapy session contexts or situations the user described
2. REFLECTIONS: Deep insights, realizations, or meaningful thoughts from the user that reveal something important about their inner world
3. PATTERNS: Behavioral or emotional patterns the user exhibits
4. VALUES: Core values or motivations the user expressed

Only propose storing content that is:
- Explicitly expressed by the user (not inferred)
- Meaningful enough to inform future therapeutic conversations
- Respectful of the user's privacy and autonomy

IMPORTANT: Be selective. Not every conversation needs memory storage.

Respond with ONLY valid JSON (no markdown, no explanation):
{
  "should_store": true or false,
  "moments": [{"context": "situation the user described"}],
  "reflections": [{"content": "user's insight", "significance": "why this is therapeutically valuable"}],
  "patterns": [{"description": "behavioral or emotional pattern"}],
  "values": [{"description": "core value or motivation"}],
  "reasoning": "brief explanation of storage decisions"
}`

// AnalyzeConversation evaluates one conversation turn. Very short messages
// are skipped without calling the LLM.
func (a *Analyzer) AnalyzeConversation(ctx context.Context, ownerID, userMessage, assistantResponse string) (*Analysis, error) {
	if len(strings.TrimSpace(userMessage)) < 10 {
		return &Analysis{ShouldStore: false}, nil
	}

	userPrompt := fmt.Sprintf("User Message: %q\nAssistant Response: %q\n\nPlease analyze this conversation for memory storage.", userMessage, assistantResponse)

	response, err := a.llm.Generate(ctx, analysisSystemPrompt, userPrompt, graphrag.GenOptions{
		Temperature: constants.SynthesisTemperature,
		MaxTokens:   constants.DefaultMaxTokens,
	})
	if err != nil {
		a.logger.Warn("Memory analysis LLM call failed",
			zap.String("user_id", ownerID),
			zap.Error(err),
		)
		return &Analysis{ShouldStore: false, Reasoning: "analysis failed"}, nil
	}

	analysis := &Analysis{}
	if err := json.Unmarshal([]byte(extractJSON(response)), analysis); err != nil {
		a.logger.Warn("Failed to parse memory analysis JSON",
			zap.String("user_id", ownerID),
			zap.String("response", truncate(response, 200)),
			zap.Error(err),
		)
		return &Analysis{ShouldStore: false, Reasoning: "failed to parse analysis"}, nil
	}

	a.logger.Info("Memory analysis completed",
		zap.String("user_id", ownerID),
		zap.Bool("should_store", analysis.ShouldStore),
	)

	return analysis, nil
}

// Proposals converts an analysis into concrete memory items. Reflection
// significance becomes a persona note attached to the same turn.
func (a *Analyzer) Proposals(analysis *Analysis) []Proposal {
	if analysis == nil || !analysis.ShouldStore {
		return nil
	}

	var proposals []Proposal
	for _, m := range analysis.Moments {
		if strings.TrimSpace(m.Context) != "" {
			proposals = append(proposals, Proposal{Category: graphrag.CategoryMoments, Content: m.Context})
		}
	}
	for _, r := range analysis.Reflections {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		proposals = append(proposals, Proposal{Category: graphrag.CategoryReflections, Content: r.Content})
		if strings.TrimSpace(r.Significance) != "" {
			proposals = append(proposals, Proposal{
				Category: graphrag.CategoryNotes,
				Content:  "Therapeutic significance: " + r.Significance,
			})
		}
	}
	for _, p := range analysis.Patterns {
		if strings.TrimSpace(p.Description) != "" {
			proposals = append(proposals, Proposal{Category: graphrag.CategoryPatterns, Content: p.Description})
		}
	}
	for _, v := range analysis.Values {
		if strings.TrimSpace(v.Description) != "" {
			proposals = append(proposals, Proposal{Category: graphrag.CategoryValues, Content: v.Description})
		}
	}

	return proposals
}

// Apply embeds and persists each proposal. Failures on individual items are
// logged and skipped so one bad embed does not lose the rest of the turn.
func (a *Analyzer) Apply(ctx context.Context, ownerID string, proposals []Proposal) int {
	stored := 0
	for _, p := range proposals {
		vector, err := a.embedder.Embed(ctx, p.Content)
		if err != nil {
			a.logger.Warn("Failed to embed memory item",
				zap.String("user_id", ownerID),
				zap.String("category", p.Category.String()),
				zap.Error(err),
			)
			continue
		}

		if _, err := a.store.StoreItem(ctx, p.Category, ownerID, p.Content, vector); err != nil {
			a.logger.Warn("Failed to store memory item",
				zap.String("user_id", ownerID),
				zap.String("category", p.Category.String()),
				zap.Error(err),
			)
			continue
		}
		stored++
	}

	if stored > 0 {
		a.logger.Info("Memory proposals applied",
			zap.String("user_id", ownerID),
			zap.Int("stored", stored),
			zap.Int("proposed", len(proposals)),
		)
	}

	return stored
}

// extractJSON pulls the JSON object out of a response that may be wrapped in
// markdown code fences or surrounding prose
func extractJSON(response string) string {
	jsonStr := strings.TrimSpace(response)

	if strings.HasPrefix(jsonStr, "```") {
		lines := strings.Split(jsonStr, "\n")
		var jsonLines []string
		inCodeBlock := false
		for _, line := range lines {
			if strings.HasPrefix(line, "```") {
				inCodeBlock = !inCodeBlock
				continue
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}
		jsonStr = strings.Join(jsonLines, "\n")
	}

	if start := strings.Index(jsonStr, "{"); start != -1 {
		if end := strings.LastIndex(jsonStr, "}"); end != -1 && end > start {
			jsonStr = jsonStr[start : end+1]
		}
	}

	return jsonStr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
