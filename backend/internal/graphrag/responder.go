package graphrag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sage-clone/backend/internal/constants"
	"sage-clone/backend/pkg/logger"
)

// noInformationPhrases marks generation output that only says "nothing here".
// A response containing any of these is discarded so near-miss generation
// noise is never counted as evidence during synthesis or confidence scoring.
// The confidence penalty in Score uses the same list.
var noInformationPhrases = []string{
	"no context or data provided",
	"no information available",
	"cannot provide specific information",
	"no records associated with this user",
	"no therapy data",
	"no relevant data",
	"no relevant information",
	"insufficient information",
	"insufficient data",
	"not found",
}

// ContainsNoInformationPhrase reports whether text is a "nothing here"
// response in disguise
func ContainsNoInformationPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range noInformationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Responder produces a short natural-language answer for one category,
// grounded exclusively in the items retrieved from that category's index.
type Responder struct {
	llm    Generator
	logger *zap.Logger
}

// NewResponder creates a per-category responder
func NewResponder(llm Generator) *Responder {
	return &Responder{
		llm:    llm,
		logger: logger.Get(),
	}
}

// Respond answers the query using only the retrieved items as context.
// An empty item set returns an empty string without touching the generation
// service. Generation failure is non-fatal and also returns an empty string;
// the category simply contributes nothing.
func (r *Responder) Respond(ctx context.Context, query, ownerName string, category Category, items []RetrievedItem) string {
	if len(items) == 0 {
		return ""
	}

	sourceType := strings.ToLower(category.DisplayName())

	var contextItems []string
	for _, item := range items {
		if len(contextItems) >= constants.MaxGroundingItems {
			break
		}
		content := strings.TrimSpace(item.Content)
		if len(content) > constants.MinGroundingChars {
			contextItems = append(contextItems, "- "+content)
		}
	}

	if len(contextItems) == 0 {
		return ""
	}

	systemPrompt := fmt.Sprintf(
		"You are a skilled therapist answering questions about %s using only the provided %s data.",
		ownerName, sourceType,
	)

	userPrompt := fmt.Sprintf(`Based on the following %s data for %s, please answer this question: %q

Relevant %s:
%s

Instructions:
- Focus specifically on %s's situation
- Provide therapeutic insights based on the available data
- Be concise but meaningful
- If the data doesn't clearly address the question, say so briefly

Response:`,
		sourceType, ownerName, query,
		sourceType, strings.Join(contextItems, "\n"),
		ownerName,
	)

	response, err := r.llm.Generate(ctx, systemPrompt, userPrompt, GenOptions{
		Temperature: constants.SynthesisTemperature,
		MaxTokens:   constants.DefaultMaxTokens,
	})
	if err != nil {
		r.logger.Warn("Per-category generation failed",
			zap.String("category", category.String()),
			zap.Error(err),
		)
		return ""
	}

	return strings.TrimSpace(response)
}
