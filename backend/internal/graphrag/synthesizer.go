package graphrag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sage-clone/backend/internal/constants"
	"sage-clone/backend/pkg/logger"
)

// Synthesizer fuses per-category answers into one unified narrative
type Synthesizer struct {
	llm    Generator
	logger *zap.Logger
}

// NewSynthesizer creates a response synthesizer
func NewSynthesizer(llm Generator) *Synthesizer {
	return &Synthesizer{
		llm:    llm,
		logger: logger.Get(),
	}
}

// Synthesize combines category answers into a single response. A lone
// answer is returned verbatim without a generation call. When generation
// fails or comes back implausibly short, the deterministic fallback
// template takes over; synthesis never surfaces an error.
func (s *Synthesizer) Synthesize(ctx context.Context, query, ownerName string, results []CategoryResult) string {
	if len(results) == 0 {
		return "No relevant therapy data found for this user."
	}

	if len(results) == 1 {
		return results[0].Answer
	}

	var insights strings.Builder
	for i, result := range results {
		fmt.Fprintf(&insights, "Source %d: %s\n", i+1, result.Answer)
	}

	sources := sourceSummary(results)

	systemPrompt := fmt.Sprintf(
		"You are a skilled therapist reviewing multiple data sources about %s. Your task is to provide a comprehensive, unified response.",
		ownerName,
	)

	userPrompt := fmt.Sprintf(`Provide a unified response to this question: %q

Available insights from different therapeutic data sources:

%s
Instructions:
- Synthesize these insights into ONE cohesive therapeutic response
- Focus on the most relevant patterns and themes
- Provide specific, actionable therapeutic insights
- Use clear, professional language appropriate for clinical review
- Structure your response with clear paragraphs - DO NOT use markdown formatting
- Use plain text only - no asterisks, hashtags, or other markdown symbols
- If insights conflict, acknowledge the complexity
- Conclude with therapeutic implications or recommendations

Data sources analyzed: %s

Unified Response (plain text only):`,
		query, insights.String(), strings.Join(sources, ", "),
	)

	unified, err := s.llm.Generate(ctx, systemPrompt, userPrompt, GenOptions{
		Temperature: constants.SynthesisTemperature,
		MaxTokens:   constants.DefaultMaxTokens,
	})
	if err != nil {
		s.logger.Warn("Synthesis generation failed, using fallback summary", zap.Error(err))
		return fallbackSummary(ownerName, results)
	}

	unified = strings.TrimSpace(unified)
	if len(unified) < constants.MinSynthesisChars {
		s.logger.Warn("Synthesis output implausibly short, using fallback summary",
			zap.Int("length", len(unified)),
		)
		return fallbackSummary(ownerName, results)
	}

	footer := fmt.Sprintf("\n\nAnalysis Summary: Based on %d therapeutic data sources", len(results))
	return unified + footer
}

// fallbackSummary builds a plain-text combination of the category answers.
// Fully deterministic: an introduction, up to three bulleted answers, a
// closing sentence and a sources line.
func fallbackSummary(ownerName string, results []CategoryResult) string {
	parts := []string{
		fmt.Sprintf("Based on analysis of %s's therapeutic data:", ownerName),
		"",
	}

	for i, result := range results {
		if i >= 3 {
			break
		}
		insight := strings.TrimSpace(result.Answer)
		if len(insight) <= 20 {
			continue
		}
		if !strings.HasSuffix(insight, ".") {
			insight += "."
		}
		parts = append(parts, "• "+insight)
	}

	parts = append(parts,
		"",
		fmt.Sprintf("From a clinical perspective, these patterns suggest %s is actively engaged in therapeutic work with identifiable areas for continued exploration and growth.", ownerName),
		"",
		fmt.Sprintf("Sources: %s", strings.Join(sourceSummary(results), ", ")),
	)

	return strings.Join(parts, "\n")
}

func sourceSummary(results []CategoryResult) []string {
	sources := make([]string, 0, len(results))
	for _, result := range results {
		sources = append(sources, fmt.Sprintf("%s (%d entries)", result.Source, result.RetrievedCount))
	}
	return sources
}
