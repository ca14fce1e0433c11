package persona

import (
	"context"

	"go.uber.org/zap"

	"sage-clone/backend/internal/constants"
	"sage-clone/backend/internal/graphrag"
	"sage-clone/backend/internal/memory"
	"sage-clone/backend/pkg/logger"
)

// MemorySource is the read-side view of the graph the router needs to ground
// persona conversations
type MemorySource interface {
	FetchMemoryContext(ctx context.Context, ownerID string, perCategory int) (map[graphrag.Category][]string, error)
	GetOrCreateUser(ctx context.Context, ownerID, name string) (*graphrag.Owner, error)
}

// Router routes chat messages to the Sage persona and keeps the user's
// memory graph current after each exchange
type Router struct {
	llm      graphrag.Generator
	source   MemorySource
	analyzer *memory.Analyzer
	logger   *zap.Logger
}

// NewRouter creates a new persona router
func NewRouter(llm graphrag.Generator, source MemorySource, analyzer *memory.Analyzer) *Router {
	return &Router{
		llm:      llm,
		source:   source,
		analyzer: analyzer,
		logger:   logger.Get(),
	}
}

// Chat generates a Sage response for the user's message. LLM failures fall
// back to pattern-based responses; memory analysis failures never surface.
func (r *Router) Chat(ctx context.Context, ownerID, ownerName, message string) (string, error) {
	owner, err := r.source.GetOrCreateUser(ctx, ownerID, ownerName)
	if err != nil {
		return "", err
	}

	memoryContext, err := r.source.FetchMemoryContext(ctx, owner.ID, 5)
	if err != nil {
		r.logger.Warn("Failed to fetch memory context, continuing without it",
			zap.String("user_id", owner.ID),
			zap.Error(err),
		)
		memoryContext = nil
	}

	systemPrompt := BuildSystemPrompt(owner.Name, memoryContext)

	response, err := r.llm.Generate(ctx, systemPrompt, message, graphrag.GenOptions{
		Temperature: constants.PersonaTemperature,
		MaxTokens:   constants.PersonaMaxTokens,
	})
	if err != nil {
		r.logger.Warn("Persona generation failed, using fallback",
			zap.String("user_id", owner.ID),
			zap.Error(err),
		)
		return FallbackResponse(message), nil
	}

	response = SoftenTone(response)

	if r.analyzer != nil {
		r.rememberExchange(ctx, owner.ID, message, response)
	}

	return response, nil
}

func (r *Router) rememberExchange(ctx context.Context, ownerID, userMessage, response string) {
	analysis, err := r.analyzer.AnalyzeConversation(ctx, ownerID, userMessage, response)
	if err != nil {
		r.logger.Warn("Conversation analysis failed",
			zap.String("user_id", ownerID),
			zap.Error(err),
		)
		return
	}

	proposals := r.analyzer.Proposals(analysis)
	if len(proposals) == 0 {
		return
	}

	r.analyzer.Apply(ctx, ownerID, proposals)
}
