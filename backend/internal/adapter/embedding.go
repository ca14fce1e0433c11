package adapter

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "sage-clone/backend/pkg/errors"
	"sage-clone/backend/pkg/logger"
)

// EmbeddingGateway produces query and content embeddings via a
// LiteLLM-compatible endpoint
type EmbeddingGateway struct {
	client     *openai.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbeddingGateway creates a new embedding gateway
func NewEmbeddingGateway(baseURL, apiKey, model string, dimensions int) *EmbeddingGateway {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	return &EmbeddingGateway{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
		logger:     logger.Get(),
	}
}

// Embed converts text into a vector. Empty or whitespace-only input is
// rejected before any network call is made.
func (g *EmbeddingGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewInvalidInput("text", "must not be empty")
	}

	resp, err := g.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(g.model),
		Input:      []string{text},
		Dimensions: g.dimensions,
	})
	if err != nil {
		g.logger.Error("Embedding request failed",
			zap.Error(err),
			zap.String("model", g.model),
		)
		return nil, apperrors.NewEmbeddingUnavailable(g.model, err)
	}

	if len(resp.Data) == 0 {
		return nil, apperrors.NewEmbeddingUnavailable(g.model, nil)
	}

	vector := resp.Data[0].Embedding
	if g.dimensions > 0 && len(vector) != g.dimensions {
		g.logger.Warn("Embedding dimension mismatch",
			zap.Int("expected", g.dimensions),
			zap.Int("got", len(vector)),
		)
	}

	return vector, nil
}
