package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"sage-clone/backend/internal/graphrag"
	apperrors "sage-clone/backend/pkg/errors"
	"sage-clone/backend/pkg/logger"
)

// LLMAdapter handles text generation via a LiteLLM-compatible endpoint
type LLMAdapter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter
func NewLLMAdapter(baseURL, apiKey, modelID string, timeout time.Duration) *LLMAdapter {
	// For LiteLLM, we can use a dummy API key if not provided
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &LLMAdapter{
		client:  openai.NewClientWithConfig(config),
		model:   modelID,
		timeout: timeout,
		logger:  logger.Get(),
	}
}

// Generate sends a request to the LLM and returns the generated text.
// Each call runs under its own timeout derived from the configured limit.
func (a *LLMAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, opts graphrag.GenOptions) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: opts.Temperature,
		MaxTokens:   maxTokens,
	}

	// Retry with linear backoff
	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
		}

		resp, err = a.client.CreateChatCompletion(callCtx, req)
		if err == nil {
			break
		}

		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", a.model),
		)

		if callCtx.Err() != nil {
			// Timed out or cancelled; further attempts cannot succeed
			break
		}
	}

	if err != nil {
		return "", apperrors.NewGenerationFailed(a.model, maxRetries, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.ErrGenerationEmpty
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	a.logger.Debug("LLM response generated",
		zap.String("model", a.model),
		zap.Int("length", len(content)),
	)

	return content, nil
}
