package estimate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/epv-cli/pkg/anthropic"
	"github.com/sells-group/epv-cli/pkg/gemini"
)

// CannedResponse is returned by a backend with no credentials so the
// pipeline stays usable offline.
const CannedResponse = `
{
    "maintenance_sga_percent": 0.40,
    "maintenance_rnd_percent": 0.30,
    "reasoning": "Simulated Analysis: Strong Net Revenue Retention (120%+) implies majority of S&M is for expansion. R&D is heavily weighted towards new product modules."
}
`

// Backend invokes a language model. Invoke never fails: errors come back
// as a non-JSON description that the estimator rejects.
type Backend interface {
	Name() string
	Invoke(ctx context.Context, system, user string) string
}

// AnthropicBackend calls the Messages API with a primary model and one
// cheaper fallback model.
type AnthropicBackend struct {
	client        anthropic.Client
	model         string
	fallbackModel string
	maxTokens     int64
}

// NewAnthropicBackend creates the backend. A nil client means no API key is
// configured.
func NewAnthropicBackend(client anthropic.Client, model, fallbackModel string, maxTokens int64) *AnthropicBackend {
	return &AnthropicBackend{
		client:        client,
		model:         model,
		fallbackModel: fallbackModel,
		maxTokens:     maxTokens,
	}
}

// Name implements Backend.
func (b *AnthropicBackend) Name() string { return "anthropic" }

// Invoke implements Backend.
func (b *AnthropicBackend) Invoke(ctx context.Context, system, user string) string {
	if b.client == nil {
		return CannedResponse
	}

	text, err := b.call(ctx, b.model, system, user)
	if err == nil {
		return text
	}
	if b.fallbackModel != "" && b.fallbackModel != b.model {
		zap.L().Warn("estimate: primary model failed, trying fallback model",
			zap.String("model", b.model),
			zap.String("fallback_model", b.fallbackModel),
			zap.Error(err),
		)
		if text, err = b.call(ctx, b.fallbackModel, system, user); err == nil {
			return text
		}
	}
	return fmt.Sprintf("Error calling Anthropic: %v", err)
}

func (b *AnthropicBackend) call(ctx context.Context, model, system, user string) (string, error) {
	temp := 0.0
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       model,
		MaxTokens:   b.maxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(model, "estimate")
	return resp.Text(), nil
}

// GeminiBackend calls the Gemini generate-content API with the same
// primary/fallback contract as AnthropicBackend.
type GeminiBackend struct {
	client        gemini.Client
	model         string
	fallbackModel string
}

// NewGeminiBackend creates the backend. A nil client means no API key is
// configured.
func NewGeminiBackend(client gemini.Client, model, fallbackModel string) *GeminiBackend {
	return &GeminiBackend{client: client, model: model, fallbackModel: fallbackModel}
}

// Name implements Backend.
func (b *GeminiBackend) Name() string { return "gemini" }

// Invoke implements Backend.
func (b *GeminiBackend) Invoke(ctx context.Context, system, user string) string {
	if b.client == nil {
		return CannedResponse
	}

	text, err := b.call(ctx, b.model, system, user)
	if err == nil {
		return text
	}
	if b.fallbackModel != "" && b.fallbackModel != b.model {
		zap.L().Warn("estimate: primary model failed, trying fallback model",
			zap.String("model", b.model),
			zap.String("fallback_model", b.fallbackModel),
			zap.Error(err),
		)
		if text, err = b.call(ctx, b.fallbackModel, system, user); err == nil {
			return text
		}
	}
	return fmt.Sprintf("Error calling Gemini: %v", err)
}

func (b *GeminiBackend) call(ctx context.Context, model, system, user string) (string, error) {
	temp := float32(0)
	resp, err := b.client.Generate(ctx, gemini.GenerateRequest{
		Model:       model,
		System:      system,
		Prompt:      user,
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
