// Package gemini wraps the Google Gemini generate-content API.
package gemini

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Client defines the Gemini operations used by the estimator.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is a single-turn prompt.
type GenerateRequest struct {
	Model           string
	System          string
	Prompt          string
	Temperature     *float32
	MaxOutputTokens int32
}

// GenerateResponse carries the generated text and token counts.
type GenerateResponse struct {
	Model        string
	Text         string
	InputTokens  int32
	OutputTokens int32
}

// Option configures the client.
type Option func(*genai.ClientConfig)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPClient = hc
	}
}

type sdkClient struct {
	client *genai.Client
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, o := range opts {
		o(cfg)
	}

	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &sdkClient{client: c}, nil
}

func (c *sdkClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = req.MaxOutputTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, eris.Wrapf(err, "gemini: generate content with %s", req.Model)
	}

	out := &GenerateResponse{
		Model: req.Model,
		Text:  resp.Text(),
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = resp.UsageMetadata.PromptTokenCount
		out.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	}

	zap.L().Debug("gemini: generated",
		zap.String("model", req.Model),
		zap.Int32("input_tokens", out.InputTokens),
		zap.Int32("output_tokens", out.OutputTokens),
	)
	return out, nil
}
