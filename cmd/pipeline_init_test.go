package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/epv-cli/internal/config"
	"github.com/sells-group/epv-cli/internal/estimate"
	"github.com/sells-group/epv-cli/internal/fetcher"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.EDGAR.UserAgent = "epv-cli test"
	c.EDGAR.BaseURL = "https://www.sec.gov"
	c.EDGAR.DataURL = "https://data.sec.gov"
	c.Anthropic.Model = "claude-sonnet-4-5-20250929"
	c.Anthropic.FallbackModel = "claude-haiku-4-5-20251001"
	c.Anthropic.MaxTokens = 1024
	c.Gemini.Model = "gemini-2.5-flash"
	c.LLM.Provider = config.ProviderAnthropic
	c.LLM.TimeoutSecs = 1
	c.Retry.MaxAttempts = 3
	c.Retry.StepMs = 1
	c.HTTP.TimeoutSecs = 1
	c.Narrative.MaxChars = 5000
	c.Valuation.DiscountRate = 0.1
	c.Cache.Path = filepath.Join(t.TempDir(), "cache.db")
	c.Cache.TTLHours = 1
	c.Server.Port = 8080
	c.Log.Level = "info"
	return c
}

func TestInitPipeline_WithCache(t *testing.T) {
	withConfig(t, testConfig(t))

	env, err := initPipeline(context.Background(), "analyze")
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Pipeline)
	assert.NotNil(t, env.cache)
}

func TestInitPipeline_WithoutCache(t *testing.T) {
	c := testConfig(t)
	c.Cache.Path = ""
	withConfig(t, c)

	env, err := initPipeline(context.Background(), "analyze")
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Pipeline)
	assert.Nil(t, env.cache)
}

func TestInitPipeline_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.LLM.Provider = "openai"
	withConfig(t, c)

	_, err := initPipeline(context.Background(), "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestInitDocumentGetter(t *testing.T) {
	c := testConfig(t)
	env := &pipelineEnv{}
	defer env.Close()

	g, err := initDocumentGetter(context.Background(), c, env)
	require.NoError(t, err)
	assert.IsType(t, &fetcher.CachedFetcher{}, g)

	c.Cache.Path = ""
	g, err = initDocumentGetter(context.Background(), c, &pipelineEnv{})
	require.NoError(t, err)
	assert.IsType(t, &fetcher.HTTPFetcher{}, g)
}

func TestNewBackend(t *testing.T) {
	c := testConfig(t)

	b, err := newBackend(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &estimate.AnthropicBackend{}, b)
	assert.Equal(t, "anthropic", b.Name())

	c.LLM.Provider = config.ProviderGemini
	b, err = newBackend(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &estimate.GeminiBackend{}, b)
	assert.Equal(t, "gemini", b.Name())
}

func TestNewBackend_NoKeyReturnsCannedResponse(t *testing.T) {
	b, err := newBackend(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, estimate.CannedResponse, b.Invoke(context.Background(), "system", "user"))
}
