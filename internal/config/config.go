package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds the full application configuration.
type Config struct {
	FMP       FMPConfig       `yaml:"fmp" mapstructure:"fmp"`
	Yahoo     YahooConfig     `yaml:"yahoo" mapstructure:"yahoo"`
	EDGAR     EDGARConfig     `yaml:"edgar" mapstructure:"edgar"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Narrative NarrativeConfig `yaml:"narrative" mapstructure:"narrative"`
	Valuation ValuationConfig `yaml:"valuation" mapstructure:"valuation"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// FMPConfig holds Financial Modeling Prep settings. An empty key skips the
// provider.
type FMPConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// YahooConfig holds Yahoo Finance settings.
type YahooConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// EDGARConfig holds SEC EDGAR settings.
type EDGARConfig struct {
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	DataURL   string `yaml:"data_url" mapstructure:"data_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	Model         string `yaml:"model" mapstructure:"model"`
	FallbackModel string `yaml:"fallback_model" mapstructure:"fallback_model"`
	MaxTokens     int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// GeminiConfig holds Google Gemini settings.
type GeminiConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	Model         string `yaml:"model" mapstructure:"model"`
	FallbackModel string `yaml:"fallback_model" mapstructure:"fallback_model"`
}

// LLMConfig selects the language-model backend.
type LLMConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the bound on a single model call.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RetryConfig configures the retry budget of the secondary data provider.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	StepMs      int `yaml:"step_ms" mapstructure:"step_ms"`
}

// HTTPConfig configures outbound HTTP.
type HTTPConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the per-request timeout.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// NarrativeConfig bounds the commentary sent to the language model.
type NarrativeConfig struct {
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// ValuationConfig holds valuation defaults.
type ValuationConfig struct {
	DiscountRate float64 `yaml:"discount_rate" mapstructure:"discount_rate"`
}

// CacheConfig configures the SEC document cache. An empty path disables it.
type CacheConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps unprefixed credential variables onto config keys.
var legacyEnv = map[string]string{
	"fmp.key":       "FMP_API_KEY",
	"anthropic.key": "ANTHROPIC_API_KEY",
	"gemini.key":    "GEMINI_API_KEY",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EPV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "EPV_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	// Defaults
	v.SetDefault("fmp.base_url", "https://financialmodelingprep.com")
	v.SetDefault("yahoo.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("edgar.user_agent", "SaaS EPV Analyzer (research contact: engineering@example.com)")
	v.SetDefault("edgar.base_url", "https://www.sec.gov")
	v.SetDefault("edgar.data_url", "https://data.sec.gov")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.fallback_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.fallback_model", "gemini-2.0-flash")
	v.SetDefault("llm.provider", ProviderAnthropic)
	v.SetDefault("llm.timeout_secs", 30)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.step_ms", 1000)
	v.SetDefault("http.timeout_secs", 10)
	v.SetDefault("narrative.max_chars", 5000)
	v.SetDefault("valuation.discount_rate", 0.10)
	v.SetDefault("cache.path", "epv-cache.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the given mode ("analyze" or
// "serve"). All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Valuation.DiscountRate < 0 || c.Valuation.DiscountRate > 1 {
		errs = append(errs, "valuation.discount_rate must be between 0 and 1")
	}
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		errs = append(errs, "unknown llm.provider "+strconv.Quote(c.LLM.Provider))
	}
	if c.LLM.TimeoutSecs <= 0 {
		errs = append(errs, "llm.timeout_secs must be > 0")
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry.max_attempts must be >= 1")
	}
	if c.Narrative.MaxChars < 0 {
		errs = append(errs, "narrative.max_chars must be >= 0")
	}

	switch mode {
	case "analyze":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
