package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	Credentials Credentials
	Sentiment   SentimentConfig
	Fetch       FetchConfig
	Export      ExportConfig
	Trace       TraceConfig
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Credentials are handed to each fetcher explicitly.
type Credentials struct {
	APIKey       string `envconfig:"FMP_API_KEY"`
	ClientID     string `envconfig:"REDDIT_CLIENT_ID"`
	ClientSecret string `envconfig:"REDDIT_CLIENT_SECRET"`
	UserAgent    string `envconfig:"REDDIT_USER_AGENT" default:"sentiment-features/1.0"`
}

type SentimentConfig struct {
	Backend     string `envconfig:"SENTIMENT_BACKEND" default:"huggingface"`
	Model       string `envconfig:"SENTIMENT_MODEL" default:"ProsusAI/finbert"`
	HFToken     string `envconfig:"HF_API_KEY"`
	HFBaseURL   string `envconfig:"HF_BASE_URL" default:"https://router.huggingface.co/hf-inference/models"`
	Command     string `envconfig:"SENTIMENT_COMMAND"`
	WasmPath    string `envconfig:"SENTIMENT_WASM_PATH"`
	GeminiKey   string `envconfig:"GEMINI_API_KEY"`
	GeminiModel string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	MaxChars    int    `envconfig:"SENTIMENT_MAX_CHARS" default:"2000"`
}

type FetchConfig struct {
	NewsLimitPerDay      int           `envconfig:"NEWS_LIMIT_PER_DAY" default:"150"`
	NewsDelay            time.Duration `envconfig:"NEWS_DELAY" default:"300ms"`
	NewsWindowDays       int           `envconfig:"NEWS_WINDOW_DAYS" default:"1"`
	SocialDelay          time.Duration `envconfig:"SOCIAL_DELAY" default:"1500ms"`
	SocialPostsPerDay    int           `envconfig:"SOCIAL_POSTS_PER_DAY" default:"5"`
	SocialSearchLimit    int           `envconfig:"SOCIAL_SEARCH_LIMIT" default:"100"`
	Subreddits           []string      `envconfig:"SUBREDDITS" default:"stocks,investing,wallstreetbets,technology"`
	SocialKeyword        string        `envconfig:"SOCIAL_KEYWORD"`
	SocialUseCompanyName bool          `envconfig:"SOCIAL_USE_COMPANY_NAME" default:"false"`
	PriceSource          string        `envconfig:"PRICE_SOURCE" default:"fmp"`
	HTTPTimeout          time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
}

type ExportConfig struct {
	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`
	Format    string `envconfig:"EXPORT_FORMAT" default:"xlsx"`
}

type TraceConfig struct {
	Enabled bool   `envconfig:"TRACE_ENABLED" default:"false"`
	File    string `envconfig:"TRACE_FILE"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	cfg.Sentiment.Backend = strings.ToLower(strings.TrimSpace(cfg.Sentiment.Backend))
	cfg.Fetch.PriceSource = strings.ToLower(strings.TrimSpace(cfg.Fetch.PriceSource))
	cfg.Export.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cfg.Export.Format), "."))
	return &cfg, nil
}

// Validate checks the settings a collect run depends on.
func (c *Config) Validate() error {
	if c.Credentials.APIKey == "" {
		return fmt.Errorf("FMP_API_KEY is required")
	}
	if c.Credentials.ClientID == "" || c.Credentials.ClientSecret == "" {
		return fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required")
	}
	switch c.Sentiment.Backend {
	case "huggingface":
	case "command":
		if c.Sentiment.Command == "" {
			return fmt.Errorf("SENTIMENT_COMMAND is required for the command backend")
		}
	case "wasm":
		if c.Sentiment.WasmPath == "" {
			return fmt.Errorf("SENTIMENT_WASM_PATH is required for the wasm backend")
		}
	case "gemini":
		if c.Sentiment.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
		}
	default:
		return fmt.Errorf("unknown SENTIMENT_BACKEND %q", c.Sentiment.Backend)
	}
	switch c.Fetch.PriceSource {
	case "fmp", "yahoo":
	default:
		return fmt.Errorf("unknown PRICE_SOURCE %q", c.Fetch.PriceSource)
	}
	switch c.Export.Format {
	case "xlsx", "csv", "sqlite", "db":
	default:
		return fmt.Errorf("unknown EXPORT_FORMAT %q", c.Export.Format)
	}
	if len(c.Fetch.Subreddits) == 0 {
		return fmt.Errorf("SUBREDDITS must list at least one community")
	}
	if c.Fetch.NewsWindowDays < 1 {
		return fmt.Errorf("NEWS_WINDOW_DAYS must be >= 1")
	}
	return nil
}
