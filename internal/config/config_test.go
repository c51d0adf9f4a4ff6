package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FMP_API_KEY", "k")
	t.Setenv("SENTIMENT_BACKEND", " HuggingFace ")
	t.Setenv("EXPORT_FORMAT", ".CSV")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "k", cfg.Credentials.APIKey)
	assert.Equal(t, "huggingface", cfg.Sentiment.Backend)
	assert.Equal(t, "ProsusAI/finbert", cfg.Sentiment.Model)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, 150, cfg.Fetch.NewsLimitPerDay)
	assert.Equal(t, 300*time.Millisecond, cfg.Fetch.NewsDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Fetch.SocialDelay)
	assert.Equal(t, 5, cfg.Fetch.SocialPostsPerDay)
	assert.Equal(t, []string{"stocks", "investing", "wallstreetbets", "technology"}, cfg.Fetch.Subreddits)
	assert.Equal(t, "fmp", cfg.Fetch.PriceSource)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Credentials: Credentials{APIKey: "k", ClientID: "id", ClientSecret: "secret"},
			Sentiment:   SentimentConfig{Backend: "huggingface"},
			Fetch:       FetchConfig{PriceSource: "fmp", Subreddits: []string{"stocks"}, NewsWindowDays: 1},
			Export:      ExportConfig{Format: "xlsx"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.Credentials.APIKey = "" }, wantErr: "FMP_API_KEY"},
		{name: "missing reddit secret", mutate: func(c *Config) { c.Credentials.ClientSecret = "" }, wantErr: "REDDIT_CLIENT_ID"},
		{name: "command without command", mutate: func(c *Config) { c.Sentiment.Backend = "command" }, wantErr: "SENTIMENT_COMMAND"},
		{name: "wasm without path", mutate: func(c *Config) { c.Sentiment.Backend = "wasm" }, wantErr: "SENTIMENT_WASM_PATH"},
		{name: "gemini without key", mutate: func(c *Config) { c.Sentiment.Backend = "gemini" }, wantErr: "GEMINI_API_KEY"},
		{name: "unknown backend", mutate: func(c *Config) { c.Sentiment.Backend = "vader" }, wantErr: "SENTIMENT_BACKEND"},
		{name: "unknown price source", mutate: func(c *Config) { c.Fetch.PriceSource = "iex" }, wantErr: "PRICE_SOURCE"},
		{name: "unknown format", mutate: func(c *Config) { c.Export.Format = "parquet" }, wantErr: "EXPORT_FORMAT"},
		{name: "no subreddits", mutate: func(c *Config) { c.Fetch.Subreddits = nil }, wantErr: "SUBREDDITS"},
		{name: "bad window", mutate: func(c *Config) { c.Fetch.NewsWindowDays = 0 }, wantErr: "NEWS_WINDOW_DAYS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
