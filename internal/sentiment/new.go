package sentiment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bighogz/sentiment-features/internal/config"
)

// New builds the backend named by cfg.Backend. Backends holding resources
// (wasm) implement io.Closer.
func New(ctx context.Context, cfg config.SentimentConfig, h *http.Client) (Annotator, error) {
	switch cfg.Backend {
	case "huggingface", "":
		return NewHuggingFace(cfg.HFBaseURL, cfg.Model, cfg.HFToken, h), nil
	case "command":
		c, err := NewCommand(cfg.Command)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "wasm":
		w, err := LoadWasm(ctx, cfg.WasmPath)
		if err != nil {
			return nil, err
		}
		return w, nil
	case "gemini":
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, h)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown sentiment backend %q", cfg.Backend)
	}
}
