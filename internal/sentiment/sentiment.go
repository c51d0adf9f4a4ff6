// Package sentiment classifies financial text as positive, negative or neutral.
// Backends are interchangeable behind Annotator.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bighogz/sentiment-features/internal/aggregator"
	"github.com/bighogz/sentiment-features/internal/logger"
	"github.com/bighogz/sentiment-features/internal/models"
)

// ErrMissingExport is returned when a wasm classifier lacks a required export.
var ErrMissingExport = errors.New("sentiment: wasm module missing required export")

// Result is one classification. Label is lower case.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Annotator interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// Func adapts a plain function to Annotator.
type Func func(ctx context.Context, text string) (Result, error)

func (f Func) Classify(ctx context.Context, text string) (Result, error) {
	return f(ctx, text)
}

// normalize lower-cases the label and rejects anything outside the three
// classes or a score outside [0, 1].
func normalize(r Result) (Result, error) {
	r.Label = strings.ToLower(strings.TrimSpace(r.Label))
	switch r.Label {
	case aggregator.LabelPositive, aggregator.LabelNegative, aggregator.LabelNeutral:
	default:
		return Result{}, fmt.Errorf("sentiment: unknown label %q", r.Label)
	}
	if r.Score < 0 || r.Score > 1 {
		return Result{}, fmt.Errorf("sentiment: score %v out of range", r.Score)
	}
	return r, nil
}

// Annotate classifies text, truncated to maxChars runes when maxChars > 0.
// Blank text is not sent to the classifier; blank text and classifier errors
// both yield nil so the item drops out of the daily statistics.
func Annotate(ctx context.Context, a Annotator, text string, maxChars int, log *logger.Logger) *models.Sentiment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		text = string([]rune(text)[:maxChars])
	}
	r, err := a.Classify(ctx, text)
	if err == nil {
		r, err = normalize(r)
	}
	if err != nil {
		log.Warnw("sentiment classification failed", "error", err, "chars", len(text))
		return nil
	}
	return &models.Sentiment{Label: r.Label, Score: r.Score}
}
