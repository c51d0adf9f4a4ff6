package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/sentiment-features/internal/config"
	"github.com/bighogz/sentiment-features/internal/logger"
)

func TestAnnotate(t *testing.T) {
	var seen []string
	a := Func(func(ctx context.Context, text string) (Result, error) {
		seen = append(seen, text)
		switch {
		case strings.Contains(text, "fail"):
			return Result{}, errors.New("backend down")
		case strings.Contains(text, "odd"):
			return Result{Label: "bullish", Score: 0.5}, nil
		}
		return Result{Label: "Positive", Score: 0.9}, nil
	})
	ctx := context.Background()
	log := logger.Nop()

	s := Annotate(ctx, a, "Revenue beat estimates", 0, log)
	require.NotNil(t, s)
	assert.Equal(t, "positive", s.Label)
	assert.Equal(t, 0.9, s.Score)

	assert.Nil(t, Annotate(ctx, a, "   ", 0, log))
	assert.Nil(t, Annotate(ctx, a, "this will fail", 0, log))
	assert.Nil(t, Annotate(ctx, a, "an odd label", 0, log))
	assert.Len(t, seen, 3, "blank text is never sent")

	require.NotNil(t, Annotate(ctx, a, "héllo world", 4, log))
	assert.Equal(t, "héll", seen[len(seen)-1])
}

func TestHuggingFace(t *testing.T) {
	var auth string
	var got hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ProsusAI/finbert", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `[[{"label":"neutral","score":0.1},{"label":"negative","score":0.85},{"label":"positive","score":0.05}]]`)
	}))
	defer srv.Close()

	h := NewHuggingFace(srv.URL+"/", "ProsusAI/finbert", "hf_token", srv.Client())
	r, err := h.Classify(context.Background(), "Guidance cut")
	require.NoError(t, err)
	assert.Equal(t, Result{Label: "negative", Score: 0.85}, r)
	assert.Equal(t, "Bearer hf_token", auth)
	assert.Equal(t, "Guidance cut", got.Inputs)
}

func TestHuggingFaceFlatAndErrors(t *testing.T) {
	r, err := parseHFScores([]byte(`[{"label":"positive","score":0.7},{"label":"neutral","score":0.2}]`))
	require.NoError(t, err)
	assert.Equal(t, "positive", r.Label)

	_, err = parseHFScores([]byte(`[]`))
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"Model ProsusAI/finbert is currently loading","estimated_time":20}`)
	}))
	defer srv.Close()
	_, err = NewHuggingFace(srv.URL, "ProsusAI/finbert", "", srv.Client()).Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currently loading")
}

// TestHelperClassifier is the external process for TestCommand.
func TestHelperClassifier(t *testing.T) {
	if os.Getenv("SENTIMENT_HELPER_PROCESS") != "1" {
		return
	}
	var in commandInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	label := "Neutral"
	if strings.Contains(in.Text, "beat") {
		label = "Positive"
	}
	fmt.Fprintf(os.Stdout, `{"label":%q,"score":0.8}`, label)
	os.Exit(0)
}

func TestCommand(t *testing.T) {
	t.Setenv("SENTIMENT_HELPER_PROCESS", "1")
	c, err := NewCommand(os.Args[0] + " -test.run=^TestHelperClassifier$")
	require.NoError(t, err)

	r, err := c.Classify(context.Background(), "Earnings beat")
	require.NoError(t, err)
	assert.Equal(t, "Positive", r.Label)
	assert.Equal(t, 0.8, r.Score)

	s := Annotate(context.Background(), c, "Flat quarter", 0, logger.Nop())
	require.NotNil(t, s)
	assert.Equal(t, "neutral", s.Label)
}

func TestNewCommandErrors(t *testing.T) {
	_, err := NewCommand("  ")
	assert.Error(t, err)
	_, err = NewCommand("definitely-not-a-real-classifier-binary")
	assert.Error(t, err)
}

func TestWasmMissingExports(t *testing.T) {
	empty := []byte("\x00asm\x01\x00\x00\x00")
	_, err := NewWasm(context.Background(), empty)
	assert.ErrorIs(t, err, ErrMissingExport)
}

func TestWasmClassify(t *testing.T) {
	ctx := context.Background()
	w, err := LoadWasm(ctx, "testdata/classifier.wasm")
	require.NoError(t, err)
	defer w.Close()

	r, err := w.Classify(ctx, "up on strong iPhone sales")
	require.NoError(t, err)
	assert.Equal(t, Result{Label: "Positive", Score: 0.75}, r)

	r, err = w.Classify(ctx, "bad guidance")
	require.NoError(t, err)
	assert.Equal(t, Result{Label: "negative", Score: 0.6}, r)

	s := Annotate(ctx, w, "  up again ", 0, logger.Nop())
	require.NotNil(t, s)
	assert.Equal(t, "positive", s.Label)
	assert.Equal(t, 0.75, s.Score)
}

func TestParseGeminiResult(t *testing.T) {
	r, err := parseGeminiResult("```json\n{\"label\": \"negative\", \"score\": 0.7}\n```")
	require.NoError(t, err)
	assert.Equal(t, Result{Label: "negative", Score: 0.7}, r)

	r, err = parseGeminiResult(`{"label":"positive","score":1}`)
	require.NoError(t, err)
	assert.Equal(t, "positive", r.Label)

	_, err = parseGeminiResult("I think it is positive")
	assert.Error(t, err)
}

func TestNewBackends(t *testing.T) {
	a, err := New(context.Background(), config.SentimentConfig{Backend: "huggingface", HFBaseURL: "http://localhost", Model: "m"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &HuggingFace{}, a)

	_, err = New(context.Background(), config.SentimentConfig{Backend: "vader"}, nil)
	assert.Error(t, err)

	_, err = New(context.Background(), config.SentimentConfig{Backend: "wasm", WasmPath: t.TempDir() + "/missing.wasm"}, nil)
	assert.Error(t, err)
}
