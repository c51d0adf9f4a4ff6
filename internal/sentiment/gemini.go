package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

const geminiInstruction = `You are a financial sentiment classifier.

Task: Classify the sentiment of the text below toward the company or market it discusses.

Rules:
- label is one of: positive, negative, neutral
- score is your confidence in the label, between 0 and 1

Output Format (JSON only, no markdown fences):
{"label": "positive", "score": 0.93}

Text:
%s`

var fencePattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json|JSON)?\s*\n?(.*?)\n?\s*` + "```" + `\s*$`)

// Gemini asks a Gemini model for a label and confidence.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string, h *http.Client) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: h,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Classify(ctx context.Context, text string) (Result, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		ResponseMIMEType: "application/json",
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{genai.NewPartFromText(fmt.Sprintf(geminiInstruction, text))},
		},
	}, config)
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate (model: %s): %w", g.model, err)
	}
	out := resp.Text()
	if out == "" {
		return Result{}, fmt.Errorf("gemini: empty response")
	}
	return parseGeminiResult(out)
}

func parseGeminiResult(s string) (Result, error) {
	s = strings.TrimSpace(s)
	if m := fencePattern.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	var r Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &r); err != nil {
		return Result{}, fmt.Errorf("parse gemini response: %w (response: %s)", err, s)
	}
	return r, nil
}
