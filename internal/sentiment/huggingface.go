package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bighogz/sentiment-features/internal/httpclient"
)

// HuggingFace calls a hosted text-classification model.
type HuggingFace struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewHuggingFace targets baseURL/model, e.g. ProsusAI/finbert.
func NewHuggingFace(baseURL, model, token string, h *http.Client) *HuggingFace {
	if h == nil {
		h = httpclient.Default
	}
	return &HuggingFace{
		endpoint:   strings.TrimRight(baseURL, "/") + "/" + strings.Trim(model, "/"),
		token:      token,
		httpClient: h,
	}
}

type hfRequest struct {
	Inputs string `json:"inputs"`
}

func (h *HuggingFace) Classify(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(hfRequest{Inputs: text})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("huggingface: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("huggingface: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("huggingface: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return Result{}, fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, msg)
	}
	return parseHFScores(raw)
}

// parseHFScores accepts both [[{label,score}...]] and [{label,score}...] and
// returns the highest-scoring label.
func parseHFScores(raw []byte) (Result, error) {
	var nested [][]Result
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return best(nested[0])
	}
	var flat []Result
	if err := json.Unmarshal(raw, &flat); err != nil {
		return Result{}, fmt.Errorf("huggingface: decode scores: %w", err)
	}
	return best(flat)
}

func best(scores []Result) (Result, error) {
	if len(scores) == 0 {
		return Result{}, fmt.Errorf("huggingface: empty scores")
	}
	top := scores[0]
	for _, s := range scores[1:] {
		if s.Score > top.Score {
			top = s
		}
	}
	return top, nil
}
