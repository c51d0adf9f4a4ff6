package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bighogz/sentiment-features/internal/config"
	"github.com/bighogz/sentiment-features/internal/httpclient"
	"github.com/bighogz/sentiment-features/internal/logger"
)

const DefaultBaseURL = "https://financialmodelingprep.com/stable"

// ErrMalformedPayload is returned when a response decodes but is not the
// non-empty array the endpoint should produce.
var ErrMalformedPayload = errors.New("fmp: unexpected or empty response")

// APIError is a non-200 response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fmp API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(creds config.Credentials, opts ...Option) *Client {
	c := &Client{
		apiKey:     creds.APIKey,
		baseURL:    DefaultBaseURL,
		httpClient: httpclient.Default,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get issues GET baseURL+path and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("fmp %s: missing API key", path)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("fmp %s: build request: %w", path, err)
	}
	c.log.Debugw("fmp request", "endpoint", path, "symbol", params.Get("symbol")+params.Get("symbols"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fmp %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fmp %s: read body: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body), Endpoint: path}
	}

	// FMP reports some failures as 200 with {"Error Message": "..."}.
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var m map[string]interface{}
		if json.Unmarshal(body, &m) == nil {
			if msg, ok := m["Error Message"].(string); ok && msg != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: msg, Endpoint: path}
			}
		}
		return fmt.Errorf("%w: %s returned an object, want an array", ErrMalformedPayload, path)
	}
	if !strings.HasPrefix(trimmed, "[") {
		return fmt.Errorf("%w: %s returned %q", ErrMalformedPayload, path, preview(trimmed))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, path, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var m map[string]interface{}
	if json.Unmarshal(body, &m) == nil {
		for _, k := range []string{"Error Message", "message", "error"} {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return preview(strings.TrimSpace(string(body)))
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
