// Package reddit searches subreddits through the OAuth API with an
// application-only (client credentials) token.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/bighogz/sentiment-features/internal/config"
	"github.com/bighogz/sentiment-features/internal/httpclient"
	"github.com/bighogz/sentiment-features/internal/logger"
)

const (
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	DefaultAPIURL   = "https://oauth.reddit.com"
)

// ErrUnauthorized means the credentials were rejected. No community can be
// searched, so it aborts the crawl.
var ErrUnauthorized = errors.New("reddit: unauthorized")

// APIError is a non-200 search response.
type APIError struct {
	StatusCode int
	Subreddit  string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit API error: r/%s: %s (status: %d)", e.Subreddit, e.Message, e.StatusCode)
}

type Client struct {
	creds      config.Credentials
	tokenURL   string
	apiURL     string
	base       *http.Client
	httpClient *http.Client
	oauth      *clientcredentials.Config
	log        *logger.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

type Option func(*Client)

func WithTokenURL(u string) Option {
	return func(c *Client) { c.tokenURL = u }
}

func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the client used for both the token and search requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.base = h }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds an OAuth client. The token is fetched lazily on the first search,
// with that search's context, and refetched when it expires.
func New(creds config.Credentials, opts ...Option) (*Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("reddit: client id and secret are required")
	}
	c := &Client{
		creds:    creds,
		tokenURL: DefaultTokenURL,
		apiURL:   DefaultAPIURL,
		base:     httpclient.Default,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	ua := creds.UserAgent
	if ua == "" {
		ua = "sentiment-features/1.0"
	}
	c.httpClient = httpclient.WithUserAgent(c.base, ua)
	c.oauth = &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return c, nil
}

// accessToken returns the cached token or requests a new one with ctx.
func (c *Client) accessToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.Valid() {
		return c.token, nil
	}
	tok, err := c.oauth.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil &&
			(re.Response.StatusCode == http.StatusUnauthorized || re.Response.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: token request: %v", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("reddit token: %w", err)
	}
	c.token = tok
	return tok, nil
}

// Submission is one search hit.
type Submission struct {
	ID          string  `json:"id"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Subreddit   string  `json:"subreddit"`
}

type listing struct {
	Data struct {
		Children []struct {
			Kind string     `json:"kind"`
			Data Submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search runs one keyword search in a subreddit, newest first.
func (c *Client) Search(ctx context.Context, subreddit, keyword string, limit int) ([]Submission, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("restrict_sr", "1")
	params.Set("sort", "new")
	params.Set("t", "all")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	u := c.apiURL + "/r/" + url.PathEscape(subreddit) + "/search?" + params.Encode()

	tok, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("reddit r/%s: build request: %w", subreddit, err)
	}
	tok.SetAuthHeader(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit r/%s: %w", subreddit, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reddit r/%s: read body: %w", subreddit, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: r/%s", ErrUnauthorized, subreddit)
	case resp.StatusCode != http.StatusOK:
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Subreddit: subreddit, Message: msg}
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("reddit r/%s: decode listing: %w", subreddit, err)
	}
	out := make([]Submission, 0, len(l.Data.Children))
	for _, ch := range l.Data.Children {
		if ch.Kind != "" && ch.Kind != "t3" {
			continue
		}
		out = append(out, ch.Data)
	}
	return out, nil
}
