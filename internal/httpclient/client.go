package httpclient

import (
	"net/http"
	"time"
)

// Default is the shared HTTP client with timeout and connection reuse.
var Default = New(30 * time.Second)

// New returns a client with the shared transport settings and the given timeout.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// WithUserAgent returns a copy of c whose requests carry the given User-Agent.
// Reddit and Yahoo both reject generic clients.
func WithUserAgent(c *http.Client, userAgent string) *http.Client {
	if c == nil {
		c = Default
	}
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cp := *c
	cp.Transport = &userAgentTransport{base: base, userAgent: userAgent}
	return &cp
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
