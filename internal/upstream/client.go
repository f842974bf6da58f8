package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"odds-sync-service/internal/protocol"
)

// Doer issues one protocol operation against the upstream endpoint and
// returns the raw response body. The codec owns request building and
// response parsing; implementations own only transport.
type Doer interface {
	Do(ctx context.Context, form url.Values) ([]byte, error)
}

// Config controls how the client reaches the upstream server.
type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// Client posts form-encoded operations to the single transform endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient httpDoer
}

// NewClient constructs a transport client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		endpoint:   normalizeBaseURL(cfg.BaseURL) + protocol.EndpointPath,
		userAgent:  resolveUserAgent(cfg.UserAgent),
		httpClient: resolveHTTPClient(cfg.HTTPClient),
	}
}

// Do posts the form and returns the full response body. Every call carries
// the request timeout baked into the HTTP client; a timeout surfaces as an
// ordinary network error.
func (c *Client) Do(ctx context.Context, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(preview)))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return body, nil
}
