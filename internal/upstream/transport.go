package upstream

import (
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://odds.example.net"
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 8 << 20
)

// DefaultUserAgent is used when no user agent is configured. The same value
// must flow into both the transport header and the login payload; the server
// cross-checks them.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func resolveHTTPClient(client *http.Client) httpDoer {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		raw = defaultBaseURL
	}
	return strings.TrimSuffix(raw, "/")
}

func resolveUserAgent(ua string) string {
	if ua == "" {
		return DefaultUserAgent
	}
	return ua
}
