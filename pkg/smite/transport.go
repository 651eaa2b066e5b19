package smite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultHTTPTimeout bounds a single API request when the caller supplies
// no http.Client of their own.
const defaultHTTPTimeout = 30 * time.Second

// Transport performs a blocking GET against a fully-formed request URL and
// returns the raw status code and body. The client encodes everything the
// API needs in the URL itself; no headers or request body are used.
// Timeouts and cancellation belong to the Transport, not the client.
type Transport interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// HTTPTransport is the default Transport backed by net/http.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport creates an HTTPTransport with a bounded default client.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		Client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Get issues the request and reads the full response body.
func (t *HTTPTransport) Get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("performing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
