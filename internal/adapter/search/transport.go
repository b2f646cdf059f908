package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"searchtool/internal/infra/config"
)

// maxResponseBody is the default cap on how much of a provider response is read.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// Default connection pool settings: a single provider host, bursts of
// parallel web and news lookups from one agent.
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// NewHTTPClient creates the pooled *http.Client used for provider calls.
// The client timeout bounds a single attempt.
func NewHTTPClient(cfg config.SearchConfig) *http.Client {
	maxIdle := cfg.Pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	maxIdlePerHost := cfg.Pool.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = defaultMaxIdleConnsPerHost
	}
	idleTimeout := cfg.Pool.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleConnTimeout
	}

	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        maxIdle,
			MaxIdleConnsPerHost: maxIdlePerHost,
			IdleConnTimeout:     idleTimeout,
			ForceAttemptHTTP2:   true,
		},
		Timeout: cfg.Timeout,
	}
}

// providerResponse is one HTTP exchange with the provider. Truncated is set
// when the body was longer than the read limit and was cut off.
type providerResponse struct {
	status    int
	body      []byte
	truncated bool
}

// postJSON sends body to url with the provider headers. A non-nil error
// means no complete response was obtained; any HTTP status is returned
// with at most limit bytes of its body.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, body []byte, limit int64) (providerResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return providerResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return providerResponse{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	// One extra byte tells a body of exactly limit bytes from a longer one.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return providerResponse{}, fmt.Errorf("read response: %w", err)
	}
	out := providerResponse{status: resp.StatusCode, body: respBody}
	if int64(len(respBody)) > limit {
		out.body = respBody[:limit]
		out.truncated = true
	}
	return out, nil
}
