package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/taxonscope/pkg/httputil"
	"github.com/matzehuels/taxonscope/pkg/observability"
)

// Client provides shared HTTP functionality for the GBIF API clients.
// It handles retry policy, common request headers, status mapping and
// request instrumentation. Memoization is the caller's concern (see
// [cache.Memo]); a Client never caches responses itself.
//
// [cache.Memo]: github.com/matzehuels/taxonscope/pkg/cache.Memo
type Client struct {
	http    *http.Client
	retry   httputil.Policy
	headers map[string]string
}

// NewClient creates a Client with the given request timeout, retry policy and
// default headers. Headers are applied to all requests made through this
// client. Pass nil for headers if no default headers are needed.
func NewClient(timeout time.Duration, retry httputil.Policy, headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(timeout),
		retry:   retry,
		headers: headers,
	}
}

// Get performs an HTTP GET of rawURL with query parameters appended and
// JSON-decodes the response into v. Transient failures are retried according
// to the client's policy; a 404 is returned as [ErrNotFound] immediately.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values, v any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vals := range query {
			for _, val := range vals {
				q.Add(k, val)
			}
		}
		u.RawQuery = q.Encode()
	}

	return c.retry.Do(ctx, func() error {
		body, err := c.doRequest(ctx, u)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrMalformed, u.Path, err)
		}
		return nil
	})
}

func (c *Client) doRequest(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return httputil.Retryable(fmt.Errorf("%w: %w", ErrNetwork, ErrRateLimited))
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
