package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/imamik/provisor/internal/metrics"
)

// Executor sends a single REST request and returns a normalized response
// or a classified failure. Implementations must be safe for concurrent use.
type Executor interface {
	Execute(ctx context.Context, cred Credential, req Request) (*Response, error)
}

// DefaultRequestTimeout bounds a single attempt when no override is given.
const DefaultRequestTimeout = 30 * time.Second

// Client is the HTTP-backed Executor.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client (tests, custom transports).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates an Executor backed by net/http.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{},
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute sends the request with bearer authentication and classifies the
// outcome. The response is returned only for 2xx statuses; every other
// outcome is an *Error.
func (c *Client) Execute(ctx context.Context, cred Credential, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := buildHTTPRequest(ctx, cred, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.transportFailure(ctx, req, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.transportFailure(ctx, req, err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Raw: raw}
	if len(raw) > 0 {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err == nil {
			resp.Body = body
		}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := classifyStatus(resp, httpResp.Header)
		metrics.ObserveRequest(req.Method, string(apiErr.Kind))
		return nil, apiErr
	}

	metrics.ObserveRequest(req.Method, "success")
	return resp, nil
}

func buildHTTPRequest(ctx context.Context, cred Credential, req Request) (*http.Request, error) {
	target := strings.TrimRight(cred.Host(), "/") + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	// Construction failures are deterministic; classify them as permanent so
	// they are never retried.
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf("failed to build request: %v", err)}
	}

	httpReq.Header.Set("Authorization", cred.authorization())
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

// transportFailure classifies a connection-level failure. Caller-initiated
// cancellation is passed through untouched so it is never retried.
func (c *Client) transportFailure(ctx context.Context, req Request, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request cancelled: %w", context.Canceled)
	}

	apiErr := &Error{Kind: KindNetwork, Message: err.Error()}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		apiErr = &Error{Kind: KindTimeout, Message: "request deadline exceeded after " + c.timeout.String()}
	}

	metrics.ObserveRequest(req.Method, string(apiErr.Kind))
	return apiErr
}
