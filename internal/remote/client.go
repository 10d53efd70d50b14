package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httpclient"
)

const maxBodyBytes = 4 << 20

// TokenSource yields the bearer token attached to every request. An empty
// token sends the request unauthenticated.
type TokenSource interface {
	Load(ctx context.Context) (string, error)
}

// Client implements Requester over HTTP.
type Client struct {
	baseURL string
	doer    httpclient.Doer
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTokenSource attaches bearer tokens from src.
func WithTokenSource(src TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = src
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, doer httpclient.Doer, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request sends one request and returns the remote answer whatever its status.
func (c *Client) Request(ctx context.Context, method, path string, body any, params url.Values) (*Response, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.TransportCause(fmt.Errorf("rate limit: %w", err))
		}
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			c.logger.DebugContext(ctx, "remote request answered",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", statusErr.StatusCode),
			)
			return &Response{Status: statusErr.StatusCode, Data: statusErr.Body}, nil
		}
		if errors.Is(err, httpclient.ErrCircuitOpen) || errors.Is(err, httpclient.ErrTooManyRequests) {
			return nil, apperrors.Transport(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return nil, apperrors.TransportCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.TransportCause(fmt.Errorf("read response body: %w", err))
	}

	c.logger.DebugContext(ctx, "remote request answered",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return &Response{Status: resp.StatusCode, Data: data}, nil
}
