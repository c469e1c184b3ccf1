// Package httpclient is the thin request wrapper every backend call goes
// through. It injects the bearer token, speaks JSON both ways, and rewrites
// failures into the normalized error taxonomy.
package httpclient

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

	"github.com/sony/gobreaker"

	"github.com/AlokMahapatra26/lastmile-client/pkg/common"
)

// TokenSource supplies the current bearer token, or "" when unauthenticated.
type TokenSource func() string

// Config holds client construction options.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	BreakerEnabled bool
}

// Client is a generic JSON API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a client for the given base URL. token may be nil for
// unauthenticated use.
func NewClient(cfg Config, token TokenSource) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
	}

	if cfg.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "lastmile-api",
			Interval: time.Minute,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}

	return c
}

// Get issues a GET and decodes the response into out (may be nil).
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.send(req)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return common.NewNetworkError("service temporarily unavailable", err)
		}
		return common.NewNetworkError("request could not complete", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.NewNetworkError("response could not be read", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.remoteError(resp.StatusCode, payload)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return common.NewRemoteError(resp.StatusCode, "malformed response from server", err)
		}
	}
	return nil
}

// send runs the request through the circuit breaker when one is configured.
// Only transport failures count against the breaker; a served error status is
// the backend working.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) remoteError(status int, payload []byte) error {
	message := "request failed"
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			message = body.Error
		} else if body.Message != "" {
			message = body.Message
		}
	}

	if status == http.StatusConflict {
		return common.NewConflictError(message, nil)
	}
	return common.NewRemoteError(status, message, nil)
}
