// Package httpclient is the outbound HTTP client shared by the search and rerank
// integrations. Calls go through a circuit breaker that counts transport errors and
// 5xx responses as failures.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"PerguntaQueRespondo/backend/go/pkg/circuitbreaker"
	"PerguntaQueRespondo/backend/go/pkg/logger"
)

// StatusError is returned for responses with a status code >= 400.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client wraps http.Client with an optional circuit breaker.
type Client struct {
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

// New creates a Client. A nil breaker disables circuit breaking.
func New(timeout time.Duration, breaker *circuitbreaker.Breaker) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

// NewWithBreaker creates a Client guarded by a breaker built from settings. State
// changes are logged. A nil settings disables circuit breaking.
func NewWithBreaker(timeout time.Duration, settings *circuitbreaker.Settings, log *logger.Logger) *Client {
	if settings == nil {
		return New(timeout, nil)
	}
	st := *settings
	st.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.WithFields(map[string]interface{}{
			"upstream": name,
			"from":     from.String(),
			"to":       to.String(),
		}).Warn("circuit breaker state changed")
	}
	st.IsFailure = isFailure
	return New(timeout, circuitbreaker.New(st))
}

// isFailure treats client errors (4xx) and caller cancellation as the caller's fault,
// not the upstream's.
func isFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// Do executes req. Responses with status >= 400 are drained, closed and returned as *StatusError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.do(req)
	}
	return circuitbreaker.Do(c.breaker, func() (*http.Response, error) {
		return c.do(req)
	})
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// PostJSON sends in as JSON to url and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
