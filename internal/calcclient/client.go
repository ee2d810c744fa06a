// Package calcclient calls the external calculation service with an
// assembled payload and maps the positional response back onto the
// payload's target names.
package calcclient

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

	"github.com/iwvelando/valuecalc/internal/assembler"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"go.uber.org/zap"
)

// ErrNoPayload is returned when there is nothing to send, i.e. the
// solution had no parameters.
var ErrNoPayload = errors.New("calcclient: no payload to calculate")

// Results maps target names to computed values.
type Results map[string]float64

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("calculation service returned %d: %s", e.StatusCode, body)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds a single request; zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the default client, e.g. in tests.
	HTTPClient *http.Client
}

// Client posts payloads to <BaseURL>/api/v1/calculate. It does not retry.
type Client struct {
	logger   *zap.Logger
	endpoint string
	http     *http.Client
}

// New constructs a Client.
func New(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = constants.DefaultServiceBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return &Client{
		logger:   logger,
		endpoint: baseURL + constants.CalculatePath,
		http:     httpClient,
	}
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Calculate sends payload and returns the values for its targets.
func (c *Client) Calculate(ctx context.Context, payload *assembler.Payload) (Results, error) {
	if payload == nil {
		return nil, ErrNoPayload
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("calcclient: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("calcclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calcclient: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("calcclient: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	results, err := ParseResults(respBody, payload.Target)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("calculation completed",
		zap.String("op", "calcclient.Calculate"),
		zap.Int("targets", len(payload.Target)),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// Invoke is Calculate for callers that only care whether a result exists:
// every failure is logged and reported as nil.
func (c *Client) Invoke(ctx context.Context, payload *assembler.Payload) Results {
	results, err := c.Calculate(ctx, payload)
	if err != nil {
		c.logger.Error("calculation failed",
			zap.String("op", "calcclient.Invoke"),
			zap.String("endpoint", c.endpoint),
			zap.Error(err),
		)
		return nil
	}
	return results
}
