package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

var ErrParseFailed = errors.New("workout parsing failed")

// Client is an HTTP client for the external parse service. The service is
// a single POST endpoint: raw text in, structured exercise list out. There
// is no retry; a failed parse is surfaced to the caller directly.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
}

// NewClient creates a parse-service client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		logger:     logger,
	}
}

type parseRequest struct {
	RawText string `json:"raw_text"`
}

// Parse sends rawText to the parse service and decodes the structured
// result.
func (c *Client) Parse(ctx context.Context, rawText string) (*Result, error) {
	body, err := json.Marshal(parseRequest{RawText: rawText})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("parse request failed", "error", err, "duration_ms", duration.Milliseconds())
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	defer resp.Body.Close()

	c.logger.Info("parse_workout", "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrParseFailed, resp.StatusCode, string(bodyBytes))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode parse response: %w", err)
	}
	if result.Title == "" {
		return nil, fmt.Errorf("%w: response missing title", ErrParseFailed)
	}

	return &result, nil
}
