// Package client is the Go API client for the IronPlan server. The planner
// store and execution session sit on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ironplan/internal/api"
	"ironplan/internal/domain"
)

// ErrNotAuthenticated is returned for writes attempted without a session.
// Reads without a session degrade to empty results instead.
var ErrNotAuthenticated = errors.New("not authenticated")

// HTTPError is returned for non-2xx responses the client cannot map to a
// domain error.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the IronPlan HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

// New creates an API client against baseURL (e.g. "http://localhost:8080").
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// errorBody is the server's JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// mapStatusError turns planner error responses back into the domain errors
// the server mapped them from, so callers can branch on the same sentinels
// on both sides of the wire.
func mapStatusError(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		if strings.Contains(message, "date") {
			return domain.ErrInvalidDate
		}
	case http.StatusNotFound:
		if strings.Contains(message, "planned") {
			return domain.ErrDayEmpty
		}
	case http.StatusConflict:
		if strings.Contains(message, "completed") {
			return domain.ErrDayCompleted
		}
		return domain.ErrDayLocked
	}
	return &HTTPError{StatusCode: status, Message: message}
}

// do issues one request and decodes the JSON response into out (out may be
// nil for 204 responses).
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("api request failed", "method", method, "path", path, "error", err, "duration_ms", duration.Milliseconds())
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
			eb.Error = string(raw)
		}
		return mapStatusError(resp.StatusCode, eb.Error)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// --- Auth ---

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) (api.UserResponse, error) {
	var out api.UserResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", api.RegisterRequest{Email: email, Password: password}, &out)
	return out, err
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (api.LoginResponse, error) {
	var out api.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", api.LoginRequest{Email: email, Password: password}, &out)
	if err == nil {
		c.token = out.Token
	}
	return out, err
}

// --- Workout library ---

// CreateWorkout submits free text for parsing into a template.
func (c *Client) CreateWorkout(ctx context.Context, rawText string) (api.WorkoutResponse, error) {
	if c.token == "" {
		return api.WorkoutResponse{}, ErrNotAuthenticated
	}
	var out api.WorkoutResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/workouts", api.CreateWorkoutRequest{RawText: rawText}, &out)
	return out, err
}

// ListWorkouts returns the user's library, newest first. Without a session
// the library reads as empty.
func (c *Client) ListWorkouts(ctx context.Context) ([]api.WorkoutResponse, error) {
	if c.token == "" {
		return nil, nil
	}
	var out []api.WorkoutResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, &out)
	return out, err
}

// DeleteWorkout removes a template from the library.
func (c *Client) DeleteWorkout(ctx context.Context, id string) error {
	if c.token == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, http.MethodDelete, "/api/v1/workouts/"+id, nil, nil)
}

// --- Planner ---

// GetRange returns occurrences in the inclusive date range. Without a
// session every day reads as empty.
func (c *Client) GetRange(ctx context.Context, start, end string) ([]api.PlannedWorkoutResponse, error) {
	if c.token == "" {
		return nil, nil
	}
	var out []api.PlannedWorkoutResponse
	path := fmt.Sprintf("/api/v1/planner?start=%s&end=%s", start, end)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// GetDay returns the occurrence for a date, or domain.ErrDayEmpty.
func (c *Client) GetDay(ctx context.Context, date string) (api.PlannedWorkoutResponse, error) {
	if c.token == "" {
		return api.PlannedWorkoutResponse{}, domain.ErrDayEmpty
	}
	var out api.PlannedWorkoutResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/planner/"+date, nil, &out)
	return out, err
}

// GetToday returns today's occurrence, or domain.ErrDayEmpty.
func (c *Client) GetToday(ctx context.Context) (api.PlannedWorkoutResponse, error) {
	if c.token == "" {
		return api.PlannedWorkoutResponse{}, domain.ErrDayEmpty
	}
	var out api.PlannedWorkoutResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/planner/today", nil, &out)
	return out, err
}

// Assign puts a workout on the date.
func (c *Client) Assign(ctx context.Context, date, workoutID string) (api.PlannedWorkoutResponse, error) {
	if c.token == "" {
		return api.PlannedWorkoutResponse{}, ErrNotAuthenticated
	}
	var out api.PlannedWorkoutResponse
	err := c.do(ctx, http.MethodPut, "/api/v1/planner/"+date, api.AssignWorkoutRequest{WorkoutID: workoutID}, &out)
	return out, err
}

// SetLocked toggles the lock on the date.
func (c *Client) SetLocked(ctx context.Context, date string, locked bool) (api.PlannedWorkoutResponse, error) {
	if c.token == "" {
		return api.PlannedWorkoutResponse{}, ErrNotAuthenticated
	}
	var out api.PlannedWorkoutResponse
	err := c.do(ctx, http.MethodPatch, "/api/v1/planner/"+date+"/lock", api.SetLockedRequest{Locked: &locked}, &out)
	return out, err
}

// Remove clears the date.
func (c *Client) Remove(ctx context.Context, date string) error {
	if c.token == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, http.MethodDelete, "/api/v1/planner/"+date, nil, nil)
}

// Finish marks the date's occurrence completed.
func (c *Client) Finish(ctx context.Context, date string) (api.PlannedWorkoutResponse, error) {
	if c.token == "" {
		return api.PlannedWorkoutResponse{}, ErrNotAuthenticated
	}
	var out api.PlannedWorkoutResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/planner/"+date+"/finish", nil, &out)
	return out, err
}

// --- Logs ---

// GetLogs lists the persisted set logs for the date's occurrence. Without a
// session there are no logs to read.
func (c *Client) GetLogs(ctx context.Context, date string) ([]api.WorkoutLogResponse, error) {
	if c.token == "" {
		return nil, nil
	}
	var out []api.WorkoutLogResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/planner/"+date+"/logs", nil, &out)
	return out, err
}

// UpsertLog creates or amends one set log.
func (c *Client) UpsertLog(ctx context.Context, date string, entry api.UpsertLogRequest) (api.WorkoutLogResponse, error) {
	if c.token == "" {
		return api.WorkoutLogResponse{}, ErrNotAuthenticated
	}
	var out api.WorkoutLogResponse
	err := c.do(ctx, http.MethodPut, "/api/v1/planner/"+date+"/logs", entry, &out)
	return out, err
}

// --- Export ---

// Export requests a data export and returns the download URL.
func (c *Client) Export(ctx context.Context) (string, error) {
	if c.token == "" {
		return "", ErrNotAuthenticated
	}
	var out api.ExportResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/export", nil, &out); err != nil {
		return "", err
	}
	return out.DownloadURL, nil
}
