package parser

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ironplan/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseSuccess(t *testing.T) {
	var gotBody parseRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		sets := 3
		reps := 10
		weight := 50.0
		json.NewEncoder(w).Encode(Result{
			Title:        "Leg Day",
			Category:     "strength",
			MuscleGroups: []string{"quads"},
			Exercises: []domain.Prescription{
				{Name: "Squat", Sets: &sets, Reps: &reps, Weight: &weight, Unit: "kg"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())
	result, err := client.Parse(context.Background(), "3x10 squats at 50kg")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if gotBody.RawText != "3x10 squats at 50kg" {
		t.Errorf("request raw_text = %q", gotBody.RawText)
	}
	if result.Title != "Leg Day" || result.Category != "strength" {
		t.Errorf("result = %+v", result)
	}
	if len(result.Exercises) != 1 || result.Exercises[0].Name != "Squat" {
		t.Fatalf("exercises = %+v", result.Exercises)
	}

	structured := result.Structured()
	if structured.Exercises[0].SetCount() != 3 {
		t.Errorf("SetCount = %d, want 3", structured.Exercises[0].SetCount())
	}
}

func TestParseRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())
	_, err := client.Parse(context.Background(), "squats")
	if !errors.Is(err, ErrParseFailed) {
		t.Errorf("Parse = %v, want ErrParseFailed", err)
	}
}

func TestParseRejectsMissingTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())
	_, err := client.Parse(context.Background(), "squats")
	if !errors.Is(err, ErrParseFailed) {
		t.Errorf("Parse = %v, want ErrParseFailed", err)
	}
}

func TestParseServerUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, testLogger())
	_, err := client.Parse(context.Background(), "squats")
	if !errors.Is(err, ErrParseFailed) {
		t.Errorf("Parse = %v, want ErrParseFailed", err)
	}
}
