package parser

import (
	"context"

	"ironplan/internal/domain"
)

// Result is the structured output of the parse service for one free-text
// workout description.
type Result struct {
	Title        string                `json:"title"`
	Category     string                `json:"category,omitempty"`
	MuscleGroups []string              `json:"muscle_groups,omitempty"`
	Duration     *int                  `json:"duration,omitempty"`
	Exercises    []domain.Prescription `json:"exercises"`
}

// Structured converts the parse result into the prescription stored on a
// Workout.
func (r *Result) Structured() *domain.StructuredWorkout {
	return &domain.StructuredWorkout{
		Category:     r.Category,
		MuscleGroups: r.MuscleGroups,
		Duration:     r.Duration,
		Exercises:    r.Exercises,
	}
}

// Service converts free-text workout descriptions into structured exercise
// data. Implemented by Client; faked in tests.
type Service interface {
	Parse(ctx context.Context, rawText string) (*Result, error)
}
