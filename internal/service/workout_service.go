package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
	"ironplan/internal/metrics"
	"ironplan/internal/parser"
	"ironplan/internal/repository"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrValidationFailed = errors.New("workout validation failed")
)

type WorkoutService interface {
	// CreateFromText runs rawText through the parse service and stores the
	// resulting workout template.
	CreateFromText(ctx context.Context, userID primitive.ObjectID, rawText string) (*domain.Workout, error)
	GetWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
	parser      parser.Service
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, parseSvc parser.Service) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		parser:      parseSvc,
	}
}

// CreateFromText parses and stores a new workout template. The structured
// prescription is written once here and never edited afterwards.
func (s *workoutService) CreateFromText(ctx context.Context, userID primitive.ObjectID, rawText string) (*domain.Workout, error) {
	if rawText == "" {
		return nil, ErrValidationFailed
	}
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required to create a workout")
	}

	result, err := s.parser.Parse(ctx, rawText)
	if err != nil {
		metrics.ParseRequestsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}
	metrics.ParseRequestsTotal.WithLabelValues(metrics.ResultApplied).Inc()

	workout := &domain.Workout{
		UserID:     userID,
		Title:      result.Title,
		RawInput:   rawText,
		Structured: result.Structured(),
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID
	return workout, nil
}

// GetWorkouts retrieves the user's workout library, newest first.
func (s *workoutService) GetWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID cannot be nil")
	}
	return s.workoutRepo.GetByUserID(ctx, userID)
}

// DeleteWorkout removes a workout template owned by the user.
func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	if userID == primitive.NilObjectID || workoutID == primitive.NilObjectID {
		return errors.New("user ID and workout ID are required")
	}

	err := s.workoutRepo.Delete(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}
