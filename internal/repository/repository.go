package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors from service errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// WorkoutRepository defines the interface for interacting with workout
// templates. Every operation is scoped to the owning user.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) // newest first
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// PlannedWorkoutRepository defines the interface for planned-workout
// occurrences. (userID, date) is the natural key: Upsert replaces any
// existing occurrence for the date, and the other mutations address the
// occurrence by date, never by surrogate ID.
type PlannedWorkoutRepository interface {
	GetByDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error)
	GetByDateRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]domain.PlannedWorkout, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.PlannedWorkout, error)
	// Upsert assigns workoutID to the date, resetting the lock and
	// completion flags as a fresh assignment does.
	Upsert(ctx context.Context, userID, workoutID primitive.ObjectID, date string) (*domain.PlannedWorkout, error)
	SetLocked(ctx context.Context, userID primitive.ObjectID, date string, locked bool) error
	SetCompleted(ctx context.Context, userID primitive.ObjectID, date string, completedAt time.Time) error
	Delete(ctx context.Context, userID primitive.ObjectID, date string) error
}

// WorkoutLogRepository defines the interface for per-set logs.
// (plannedWorkoutID, exerciseName, setNumber) is the natural key; Upsert on
// it is the only write path, so a log row is created or amended but never
// duplicated.
type WorkoutLogRepository interface {
	GetByPlannedWorkoutID(ctx context.Context, plannedWorkoutID primitive.ObjectID) ([]domain.WorkoutLog, error) // ordered by set number
	Upsert(ctx context.Context, log *domain.WorkoutLog) (*domain.WorkoutLog, error)
}
