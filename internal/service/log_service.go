package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
	"ironplan/internal/metrics"
	"ironplan/internal/repository"
)

// LogService persists per-set performance for a planned-workout occurrence.
// Every log is addressed by its natural key (occurrence, exercise, set
// number); writing is always an upsert, so repeated saves of the same set
// amend one row.
type LogService interface {
	GetLogs(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.WorkoutLog, error)
	// UpsertLog creates or amends the log row for the entry's natural key.
	// The occurrence is resolved from (userID, date); entry.PlannedWorkoutID
	// is set by the service.
	UpsertLog(ctx context.Context, userID primitive.ObjectID, date string, entry domain.WorkoutLog) (*domain.WorkoutLog, error)
}

// logService implements the LogService interface.
type logService struct {
	plannedRepo repository.PlannedWorkoutRepository
	logRepo     repository.WorkoutLogRepository
}

// NewLogService creates a new instance of logService.
func NewLogService(plannedRepo repository.PlannedWorkoutRepository, logRepo repository.WorkoutLogRepository) LogService {
	return &logService{
		plannedRepo: plannedRepo,
		logRepo:     logRepo,
	}
}

// occurrence fetches the row for (userID, date); domain.ErrDayEmpty when
// nothing is planned.
func (s *logService) occurrence(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	if !domain.IsValidDate(date) {
		return nil, domain.ErrInvalidDate
	}
	pw, err := s.plannedRepo.GetByDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrDayEmpty
		}
		return nil, err
	}
	return pw, nil
}

// GetLogs returns all persisted set logs for the occurrence at the date.
func (s *logService) GetLogs(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.WorkoutLog, error) {
	pw, err := s.occurrence(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return s.logRepo.GetByPlannedWorkoutID(ctx, pw.ID)
}

// UpsertLog writes one set log. A completed occurrence is read-only, so
// late saves after finishing are rejected.
func (s *logService) UpsertLog(ctx context.Context, userID primitive.ObjectID, date string, entry domain.WorkoutLog) (*domain.WorkoutLog, error) {
	pw, err := s.occurrence(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if pw.IsCompleted {
		return nil, domain.ErrDayCompleted
	}

	entry.PlannedWorkoutID = pw.ID
	saved, err := s.logRepo.Upsert(ctx, &entry)
	if err != nil {
		return nil, err
	}
	metrics.WorkoutLogUpsertsTotal.Inc()
	return saved, nil
}
