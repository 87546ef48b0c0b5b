package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
	"ironplan/internal/metrics"
	"ironplan/internal/repository"
)

// PlannerService is the authoritative side of the day state machine:
//
//	EMPTY → PLANNED → LOCKED → COMPLETED
//
// Every mutation validates the date token and runs the domain guards
// before touching the database, so invalid requests are rejected without a
// write. The original client enforced these rules only in the UI; here
// they hold server-side too.
type PlannerService interface {
	GetRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]domain.PlannedWorkout, error)
	GetByDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error)
	Assign(ctx context.Context, userID, workoutID primitive.ObjectID, date string) (*domain.PlannedWorkout, error)
	SetLocked(ctx context.Context, userID primitive.ObjectID, date string, locked bool) (*domain.PlannedWorkout, error)
	Remove(ctx context.Context, userID primitive.ObjectID, date string) error
	Finish(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error)
}

// plannerService implements the PlannerService interface.
type plannerService struct {
	plannedRepo repository.PlannedWorkoutRepository
	workoutRepo repository.WorkoutRepository
}

// NewPlannerService creates a new instance of plannerService.
func NewPlannerService(plannedRepo repository.PlannedWorkoutRepository, workoutRepo repository.WorkoutRepository) PlannerService {
	return &plannerService{
		plannedRepo: plannedRepo,
		workoutRepo: workoutRepo,
	}
}

// occurrence fetches the row for (userID, date); nil means the day is
// EMPTY.
func (s *plannerService) occurrence(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	pw, err := s.plannedRepo.GetByDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pw, nil
}

// attachWorkout joins the referenced workout template onto the occurrence.
// A dangling reference is tolerated: the occurrence is returned unjoined.
func (s *plannerService) attachWorkout(ctx context.Context, pw *domain.PlannedWorkout) {
	if pw == nil || pw.WorkoutID == primitive.NilObjectID {
		return
	}
	workout, err := s.workoutRepo.GetByID(ctx, pw.WorkoutID)
	if err != nil {
		return
	}
	pw.Workout = workout
}

// GetRange returns all occurrences within the inclusive date range, with
// their workouts joined. Used by the week view.
func (s *plannerService) GetRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]domain.PlannedWorkout, error) {
	if !domain.IsValidDate(start) || !domain.IsValidDate(end) {
		return nil, domain.ErrInvalidDate
	}

	pws, err := s.plannedRepo.GetByDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	for i := range pws {
		s.attachWorkout(ctx, &pws[i])
	}
	return pws, nil
}

// GetByDate returns the occurrence for the date with its workout joined,
// or domain.ErrDayEmpty when nothing is planned.
func (s *plannerService) GetByDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	if !domain.IsValidDate(date) {
		return nil, domain.ErrInvalidDate
	}

	pw, err := s.occurrence(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if pw == nil {
		return nil, domain.ErrDayEmpty
	}
	s.attachWorkout(ctx, pw)
	return pw, nil
}

// Assign upserts a workout onto the date. Replacing an existing plan is
// allowed while the day is unlocked; a locked or completed day rejects the
// assignment before any write.
func (s *plannerService) Assign(ctx context.Context, userID, workoutID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	if !domain.IsValidDate(date) {
		return nil, domain.ErrInvalidDate
	}

	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutNotFound
	}

	existing, err := s.occurrence(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if err := domain.CanAssign(existing); err != nil {
		metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventAssign, metrics.ResultRejected).Inc()
		return nil, err
	}

	pw, err := s.plannedRepo.Upsert(ctx, userID, workoutID, date)
	if err != nil {
		metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventAssign, metrics.ResultError).Inc()
		return nil, err
	}
	metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventAssign, metrics.ResultApplied).Inc()

	pw.Workout = workout
	return pw, nil
}

// SetLocked toggles the lock flag. Locking an empty day fails before any
// write; re-applying the current value is a no-op that still succeeds.
func (s *plannerService) SetLocked(ctx context.Context, userID primitive.ObjectID, date string, locked bool) (*domain.PlannedWorkout, error) {
	event := metrics.EventLock
	if !locked {
		event = metrics.EventUnlock
	}

	if !domain.IsValidDate(date) {
		return nil, domain.ErrInvalidDate
	}

	pw, err := s.occurrence(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if err := domain.CanSetLocked(pw, locked); err != nil {
		metrics.PlannerTransitionsTotal.WithLabelValues(event, metrics.ResultRejected).Inc()
		return nil, err
	}
	if pw == nil {
		// Unlocking an empty day passes the guard, but there is no
		// occurrence to return.
		return nil, domain.ErrDayEmpty
	}

	if err := s.plannedRepo.SetLocked(ctx, userID, date, locked); err != nil {
		metrics.PlannerTransitionsTotal.WithLabelValues(event, metrics.ResultError).Inc()
		return nil, err
	}
	metrics.PlannerTransitionsTotal.WithLabelValues(event, metrics.ResultApplied).Inc()

	pw.IsLocked = locked
	s.attachWorkout(ctx, pw)
	return pw, nil
}

// Remove deletes the occurrence. A locked day must be unlocked first.
func (s *plannerService) Remove(ctx context.Context, userID primitive.ObjectID, date string) error {
	if !domain.IsValidDate(date) {
		return domain.ErrInvalidDate
	}

	pw, err := s.occurrence(ctx, userID, date)
	if err != nil {
		return err
	}
	if err := domain.CanRemove(pw); err != nil {
		metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventRemove, metrics.ResultRejected).Inc()
		return err
	}

	if err := s.plannedRepo.Delete(ctx, userID, date); err != nil {
		metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventRemove, metrics.ResultError).Inc()
		return err
	}
	metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventRemove, metrics.ResultApplied).Inc()
	return nil
}

// Finish transitions the occurrence to COMPLETED, stamping completed_at.
// COMPLETED is terminal: a second finish is rejected.
func (s *plannerService) Finish(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	if !domain.IsValidDate(date) {
		return nil, domain.ErrInvalidDate
	}

	pw, err := s.occurrence(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if err := domain.CanFinish(pw); err != nil {
		metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventFinish, metrics.ResultRejected).Inc()
		return nil, err
	}

	completedAt := time.Now().UTC()
	if err := s.plannedRepo.SetCompleted(ctx, userID, date, completedAt); err != nil {
		metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventFinish, metrics.ResultError).Inc()
		return nil, err
	}
	metrics.PlannerTransitionsTotal.WithLabelValues(metrics.EventFinish, metrics.ResultApplied).Inc()

	pw.IsCompleted = true
	pw.CompletedAt = &completedAt
	s.attachWorkout(ctx, pw)
	return pw, nil
}
