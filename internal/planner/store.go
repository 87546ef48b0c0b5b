// Package planner is the client-side week planner state. It keeps one
// week's occurrences in memory, applies mutations optimistically and rolls
// back when the server rejects them.
package planner

import (
	"context"
	"sync"

	"ironplan/internal/api"
	"ironplan/internal/domain"
)

// Remote is the slice of the API the store needs. *client.Client satisfies
// it; tests substitute fakes.
type Remote interface {
	GetRange(ctx context.Context, start, end string) ([]api.PlannedWorkoutResponse, error)
	Assign(ctx context.Context, date, workoutID string) (api.PlannedWorkoutResponse, error)
	SetLocked(ctx context.Context, date string, locked bool) (api.PlannedWorkoutResponse, error)
	Remove(ctx context.Context, date string) error
}

// Store holds the planner's view of one week. All methods are safe for
// concurrent use.
type Store struct {
	remote Remote

	mu           sync.Mutex
	days         map[string]api.PlannedWorkoutResponse // keyed by plannedDate
	weekStart    string
	weekEnd      string
	selectedDate string
}

// NewStore creates an empty store backed by remote.
func NewStore(remote Remote) *Store {
	return &Store{
		remote: remote,
		days:   make(map[string]api.PlannedWorkoutResponse),
	}
}

// occurrenceOf adapts the wire DTO to the domain shape the state-machine
// guards understand. A missing day maps to nil, i.e. EMPTY.
func occurrenceOf(day *api.PlannedWorkoutResponse) *domain.PlannedWorkout {
	if day == nil {
		return nil
	}
	return &domain.PlannedWorkout{
		PlannedDate: day.PlannedDate,
		IsLocked:    day.IsLocked,
		IsCompleted: day.IsCompleted,
	}
}

// LoadWeek fetches the Monday–Sunday week containing ref and replaces the
// store's contents with it. The selection moves to ref unless the currently
// selected date is still inside the new week.
func (s *Store) LoadWeek(ctx context.Context, ref string) error {
	start, end, err := domain.WeekBounds(ref)
	if err != nil {
		return err
	}

	fetched, err := s.remote.GetRange(ctx, start, end)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.weekStart = start
	s.weekEnd = end
	s.days = make(map[string]api.PlannedWorkoutResponse, len(fetched))
	for _, day := range fetched {
		s.days[day.PlannedDate] = day
	}
	if s.selectedDate < start || s.selectedDate > end {
		s.selectedDate = ref
	}
	return nil
}

// WeekDates returns the seven dates of the loaded week in order. It returns
// nil before the first LoadWeek.
func (s *Store) WeekDates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.weekStart == "" {
		return nil
	}
	dates := make([]string, 0, 7)
	for d := s.weekStart; d <= s.weekEnd; d = domain.NextDate(d) {
		dates = append(dates, d)
	}
	return dates
}

// SelectDate moves the selection highlight.
func (s *Store) SelectDate(date string) error {
	if !domain.IsValidDate(date) {
		return domain.ErrInvalidDate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedDate = date
	return nil
}

// SelectedDate returns the currently selected date.
func (s *Store) SelectedDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedDate
}

// Day returns the occurrence for date, if the loaded week has one.
func (s *Store) Day(date string) (api.PlannedWorkoutResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.days[date]
	return day, ok
}

// StateOf reports the day's position in the EMPTY→PLANNED→LOCKED→COMPLETED
// progression.
func (s *Store) StateOf(date string) domain.DayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(date)
}

func (s *Store) stateLocked(date string) domain.DayState {
	if day, ok := s.days[date]; ok {
		return domain.StateOf(occurrenceOf(&day))
	}
	return domain.DayEmpty
}

func (s *Store) dayPtr(date string) *api.PlannedWorkoutResponse {
	if day, ok := s.days[date]; ok {
		return &day
	}
	return nil
}

// Assign puts workout on the date. Locked and completed days reject the
// assignment before any network traffic. The day flips to PLANNED
// immediately; a server rejection restores the previous value.
func (s *Store) Assign(ctx context.Context, date string, workout api.WorkoutResponse) error {
	if !domain.IsValidDate(date) {
		return domain.ErrInvalidDate
	}

	s.mu.Lock()
	if err := domain.CanAssign(occurrenceOf(s.dayPtr(date))); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	optimistic := api.PlannedWorkoutResponse{
		WorkoutID:   workout.ID,
		PlannedDate: date,
		State:       domain.DayPlanned,
		Workout:     &workout,
	}
	return s.mutate(ctx, date, &optimistic, func(ctx context.Context) (*api.PlannedWorkoutResponse, error) {
		day, err := s.remote.Assign(ctx, date, workout.ID)
		if err != nil {
			return nil, err
		}
		return &day, nil
	})
}

// SetLocked toggles the lock flag. Locking an empty day fails fast with
// ErrDayEmpty; completed days reject either direction.
func (s *Store) SetLocked(ctx context.Context, date string, locked bool) error {
	if !domain.IsValidDate(date) {
		return domain.ErrInvalidDate
	}

	s.mu.Lock()
	current := s.dayPtr(date)
	if err := domain.CanSetLocked(occurrenceOf(current), locked); err != nil {
		s.mu.Unlock()
		return err
	}
	if current == nil {
		// Unlocking an empty day is a no-op.
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	optimistic := *current
	optimistic.IsLocked = locked
	if locked {
		optimistic.State = domain.DayLocked
	} else {
		optimistic.State = domain.DayPlanned
	}
	return s.mutate(ctx, date, &optimistic, func(ctx context.Context) (*api.PlannedWorkoutResponse, error) {
		day, err := s.remote.SetLocked(ctx, date, locked)
		if err != nil {
			return nil, err
		}
		return &day, nil
	})
}

// Remove clears the date. Locked days must be unlocked first; completed
// days never clear.
func (s *Store) Remove(ctx context.Context, date string) error {
	if !domain.IsValidDate(date) {
		return domain.ErrInvalidDate
	}

	s.mu.Lock()
	if err := domain.CanRemove(occurrenceOf(s.dayPtr(date))); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	return s.mutate(ctx, date, nil, func(ctx context.Context) (*api.PlannedWorkoutResponse, error) {
		return nil, s.remote.Remove(ctx, date)
	})
}

// CanLockTomorrow reports whether the lock-tomorrow shortcut applies:
// tomorrow has a planned, unlocked, uncompleted workout.
func (s *Store) CanLockTomorrow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(domain.Tomorrow()) == domain.DayPlanned
}

// LockTomorrow toggles the lock on tomorrow's workout; shorthand for
// SetLocked on today+1.
func (s *Store) LockTomorrow(ctx context.Context, locked bool) error {
	return s.SetLocked(ctx, domain.Tomorrow(), locked)
}
