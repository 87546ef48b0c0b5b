// Package execution drives a single workout session: the per-set log grid,
// field edits with save-on-blur, set completion toggles, the rest timer and
// the finish transition.
package execution

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"ironplan/internal/api"
	"ironplan/internal/domain"
)

var (
	// ErrConfirmationRequired is returned by Finish when no set has been
	// completed and the caller did not confirm finishing anyway.
	ErrConfirmationRequired = errors.New("no sets completed, confirmation required to finish")

	ErrNotLoaded = errors.New("session not loaded")
)

// Remote is the slice of the API the session needs. *client.Client
// satisfies it; tests substitute fakes.
type Remote interface {
	GetDay(ctx context.Context, date string) (api.PlannedWorkoutResponse, error)
	GetLogs(ctx context.Context, date string) ([]api.WorkoutLogResponse, error)
	UpsertLog(ctx context.Context, date string, entry api.UpsertLogRequest) (api.WorkoutLogResponse, error)
	Finish(ctx context.Context, date string) (api.PlannedWorkoutResponse, error)
}

// EntryKey identifies one set row: exercise name plus 1-based set number.
type EntryKey struct {
	Exercise string
	Set      int
}

// Entry is one editable set row. Reps and Weight hold the raw field text;
// parsing happens at save time. SaveErr is per-row: one failed save never
// blocks edits to other rows.
type Entry struct {
	Key       EntryKey
	Reps      string
	Weight    string
	Completed bool
	Saving    bool
	SaveErr   error
}

// Session is the in-memory state of one workout execution. All methods are
// safe for concurrent use.
type Session struct {
	remote Remote
	date   string

	mu      sync.Mutex
	day     api.PlannedWorkoutResponse
	loaded  bool
	order   []EntryKey
	entries map[EntryKey]*Entry
}

// NewSession creates a session for the given date. Call Load before
// anything else.
func NewSession(remote Remote, date string) (*Session, error) {
	if !domain.IsValidDate(date) {
		return nil, domain.ErrInvalidDate
	}
	return &Session{
		remote:  remote,
		date:    date,
		entries: make(map[EntryKey]*Entry),
	}, nil
}

// Load fetches the day's occurrence and its logs, then materializes one
// entry per prescribed set. Field defaults come from the saved log when one
// exists, from the prescription otherwise; a set counts as completed only
// if its log says so.
func (s *Session) Load(ctx context.Context) error {
	day, err := s.remote.GetDay(ctx, s.date)
	if err != nil {
		return err
	}
	logs, err := s.remote.GetLogs(ctx, s.date)
	if err != nil {
		return err
	}

	saved := make(map[EntryKey]api.WorkoutLogResponse, len(logs))
	for _, l := range logs {
		saved[EntryKey{Exercise: l.ExerciseName, Set: l.SetNumber}] = l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = day
	s.loaded = true
	s.order = s.order[:0]
	s.entries = make(map[EntryKey]*Entry)

	if day.Workout == nil || day.Workout.Structured == nil {
		return nil
	}
	for _, p := range day.Workout.Structured.Exercises {
		for set := 1; set <= p.SetCount(); set++ {
			key := EntryKey{Exercise: p.Name, Set: set}
			entry := &Entry{
				Key:    key,
				Reps:   intText(p.Reps),
				Weight: floatText(p.Weight),
			}
			if l, ok := saved[key]; ok {
				entry.Reps = intText(l.RepsCompleted)
				entry.Weight = floatText(l.Weight)
				entry.Completed = l.Completed
			}
			s.entries[key] = entry
			s.order = append(s.order, key)
		}
	}
	return nil
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatText(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Day returns the loaded occurrence.
func (s *Session) Day() api.PlannedWorkoutResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day
}

// Entries returns the set rows in prescription order.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.entries[key])
	}
	return out
}

// Entry returns one set row.
func (s *Session) Entry(key EntryKey) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// CompletedCount returns the number of sets currently marked done.
func (s *Session) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.Completed {
			n++
		}
	}
	return n
}

// EditReps updates the reps field text locally. Nothing is persisted until
// SaveEntry or ToggleSet.
func (s *Session) EditReps(key EntryKey, text string) error {
	return s.edit(key, func(e *Entry) { e.Reps = text })
}

// EditWeight updates the weight field text locally.
func (s *Session) EditWeight(key EntryKey, text string) error {
	return s.edit(key, func(e *Entry) { e.Weight = text })
}

func (s *Session) edit(key EntryKey, apply func(*Entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("unknown set %s #%d", key.Exercise, key.Set)
	}
	apply(e)
	return nil
}

// parseEntry converts field text to the wire values. Text that is empty or
// does not parse as a number saves as an absent value, never zero.
func parseEntry(e *Entry) (reps *int, weight *float64) {
	if n, err := strconv.Atoi(e.Reps); err == nil {
		reps = &n
	}
	if f, err := strconv.ParseFloat(e.Weight, 64); err == nil {
		weight = &f
	}
	return reps, weight
}

// SaveEntry persists one row's current field values; this is the blur
// handler for the reps and weight fields. A network failure lands in the
// row's SaveErr and leaves the field text for the user to fix.
func (s *Session) SaveEntry(ctx context.Context, key EntryKey) error {
	return s.persist(ctx, key, nil)
}

// ToggleSet flips the row's completed flag and persists immediately.
// Unchecking persists completed=false rather than deleting the log, so the
// entered values survive.
func (s *Session) ToggleSet(ctx context.Context, key EntryKey) error {
	return s.persist(ctx, key, func(completed bool) bool { return !completed })
}

// persist writes one row to the server. flip, when non-nil, transforms the
// completed flag before saving.
func (s *Session) persist(ctx context.Context, key EntryKey, flip func(bool) bool) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.day.IsCompleted {
		s.mu.Unlock()
		return domain.ErrDayCompleted
	}
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown set %s #%d", key.Exercise, key.Set)
	}

	reps, weight := parseEntry(e)
	completed := e.Completed
	if flip != nil {
		completed = flip(completed)
		e.Completed = completed
	}
	e.Saving = true
	e.SaveErr = nil
	req := api.UpsertLogRequest{
		ExerciseName:  key.Exercise,
		SetNumber:     key.Set,
		RepsCompleted: reps,
		Weight:        weight,
		Completed:     completed,
	}
	s.mu.Unlock()

	saved, err := s.remote.UpsertLog(ctx, s.date, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.Saving = false
	if err != nil {
		e.SaveErr = err
		if flip != nil {
			e.Completed = !completed
		}
		return err
	}
	e.Reps = intText(saved.RepsCompleted)
	e.Weight = floatText(saved.Weight)
	e.Completed = saved.Completed
	return nil
}

// Finish transitions the day to COMPLETED. When no set has been completed
// the caller must pass confirmed=true, mirroring the "finish anyway?"
// prompt.
func (s *Session) Finish(ctx context.Context, confirmed bool) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.day.IsCompleted {
		s.mu.Unlock()
		return domain.ErrDayCompleted
	}
	completedAny := false
	for _, e := range s.entries {
		if e.Completed {
			completedAny = true
			break
		}
	}
	s.mu.Unlock()

	if !completedAny && !confirmed {
		return ErrConfirmationRequired
	}

	day, err := s.remote.Finish(ctx, s.date)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = day
	return nil
}
