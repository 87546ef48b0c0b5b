package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
	"ironplan/internal/repository"
)

// fakePlannedRepo keeps occurrences keyed by date for a single user.
type fakePlannedRepo struct {
	days map[string]*domain.PlannedWorkout

	upserts   int
	lockCalls int
	deletes   int
	completes int

	failWith error
}

func newFakePlannedRepo() *fakePlannedRepo {
	return &fakePlannedRepo{days: make(map[string]*domain.PlannedWorkout)}
}

func (f *fakePlannedRepo) GetByDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	if pw, ok := f.days[date]; ok {
		copied := *pw
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlannedRepo) GetByDateRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]domain.PlannedWorkout, error) {
	var out []domain.PlannedWorkout
	for date, pw := range f.days {
		if date >= start && date <= end {
			out = append(out, *pw)
		}
	}
	return out, nil
}

func (f *fakePlannedRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.PlannedWorkout, error) {
	var out []domain.PlannedWorkout
	for _, pw := range f.days {
		out = append(out, *pw)
	}
	return out, nil
}

func (f *fakePlannedRepo) Upsert(ctx context.Context, userID, workoutID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	f.upserts++
	if f.failWith != nil {
		return nil, f.failWith
	}
	pw := &domain.PlannedWorkout{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkoutID:   workoutID,
		PlannedDate: date,
	}
	f.days[date] = pw
	copied := *pw
	return &copied, nil
}

func (f *fakePlannedRepo) SetLocked(ctx context.Context, userID primitive.ObjectID, date string, locked bool) error {
	f.lockCalls++
	if f.failWith != nil {
		return f.failWith
	}
	f.days[date].IsLocked = locked
	return nil
}

func (f *fakePlannedRepo) SetCompleted(ctx context.Context, userID primitive.ObjectID, date string, completedAt time.Time) error {
	f.completes++
	if f.failWith != nil {
		return f.failWith
	}
	f.days[date].IsCompleted = true
	f.days[date].CompletedAt = &completedAt
	return nil
}

func (f *fakePlannedRepo) Delete(ctx context.Context, userID primitive.ObjectID, date string) error {
	f.deletes++
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.days, date)
	return nil
}

// fakeWorkoutRepo serves a fixed set of workout templates.
type fakeWorkoutRepo struct {
	workouts map[primitive.ObjectID]*domain.Workout
}

func newFakeWorkoutRepo(workouts ...*domain.Workout) *fakeWorkoutRepo {
	f := &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]*domain.Workout)}
	for _, w := range workouts {
		f.workouts[w.ID] = w
	}
	return f
}

func (f *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	workout.ID = id
	f.workouts[id] = workout
	return id, nil
}

func (f *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	if w, ok := f.workouts[id]; ok {
		copied := *w
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeWorkoutRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range f.workouts {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkoutRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	w, ok := f.workouts[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.workouts, id)
	return nil
}

const testDate = "2024-06-13"

func plannerFixture(t *testing.T) (PlannerService, *fakePlannedRepo, *fakeWorkoutRepo, primitive.ObjectID, *domain.Workout) {
	t.Helper()
	userID := primitive.NewObjectID()
	workout := &domain.Workout{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Title:  "Leg Day",
	}
	plannedRepo := newFakePlannedRepo()
	workoutRepo := newFakeWorkoutRepo(workout)
	svc := NewPlannerService(plannedRepo, workoutRepo)
	return svc, plannedRepo, workoutRepo, userID, workout
}

func TestAssignCreatesOccurrence(t *testing.T) {
	svc, _, _, userID, workout := plannerFixture(t)

	pw, err := svc.Assign(context.Background(), userID, workout.ID, testDate)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if pw.PlannedDate != testDate || pw.WorkoutID != workout.ID {
		t.Errorf("occurrence = %+v", pw)
	}
	if pw.Workout == nil || pw.Workout.Title != "Leg Day" {
		t.Error("assigned occurrence should carry the joined workout")
	}
}

func TestAssignReplacesExistingPlan(t *testing.T) {
	svc, plannedRepo, workoutRepo, userID, workout := plannerFixture(t)

	other := &domain.Workout{ID: primitive.NewObjectID(), UserID: userID, Title: "Push Day"}
	workoutRepo.workouts[other.ID] = other

	if _, err := svc.Assign(context.Background(), userID, workout.ID, testDate); err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	if _, err := svc.Assign(context.Background(), userID, other.ID, testDate); err != nil {
		t.Fatalf("replacing Assign: %v", err)
	}

	if got := plannedRepo.days[testDate].WorkoutID; got != other.ID {
		t.Errorf("stored workoutID = %s, want replacement %s", got.Hex(), other.ID.Hex())
	}
	if len(plannedRepo.days) != 1 {
		t.Errorf("%d occurrences stored, replacement must not duplicate", len(plannedRepo.days))
	}
}

func TestAssignGuardsFireBeforeWrite(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.PlannedWorkout)
		wantErr error
	}{
		{"locked day", func(pw *domain.PlannedWorkout) { pw.IsLocked = true }, domain.ErrDayLocked},
		{"completed day", func(pw *domain.PlannedWorkout) { pw.IsCompleted = true }, domain.ErrDayCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, plannedRepo, _, userID, workout := plannerFixture(t)
			if _, err := svc.Assign(context.Background(), userID, workout.ID, testDate); err != nil {
				t.Fatalf("setup Assign: %v", err)
			}
			tt.mutate(plannedRepo.days[testDate])
			writesBefore := plannedRepo.upserts

			_, err := svc.Assign(context.Background(), userID, workout.ID, testDate)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Assign = %v, want %v", err, tt.wantErr)
			}
			if plannedRepo.upserts != writesBefore {
				t.Error("rejected assign must not write")
			}
		})
	}
}

func TestAssignRejectsForeignWorkout(t *testing.T) {
	svc, _, workoutRepo, userID, _ := plannerFixture(t)

	foreign := &domain.Workout{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Title: "Not Yours"}
	workoutRepo.workouts[foreign.ID] = foreign

	_, err := svc.Assign(context.Background(), userID, foreign.ID, testDate)
	if !errors.Is(err, ErrWorkoutNotFound) {
		t.Errorf("Assign with foreign workout = %v, want ErrWorkoutNotFound", err)
	}
}

func TestSetLockedLifecycle(t *testing.T) {
	svc, plannedRepo, _, userID, workout := plannerFixture(t)
	ctx := context.Background()

	if _, err := svc.SetLocked(ctx, userID, testDate, true); !errors.Is(err, domain.ErrDayEmpty) {
		t.Fatalf("locking empty day = %v, want ErrDayEmpty", err)
	}
	if _, err := svc.SetLocked(ctx, userID, testDate, false); !errors.Is(err, domain.ErrDayEmpty) {
		t.Fatalf("unlocking empty day = %v, want ErrDayEmpty", err)
	}
	if plannedRepo.lockCalls != 0 {
		t.Fatal("empty day must not reach the repository")
	}

	if _, err := svc.Assign(ctx, userID, workout.ID, testDate); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	pw, err := svc.SetLocked(ctx, userID, testDate, true)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !pw.IsLocked {
		t.Error("occurrence should report locked")
	}

	pw, err = svc.SetLocked(ctx, userID, testDate, false)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if pw.IsLocked {
		t.Error("occurrence should report unlocked")
	}
}

func TestRemoveRequiresUnlockedPlan(t *testing.T) {
	svc, plannedRepo, _, userID, workout := plannerFixture(t)
	ctx := context.Background()

	if err := svc.Remove(ctx, userID, testDate); !errors.Is(err, domain.ErrDayEmpty) {
		t.Fatalf("removing empty day = %v, want ErrDayEmpty", err)
	}

	if _, err := svc.Assign(ctx, userID, workout.ID, testDate); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := svc.SetLocked(ctx, userID, testDate, true); err != nil {
		t.Fatalf("lock: %v", err)
	}

	if err := svc.Remove(ctx, userID, testDate); !errors.Is(err, domain.ErrDayLocked) {
		t.Fatalf("removing locked day = %v, want ErrDayLocked", err)
	}
	if plannedRepo.deletes != 0 {
		t.Fatal("rejected remove must not delete")
	}

	if _, err := svc.SetLocked(ctx, userID, testDate, false); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := svc.Remove(ctx, userID, testDate); err != nil {
		t.Fatalf("Remove after unlock: %v", err)
	}
	if _, ok := plannedRepo.days[testDate]; ok {
		t.Error("occurrence should be gone")
	}
}

func TestFinishStampsCompletionAndIsTerminal(t *testing.T) {
	svc, plannedRepo, _, userID, workout := plannerFixture(t)
	ctx := context.Background()

	if _, err := svc.Finish(ctx, userID, testDate); !errors.Is(err, domain.ErrDayEmpty) {
		t.Fatalf("finishing empty day = %v, want ErrDayEmpty", err)
	}

	if _, err := svc.Assign(ctx, userID, workout.ID, testDate); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := svc.SetLocked(ctx, userID, testDate, true); err != nil {
		t.Fatalf("lock: %v", err)
	}

	before := time.Now().UTC()
	pw, err := svc.Finish(ctx, userID, testDate)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !pw.IsCompleted || pw.CompletedAt == nil {
		t.Fatalf("occurrence = %+v, want completed with timestamp", pw)
	}
	if pw.CompletedAt.Before(before) || pw.CompletedAt.After(time.Now().UTC()) {
		t.Errorf("completedAt = %v, outside call window", pw.CompletedAt)
	}

	if _, err := svc.Finish(ctx, userID, testDate); !errors.Is(err, domain.ErrDayCompleted) {
		t.Errorf("second Finish = %v, want ErrDayCompleted", err)
	}
	if plannedRepo.completes != 1 {
		t.Errorf("completes = %d, want 1", plannedRepo.completes)
	}
}

func TestCompletedDayIsFrozen(t *testing.T) {
	svc, _, _, userID, workout := plannerFixture(t)
	ctx := context.Background()

	if _, err := svc.Assign(ctx, userID, workout.ID, testDate); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := svc.Finish(ctx, userID, testDate); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if _, err := svc.Assign(ctx, userID, workout.ID, testDate); !errors.Is(err, domain.ErrDayCompleted) {
		t.Errorf("Assign = %v, want ErrDayCompleted", err)
	}
	if _, err := svc.SetLocked(ctx, userID, testDate, true); !errors.Is(err, domain.ErrDayCompleted) {
		t.Errorf("SetLocked = %v, want ErrDayCompleted", err)
	}
	if err := svc.Remove(ctx, userID, testDate); !errors.Is(err, domain.ErrDayCompleted) {
		t.Errorf("Remove = %v, want ErrDayCompleted", err)
	}
}

func TestGetByDate(t *testing.T) {
	svc, _, _, userID, workout := plannerFixture(t)
	ctx := context.Background()

	if _, err := svc.GetByDate(ctx, userID, testDate); !errors.Is(err, domain.ErrDayEmpty) {
		t.Fatalf("GetByDate on empty day = %v, want ErrDayEmpty", err)
	}
	if _, err := svc.GetByDate(ctx, userID, "junk"); !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("GetByDate with bad date = %v, want ErrInvalidDate", err)
	}

	if _, err := svc.Assign(ctx, userID, workout.ID, testDate); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	pw, err := svc.GetByDate(ctx, userID, testDate)
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if pw.Workout == nil || pw.Workout.Title != "Leg Day" {
		t.Error("GetByDate should join the workout template")
	}
}

func TestInvalidDateRejectedBeforeAnyCall(t *testing.T) {
	svc, plannedRepo, _, userID, workout := plannerFixture(t)
	ctx := context.Background()

	if _, err := svc.Assign(ctx, userID, workout.ID, "2024-6-13"); !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("Assign = %v, want ErrInvalidDate", err)
	}
	if _, err := svc.SetLocked(ctx, userID, "junk", true); !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("SetLocked = %v, want ErrInvalidDate", err)
	}
	if err := svc.Remove(ctx, userID, "junk"); !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("Remove = %v, want ErrInvalidDate", err)
	}
	if _, err := svc.Finish(ctx, userID, "junk"); !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("Finish = %v, want ErrInvalidDate", err)
	}
	if _, err := svc.GetRange(ctx, userID, "junk", testDate); !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("GetRange = %v, want ErrInvalidDate", err)
	}

	if plannedRepo.upserts+plannedRepo.lockCalls+plannedRepo.deletes+plannedRepo.completes != 0 {
		t.Error("invalid dates must be rejected before any repository write")
	}
}
