package service

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
)

type logKey struct {
	exercise string
	set      int
}

// fakeLogRepo upserts on the (exercise, set) natural key like the mongo
// implementation does.
type fakeLogRepo struct {
	logs map[logKey]*domain.WorkoutLog
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[logKey]*domain.WorkoutLog)}
}

func (f *fakeLogRepo) GetByPlannedWorkoutID(ctx context.Context, plannedWorkoutID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	var out []domain.WorkoutLog
	for _, l := range f.logs {
		if l.PlannedWorkoutID == plannedWorkoutID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) Upsert(ctx context.Context, log *domain.WorkoutLog) (*domain.WorkoutLog, error) {
	key := logKey{exercise: log.ExerciseName, set: log.SetNumber}
	if existing, ok := f.logs[key]; ok {
		log.ID = existing.ID
	} else {
		log.ID = primitive.NewObjectID()
	}
	copied := *log
	f.logs[key] = &copied
	result := copied
	return &result, nil
}

func logFixture(t *testing.T) (LogService, *fakePlannedRepo, *fakeLogRepo, primitive.ObjectID) {
	t.Helper()
	userID := primitive.NewObjectID()
	plannedRepo := newFakePlannedRepo()
	logRepo := newFakeLogRepo()
	plannedRepo.days[testDate] = &domain.PlannedWorkout{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkoutID:   primitive.NewObjectID(),
		PlannedDate: testDate,
	}
	return NewLogService(plannedRepo, logRepo), plannedRepo, logRepo, userID
}

func reps(v int) *int { return &v }

func kg(v float64) *float64 { return &v }

func TestUpsertLogCreatesRow(t *testing.T) {
	svc, plannedRepo, logRepo, userID := logFixture(t)

	saved, err := svc.UpsertLog(context.Background(), userID, testDate, domain.WorkoutLog{
		ExerciseName:  "Squat",
		SetNumber:     1,
		RepsCompleted: reps(10),
		Weight:        kg(50),
		Completed:     true,
	})
	if err != nil {
		t.Fatalf("UpsertLog: %v", err)
	}
	if saved.PlannedWorkoutID != plannedRepo.days[testDate].ID {
		t.Error("log should be attached to the date's occurrence")
	}
	if len(logRepo.logs) != 1 {
		t.Errorf("%d rows stored, want 1", len(logRepo.logs))
	}
}

func TestUpsertLogAmendsSameSet(t *testing.T) {
	svc, _, logRepo, userID := logFixture(t)
	ctx := context.Background()

	first, err := svc.UpsertLog(ctx, userID, testDate, domain.WorkoutLog{
		ExerciseName: "Squat", SetNumber: 1, RepsCompleted: reps(10), Completed: true,
	})
	if err != nil {
		t.Fatalf("first UpsertLog: %v", err)
	}

	second, err := svc.UpsertLog(ctx, userID, testDate, domain.WorkoutLog{
		ExerciseName: "Squat", SetNumber: 1, RepsCompleted: reps(8), Completed: true,
	})
	if err != nil {
		t.Fatalf("second UpsertLog: %v", err)
	}

	if len(logRepo.logs) != 1 {
		t.Fatalf("%d rows stored, repeated saves of one set must amend one row", len(logRepo.logs))
	}
	if first.ID != second.ID {
		t.Error("amended row should keep its identity")
	}
	if *second.RepsCompleted != 8 {
		t.Errorf("reps = %d, want last write 8", *second.RepsCompleted)
	}
}

func TestUpsertLogUncheckKeepsRow(t *testing.T) {
	svc, _, logRepo, userID := logFixture(t)
	ctx := context.Background()

	if _, err := svc.UpsertLog(ctx, userID, testDate, domain.WorkoutLog{
		ExerciseName: "Squat", SetNumber: 1, RepsCompleted: reps(10), Completed: true,
	}); err != nil {
		t.Fatalf("UpsertLog: %v", err)
	}

	saved, err := svc.UpsertLog(ctx, userID, testDate, domain.WorkoutLog{
		ExerciseName: "Squat", SetNumber: 1, RepsCompleted: reps(10), Completed: false,
	})
	if err != nil {
		t.Fatalf("uncheck UpsertLog: %v", err)
	}

	if len(logRepo.logs) != 1 {
		t.Fatal("unchecking must not delete the row")
	}
	if saved.Completed {
		t.Error("row should be marked not completed")
	}
	if saved.RepsCompleted == nil || *saved.RepsCompleted != 10 {
		t.Error("entered values should survive the uncheck")
	}
}

func TestUpsertLogRejectedOnEmptyDay(t *testing.T) {
	svc, _, _, userID := logFixture(t)

	_, err := svc.UpsertLog(context.Background(), userID, "2024-06-14", domain.WorkoutLog{
		ExerciseName: "Squat", SetNumber: 1,
	})
	if !errors.Is(err, domain.ErrDayEmpty) {
		t.Errorf("UpsertLog on empty day = %v, want ErrDayEmpty", err)
	}
}

func TestUpsertLogRejectedWhenCompleted(t *testing.T) {
	svc, plannedRepo, logRepo, userID := logFixture(t)
	plannedRepo.days[testDate].IsCompleted = true

	_, err := svc.UpsertLog(context.Background(), userID, testDate, domain.WorkoutLog{
		ExerciseName: "Squat", SetNumber: 1,
	})
	if !errors.Is(err, domain.ErrDayCompleted) {
		t.Errorf("UpsertLog on completed day = %v, want ErrDayCompleted", err)
	}
	if len(logRepo.logs) != 0 {
		t.Error("rejected save must not write")
	}
}

func TestGetLogs(t *testing.T) {
	svc, _, _, userID := logFixture(t)
	ctx := context.Background()

	if _, err := svc.GetLogs(ctx, userID, "2024-06-14"); !errors.Is(err, domain.ErrDayEmpty) {
		t.Fatalf("GetLogs on empty day = %v, want ErrDayEmpty", err)
	}
	if _, err := svc.GetLogs(ctx, userID, "junk"); !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("GetLogs with bad date = %v, want ErrInvalidDate", err)
	}

	for set := 1; set <= 2; set++ {
		if _, err := svc.UpsertLog(ctx, userID, testDate, domain.WorkoutLog{
			ExerciseName: "Squat", SetNumber: set, Completed: true,
		}); err != nil {
			t.Fatalf("UpsertLog set %d: %v", set, err)
		}
	}

	logs, err := svc.GetLogs(ctx, userID, testDate)
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("got %d logs, want 2", len(logs))
	}
}
