package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
	"ironplan/internal/repository"
	"ironplan/internal/storage"
)

// ExportService writes a JSON snapshot of everything a user owns to object
// storage and hands back a short-lived download link.
type ExportService interface {
	ExportUserData(ctx context.Context, userID primitive.ObjectID) (url string, err error)
}

// exportService implements the ExportService interface.
type exportService struct {
	workoutRepo repository.WorkoutRepository
	plannedRepo repository.PlannedWorkoutRepository
	logRepo     repository.WorkoutLogRepository
	store       storage.ObjectStorage
}

// NewExportService creates a new instance of exportService.
func NewExportService(
	workoutRepo repository.WorkoutRepository,
	plannedRepo repository.PlannedWorkoutRepository,
	logRepo repository.WorkoutLogRepository,
	store storage.ObjectStorage,
) ExportService {
	return &exportService{
		workoutRepo: workoutRepo,
		plannedRepo: plannedRepo,
		logRepo:     logRepo,
		store:       store,
	}
}

// exportOccurrence pairs an occurrence with its set logs in the snapshot.
type exportOccurrence struct {
	domain.PlannedWorkout
	Logs []domain.WorkoutLog `json:"logs,omitempty"`
}

// exportSnapshot is the JSON document written to object storage.
type exportSnapshot struct {
	ExportedAt      time.Time          `json:"exportedAt"`
	Workouts        []domain.Workout   `json:"workouts"`
	PlannedWorkouts []exportOccurrence `json:"plannedWorkouts"`
}

// ExportUserData gathers the user's templates, occurrences and logs,
// uploads them as one JSON object and returns a presigned download URL.
func (s *exportService) ExportUserData(ctx context.Context, userID primitive.ObjectID) (string, error) {
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load workouts for export: %w", err)
	}

	pws, err := s.plannedRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load planned workouts for export: %w", err)
	}

	occurrences := make([]exportOccurrence, 0, len(pws))
	for _, pw := range pws {
		logs, err := s.logRepo.GetByPlannedWorkoutID(ctx, pw.ID)
		if err != nil {
			return "", fmt.Errorf("failed to load logs for export: %w", err)
		}
		occurrences = append(occurrences, exportOccurrence{PlannedWorkout: pw, Logs: logs})
	}

	snapshot := exportSnapshot{
		ExportedAt:      time.Now().UTC(),
		Workouts:        workouts,
		PlannedWorkouts: occurrences,
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export snapshot: %w", err)
	}

	objectKey := fmt.Sprintf("exports/%s/%s.json", userID.Hex(), uuid.NewString())
	if err := s.store.PutObject(ctx, objectKey, "application/json", bytes.NewReader(body)); err != nil {
		return "", fmt.Errorf("failed to upload export snapshot: %w", err)
	}

	url, err := s.store.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign export download: %w", err)
	}
	return url, nil
}
