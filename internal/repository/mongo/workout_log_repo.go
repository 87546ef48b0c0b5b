package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ironplan/internal/domain"
	"ironplan/internal/repository"
)

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository.
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository backed
// by MongoDB.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// GetByPlannedWorkoutID retrieves all logs for an occurrence, ordered by
// exercise name then set number.
func (r *mongoWorkoutLogRepository) GetByPlannedWorkoutID(ctx context.Context, plannedWorkoutID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	var logs []domain.WorkoutLog
	filter := bson.M{"plannedWorkoutId": plannedWorkoutID}
	findOptions := options.Find().SetSort(bson.D{
		{Key: "exerciseName", Value: 1},
		{Key: "setNumber", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// Upsert creates or amends the log for the natural key
// (plannedWorkoutId, exerciseName, setNumber) and returns the stored row.
// A nil reps or weight clears the stored value rather than leaving a stale
// one behind.
func (r *mongoWorkoutLogRepository) Upsert(ctx context.Context, wl *domain.WorkoutLog) (*domain.WorkoutLog, error) {
	if wl.PlannedWorkoutID == primitive.NilObjectID {
		return nil, errors.New("workout log requires plannedWorkoutId")
	}
	if wl.ExerciseName == "" || wl.SetNumber < 1 {
		return nil, errors.New("workout log requires exerciseName and a 1-based setNumber")
	}

	now := time.Now().UTC()
	filter := bson.M{
		"plannedWorkoutId": wl.PlannedWorkoutID,
		"exerciseName":     wl.ExerciseName,
		"setNumber":        wl.SetNumber,
	}

	set := bson.M{
		"completed": wl.Completed,
		"updatedAt": now,
	}
	unset := bson.M{}
	if wl.RepsCompleted != nil {
		set["repsCompleted"] = *wl.RepsCompleted
	} else {
		unset["repsCompleted"] = ""
	}
	if wl.Weight != nil {
		set["weight"] = *wl.Weight
	} else {
		unset["weight"] = ""
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"plannedWorkoutId": wl.PlannedWorkoutID,
			"exerciseName":     wl.ExerciseName,
			"setNumber":        wl.SetNumber,
			"createdAt":        now,
		},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved domain.WorkoutLog
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// EnsureWorkoutLogIndexes creates necessary indexes for the workout_logs
// collection. The unique compound index is the upsert conflict target.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "plannedWorkoutId", Value: 1},
				{Key: "exerciseName", Value: 1},
				{Key: "setNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
