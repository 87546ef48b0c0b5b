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

const plannedWorkoutCollectionName = "planned_workouts"

// mongoPlannedWorkoutRepository implements repository.PlannedWorkoutRepository.
type mongoPlannedWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoPlannedWorkoutRepository creates a new PlannedWorkout repository
// backed by MongoDB.
func NewMongoPlannedWorkoutRepository(db *mongo.Database) repository.PlannedWorkoutRepository {
	return &mongoPlannedWorkoutRepository{
		collection: db.Collection(plannedWorkoutCollectionName),
	}
}

// GetByDate retrieves the occurrence for (userID, date).
func (r *mongoPlannedWorkoutRepository) GetByDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	var pw domain.PlannedWorkout
	filter := bson.M{"userId": userID, "plannedDate": date}

	err := r.collection.FindOne(ctx, filter).Decode(&pw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &pw, nil
}

// GetByDateRange retrieves all occurrences for the user within the
// inclusive [start, end] date range, ordered by date. The YYYY-MM-DD form
// sorts lexicographically, so plain string comparison is correct here.
func (r *mongoPlannedWorkoutRepository) GetByDateRange(ctx context.Context, userID primitive.ObjectID, start, end string) ([]domain.PlannedWorkout, error) {
	var pws []domain.PlannedWorkout
	filter := bson.M{
		"userId":      userID,
		"plannedDate": bson.M{"$gte": start, "$lte": end},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "plannedDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &pws); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return pws, nil
}

// GetByUserID retrieves every occurrence the user owns, ordered by date.
// Used by the export snapshot.
func (r *mongoPlannedWorkoutRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.PlannedWorkout, error) {
	var pws []domain.PlannedWorkout
	findOptions := options.Find().SetSort(bson.D{{Key: "plannedDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &pws); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return pws, nil
}

// Upsert assigns workoutID to (userID, date). The unique index on that pair
// is the conflict target, so repeated assignment replaces the existing row
// instead of creating a second one. A fresh assignment always starts
// unlocked and uncompleted.
func (r *mongoPlannedWorkoutRepository) Upsert(ctx context.Context, userID, workoutID primitive.ObjectID, date string) (*domain.PlannedWorkout, error) {
	if workoutID == primitive.NilObjectID {
		return nil, errors.New("planned workout requires workoutId")
	}

	now := time.Now().UTC()
	filter := bson.M{"userId": userID, "plannedDate": date}
	update := bson.M{
		"$set": bson.M{
			"workoutId":   workoutID,
			"isLocked":    false,
			"isCompleted": false,
			"updatedAt":   now,
		},
		"$unset": bson.M{"completedAt": ""},
		"$setOnInsert": bson.M{
			"userId":      userID,
			"plannedDate": date,
			"createdAt":   now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var pw domain.PlannedWorkout
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&pw); err != nil {
		return nil, err
	}
	return &pw, nil
}

// SetLocked toggles the lock flag for the occurrence at (userID, date).
func (r *mongoPlannedWorkoutRepository) SetLocked(ctx context.Context, userID primitive.ObjectID, date string, locked bool) error {
	filter := bson.M{"userId": userID, "plannedDate": date}
	update := bson.M{"$set": bson.M{
		"isLocked":  locked,
		"updatedAt": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetCompleted marks the occurrence at (userID, date) completed.
func (r *mongoPlannedWorkoutRepository) SetCompleted(ctx context.Context, userID primitive.ObjectID, date string, completedAt time.Time) error {
	filter := bson.M{"userId": userID, "plannedDate": date}
	update := bson.M{"$set": bson.M{
		"isCompleted": true,
		"completedAt": completedAt.UTC(),
		"updatedAt":   time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the occurrence at (userID, date).
func (r *mongoPlannedWorkoutRepository) Delete(ctx context.Context, userID primitive.ObjectID, date string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "plannedDate": date})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlannedWorkoutIndexes creates necessary indexes for the
// planned_workouts collection. The unique (userId, plannedDate) index backs
// the upsert natural key: at most one occurrence per user per date.
func EnsurePlannedWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "plannedDate", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
