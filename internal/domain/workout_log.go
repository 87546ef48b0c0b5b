package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLog is one recorded set, owned by a PlannedWorkout occurrence.
// (PlannedWorkoutID, ExerciseName, SetNumber) is a natural key; logs are
// created and amended by upserting on it. Rows are never deleted through
// the execution surface: unchecking a set upserts Completed=false instead,
// so the persisted row and the displayed state cannot drift apart.
type WorkoutLog struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlannedWorkoutID primitive.ObjectID `bson:"plannedWorkoutId" json:"plannedWorkoutId"`
	ExerciseName     string             `bson:"exerciseName" json:"exerciseName"`
	SetNumber        int                `bson:"setNumber" json:"setNumber"` // 1-based
	RepsCompleted    *int               `bson:"repsCompleted,omitempty" json:"repsCompleted,omitempty"`
	Weight           *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Completed        bool               `bson:"completed" json:"completed"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
