package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Guard errors shared by the server-side services and the client-side
// planner store. Every one of them is a synchronous validation failure:
// it fires before any remote or database call is made.
var (
	ErrDayEmpty     = errors.New("no workout planned for this day")
	ErrDayLocked    = errors.New("day is locked")
	ErrDayCompleted = errors.New("workout already completed")
)

// PlannedWorkout assigns one Workout to one calendar date for one user.
// (UserID, PlannedDate) is a natural key: at most one occurrence may exist
// per user per date.
type PlannedWorkout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	WorkoutID   primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	PlannedDate string             `bson:"plannedDate" json:"plannedDate"` // YYYY-MM-DD
	IsLocked    bool               `bson:"isLocked" json:"isLocked"`
	IsCompleted bool               `bson:"isCompleted" json:"isCompleted"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Workout     *Workout           `bson:"workout,omitempty" json:"workout,omitempty"` // joined, not stored
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DayState is the per-date planning state:
//
//	EMPTY → PLANNED → LOCKED → COMPLETED
//
// with unlock (LOCKED → PLANNED) as the only backward transition.
// COMPLETED is terminal.
type DayState string

const (
	DayEmpty     DayState = "empty"
	DayPlanned   DayState = "planned"
	DayLocked    DayState = "locked"
	DayCompleted DayState = "completed"
)

// StateOf derives the day state from an occurrence. A nil occurrence means
// no row exists for the date.
func StateOf(pw *PlannedWorkout) DayState {
	switch {
	case pw == nil:
		return DayEmpty
	case pw.IsCompleted:
		return DayCompleted
	case pw.IsLocked:
		return DayLocked
	default:
		return DayPlanned
	}
}

// CanAssign reports whether a workout may be assigned (upserted) for the
// date currently holding pw. Assignment replaces an unlocked plan; a locked
// day must be unlocked first and a completed day is read-only.
func CanAssign(pw *PlannedWorkout) error {
	switch StateOf(pw) {
	case DayCompleted:
		return ErrDayCompleted
	case DayLocked:
		return ErrDayLocked
	}
	return nil
}

// CanSetLocked reports whether the lock flag may be toggled. Locking an
// empty day is rejected: a lock always protects an existing assignment.
func CanSetLocked(pw *PlannedWorkout, locked bool) error {
	if StateOf(pw) == DayCompleted {
		return ErrDayCompleted
	}
	if locked && pw == nil {
		return ErrDayEmpty
	}
	return nil
}

// CanRemove reports whether the occurrence may be deleted.
func CanRemove(pw *PlannedWorkout) error {
	switch StateOf(pw) {
	case DayEmpty:
		return ErrDayEmpty
	case DayCompleted:
		return ErrDayCompleted
	case DayLocked:
		return ErrDayLocked
	}
	return nil
}

// CanFinish reports whether the occurrence may transition to COMPLETED.
// Both PLANNED and LOCKED days may finish; finishing twice is rejected.
func CanFinish(pw *PlannedWorkout) error {
	switch StateOf(pw) {
	case DayEmpty:
		return ErrDayEmpty
	case DayCompleted:
		return ErrDayCompleted
	}
	return nil
}
