package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a reusable workout template. The structured prescription is
// produced once by the parse service from RawInput and is treated as
// immutable afterwards; actual performance lives in WorkoutLog rows only.
type Workout struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Title      string             `bson:"title" json:"title"`
	RawInput   string             `bson:"rawInput" json:"rawInput"`
	Structured *StructuredWorkout `bson:"structured,omitempty" json:"structured,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StructuredWorkout is the parsed form of a free-text workout description.
type StructuredWorkout struct {
	Category     string         `bson:"category,omitempty" json:"category,omitempty"`
	MuscleGroups []string       `bson:"muscleGroups,omitempty" json:"muscle_groups,omitempty"`
	Duration     *int           `bson:"duration,omitempty" json:"duration,omitempty"` // minutes
	Exercises    []Prescription `bson:"exercises,omitempty" json:"exercises,omitempty"`
}

// Prescription is one planned exercise: sets/reps/weight as parsed, not as
// performed.
type Prescription struct {
	Name   string   `bson:"name" json:"name"`
	Sets   *int     `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps   *int     `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Unit   string   `bson:"unit,omitempty" json:"unit,omitempty"` // e.g. "kg", "lb"
}

// SetCount returns the prescribed number of sets, defaulting to 1 when the
// parse service did not produce one.
func (p Prescription) SetCount() int {
	if p.Sets == nil || *p.Sets < 1 {
		return 1
	}
	return *p.Sets
}

// Summary renders the prescription for display, e.g. "3 × 10 reps @ 50kg".
func (p Prescription) Summary() string {
	reps := "—"
	if p.Reps != nil {
		reps = strconv.Itoa(*p.Reps)
	}
	s := fmt.Sprintf("%d × %s reps", p.SetCount(), reps)
	if p.Weight != nil {
		unit := p.Unit
		if unit == "" {
			unit = "kg"
		}
		s += fmt.Sprintf(" @ %s%s", strconv.FormatFloat(*p.Weight, 'f', -1, 64), unit)
	}
	return s
}

// The accessors below tolerate a missing or partially-shaped structured
// representation: absent data means "no data", never a panic.

// Exercises returns the prescribed exercise list, empty if none was parsed.
func (w *Workout) Exercises() []Prescription {
	if w == nil || w.Structured == nil {
		return nil
	}
	return w.Structured.Exercises
}

// ExerciseCount returns the number of prescribed exercises.
func (w *Workout) ExerciseCount() int {
	return len(w.Exercises())
}

// MuscleGroupLabel joins the parsed muscle groups into a display label.
func (w *Workout) MuscleGroupLabel() string {
	if w == nil || w.Structured == nil {
		return ""
	}
	return strings.Join(w.Structured.MuscleGroups, " · ")
}

// CategoryLabel returns the parsed category, empty if none.
func (w *Workout) CategoryLabel() string {
	if w == nil || w.Structured == nil {
		return ""
	}
	return w.Structured.Category
}

// DurationLabel returns the estimated duration as e.g. "45 min", empty if
// the parse service produced no estimate.
func (w *Workout) DurationLabel() string {
	if w == nil || w.Structured == nil || w.Structured.Duration == nil {
		return ""
	}
	return fmt.Sprintf("%d min", *w.Structured.Duration)
}
