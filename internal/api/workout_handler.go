package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
	"ironplan/internal/parser"
	"ironplan/internal/service"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

// CreateWorkoutRequest carries the free-text description; the parse
// service turns it into the structured prescription.
type CreateWorkoutRequest struct {
	RawText string `json:"raw_text" binding:"required"`
}

// WorkoutResponse is the DTO for returning workout templates.
type WorkoutResponse struct {
	ID            string                    `json:"id"`
	Title         string                    `json:"title"`
	RawInput      string                    `json:"rawInput"`
	Structured    *domain.StructuredWorkout `json:"structured,omitempty"`
	ExerciseCount int                       `json:"exerciseCount"`
	MuscleGroups  string                    `json:"muscleGroups,omitempty"`
	Category      string                    `json:"category,omitempty"`
	Duration      string                    `json:"duration,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:            w.ID.Hex(),
		Title:         w.Title,
		RawInput:      w.RawInput,
		Structured:    w.Structured,
		ExerciseCount: w.ExerciseCount(),
		MuscleGroups:  w.MuscleGroupLabel(),
		Category:      w.CategoryLabel(),
		Duration:      w.DurationLabel(),
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

// --- Handler Methods ---

// CreateWorkout parses a free-text workout description and stores the
// resulting template.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	workout, err := h.workoutService.CreateFromText(c.Request.Context(), userID, req.RawText)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, parser.ErrParseFailed):
			abortWithError(c, http.StatusBadGateway, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create workout.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// GetWorkouts lists the user's workout library, newest first.
func (h *WorkoutHandler) GetWorkouts(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	workouts, err := h.workoutService.GetWorkouts(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workouts.")
		return
	}

	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteWorkout removes a workout template.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	workoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID.")
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, workoutID); err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete workout.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
