package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ironplan/internal/domain"
	"ironplan/internal/service"
)

// PlannerHandler holds the planner and log service dependencies.
type PlannerHandler struct {
	plannerService service.PlannerService
	logService     service.LogService
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(plannerService service.PlannerService, logService service.LogService) *PlannerHandler {
	return &PlannerHandler{
		plannerService: plannerService,
		logService:     logService,
	}
}

// --- DTOs ---

type AssignWorkoutRequest struct {
	WorkoutID string `json:"workout_id" binding:"required"`
}

type SetLockedRequest struct {
	// Pointer so an explicit false survives binding.
	Locked *bool `json:"locked" binding:"required"`
}

// UpsertLogRequest is one set log write. Reps and weight are pointers:
// absent means "no value", never zero.
type UpsertLogRequest struct {
	ExerciseName  string   `json:"exercise_name" binding:"required"`
	SetNumber     int      `json:"set_number" binding:"required,min=1"`
	RepsCompleted *int     `json:"reps_completed"`
	Weight        *float64 `json:"weight"`
	Completed     bool     `json:"completed"`
}

// PlannedWorkoutResponse is the DTO for returning occurrences.
type PlannedWorkoutResponse struct {
	ID          string           `json:"id"`
	WorkoutID   string           `json:"workoutId"`
	PlannedDate string           `json:"plannedDate"`
	State       domain.DayState  `json:"state"`
	IsLocked    bool             `json:"isLocked"`
	IsCompleted bool             `json:"isCompleted"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Workout     *WorkoutResponse `json:"workout,omitempty"`
}

// WorkoutLogResponse is the DTO for returning set logs.
type WorkoutLogResponse struct {
	ID            string   `json:"id"`
	ExerciseName  string   `json:"exerciseName"`
	SetNumber     int      `json:"setNumber"`
	RepsCompleted *int     `json:"repsCompleted,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Completed     bool     `json:"completed"`
}

// MapPlannedWorkoutToResponse converts a domain.PlannedWorkout to its DTO.
func MapPlannedWorkoutToResponse(pw *domain.PlannedWorkout) PlannedWorkoutResponse {
	if pw == nil {
		return PlannedWorkoutResponse{}
	}
	resp := PlannedWorkoutResponse{
		ID:          pw.ID.Hex(),
		WorkoutID:   pw.WorkoutID.Hex(),
		PlannedDate: pw.PlannedDate,
		State:       domain.StateOf(pw),
		IsLocked:    pw.IsLocked,
		IsCompleted: pw.IsCompleted,
		CompletedAt: pw.CompletedAt,
	}
	if pw.Workout != nil {
		w := MapWorkoutToResponse(pw.Workout)
		resp.Workout = &w
	}
	return resp
}

// MapWorkoutLogToResponse converts a domain.WorkoutLog to its DTO.
func MapWorkoutLogToResponse(wl *domain.WorkoutLog) WorkoutLogResponse {
	if wl == nil {
		return WorkoutLogResponse{}
	}
	return WorkoutLogResponse{
		ID:            wl.ID.Hex(),
		ExerciseName:  wl.ExerciseName,
		SetNumber:     wl.SetNumber,
		RepsCompleted: wl.RepsCompleted,
		Weight:        wl.Weight,
		Completed:     wl.Completed,
	}
}

// abortPlannerError maps state-machine and validation errors onto HTTP
// statuses: malformed input 400, missing occurrence 404, guard violations
// (locked, completed, lock-on-empty) 409.
func abortPlannerError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDayEmpty):
		abortWithError(c, http.StatusNotFound, "no workout planned for this date")
	case errors.Is(err, domain.ErrDayLocked), errors.Is(err, domain.ErrDayCompleted):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

// --- Handler Methods ---

// GetRange returns all occurrences within the inclusive ?start=&end= date
// range. The week view calls this with Monday–Sunday bounds.
func (h *PlannerHandler) GetRange(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		abortWithError(c, http.StatusBadRequest, "start and end query parameters are required")
		return
	}

	pws, err := h.plannerService.GetRange(c.Request.Context(), userID, start, end)
	if err != nil {
		abortPlannerError(c, err, "Failed to load planned workouts.")
		return
	}

	responses := make([]PlannedWorkoutResponse, len(pws))
	for i := range pws {
		responses[i] = MapPlannedWorkoutToResponse(&pws[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetToday returns today's occurrence, if any.
func (h *PlannerHandler) GetToday(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	pw, err := h.plannerService.GetByDate(c.Request.Context(), userID, domain.Today())
	if err != nil {
		abortPlannerError(c, err, "Failed to load today's workout.")
		return
	}
	c.JSON(http.StatusOK, MapPlannedWorkoutToResponse(pw))
}

// GetByDate returns the occurrence for the :date path token.
func (h *PlannerHandler) GetByDate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	pw, err := h.plannerService.GetByDate(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		abortPlannerError(c, err, "Failed to load planned workout.")
		return
	}
	c.JSON(http.StatusOK, MapPlannedWorkoutToResponse(pw))
}

// AssignWorkout upserts a workout onto the date.
func (h *PlannerHandler) AssignWorkout(c *gin.Context) {
	var req AssignWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	workoutID, err := primitive.ObjectIDFromHex(req.WorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID.")
		return
	}

	pw, err := h.plannerService.Assign(c.Request.Context(), userID, workoutID, c.Param("date"))
	if err != nil {
		abortPlannerError(c, err, "Failed to assign workout.")
		return
	}
	c.JSON(http.StatusOK, MapPlannedWorkoutToResponse(pw))
}

// SetLocked toggles the lock flag for the date.
func (h *PlannerHandler) SetLocked(c *gin.Context) {
	var req SetLockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	pw, err := h.plannerService.SetLocked(c.Request.Context(), userID, c.Param("date"), *req.Locked)
	if err != nil {
		abortPlannerError(c, err, "Failed to update lock.")
		return
	}
	c.JSON(http.StatusOK, MapPlannedWorkoutToResponse(pw))
}

// RemoveWorkout deletes the occurrence for the date.
func (h *PlannerHandler) RemoveWorkout(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.plannerService.Remove(c.Request.Context(), userID, c.Param("date")); err != nil {
		abortPlannerError(c, err, "Failed to remove workout.")
		return
	}
	c.Status(http.StatusNoContent)
}

// FinishWorkout transitions the occurrence to COMPLETED.
func (h *PlannerHandler) FinishWorkout(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	pw, err := h.plannerService.Finish(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		abortPlannerError(c, err, "Failed to finish workout.")
		return
	}
	c.JSON(http.StatusOK, MapPlannedWorkoutToResponse(pw))
}

// GetLogs lists the persisted set logs for the date's occurrence.
func (h *PlannerHandler) GetLogs(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	logs, err := h.logService.GetLogs(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		abortPlannerError(c, err, "Failed to load workout logs.")
		return
	}

	responses := make([]WorkoutLogResponse, len(logs))
	for i := range logs {
		responses[i] = MapWorkoutLogToResponse(&logs[i])
	}
	c.JSON(http.StatusOK, responses)
}

// UpsertLog creates or amends one set log for the date's occurrence.
func (h *PlannerHandler) UpsertLog(c *gin.Context) {
	var req UpsertLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	entry := domain.WorkoutLog{
		ExerciseName:  req.ExerciseName,
		SetNumber:     req.SetNumber,
		RepsCompleted: req.RepsCompleted,
		Weight:        req.Weight,
		Completed:     req.Completed,
	}

	saved, err := h.logService.UpsertLog(c.Request.Context(), userID, c.Param("date"), entry)
	if err != nil {
		abortPlannerError(c, err, "Failed to save workout log.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutLogToResponse(saved))
}
