package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ironplan/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	workoutService service.WorkoutService,
	plannerService service.PlannerService,
	logService service.LogService,
	exportService service.ExportService,
) {

	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)
	plannerHandler := NewPlannerHandler(plannerService, logService)
	exportHandler := NewExportHandler(exportService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Workout Library ---
		workoutGroup := protected.Group("/workouts")
		{
			// POST /api/v1/workouts - parse free text into a template
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			// GET /api/v1/workouts - library, newest first
			workoutGroup.GET("", workoutHandler.GetWorkouts)
			// DELETE /api/v1/workouts/{id}
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
		}

		// --- Planner ---
		plannerGroup := protected.Group("/planner")
		{
			// GET /api/v1/planner?start=YYYY-MM-DD&end=YYYY-MM-DD
			plannerGroup.GET("", plannerHandler.GetRange)
			// GET /api/v1/planner/today
			plannerGroup.GET("/today", plannerHandler.GetToday)

			// Per-date occurrence lifecycle. "today" above must be
			// registered before the :date wildcard would shadow it;
			// gin resolves the static segment first either way.
			plannerGroup.GET("/:date", plannerHandler.GetByDate)
			plannerGroup.PUT("/:date", plannerHandler.AssignWorkout)
			plannerGroup.DELETE("/:date", plannerHandler.RemoveWorkout)
			plannerGroup.PATCH("/:date/lock", plannerHandler.SetLocked)
			plannerGroup.POST("/:date/finish", plannerHandler.FinishWorkout)

			// Set logs for the date's occurrence.
			plannerGroup.GET("/:date/logs", plannerHandler.GetLogs)
			plannerGroup.PUT("/:date/logs", plannerHandler.UpsertLog)
		}

		// POST /api/v1/export - snapshot user data, returns download URL
		protected.POST("/export", exportHandler.CreateExport)
	}
}
