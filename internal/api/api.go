package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealsnap/backend/internal/middleware"
	"github.com/mealsnap/backend/internal/service"
	"github.com/mealsnap/backend/internal/store"
)

// Deps carries everything the HTTP layer needs. Optional fields may be nil;
// the affected endpoints degrade or report unavailability instead of
// panicking.
type Deps struct {
	Store        store.Store
	JWTSecret    string
	ImageService *service.ImageService
	RateLimiter  *middleware.RateLimiter

	// VisionAPIURL and VisionClient point analysis calls at a fake provider
	// in tests. Empty values select the real endpoint.
	VisionAPIURL string
	VisionClient *http.Client
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "MealSnap API is running",
		"version": "v1.0.0",
	})
}

// SetupAPI wires services and handlers onto the router.
func SetupAPI(router *gin.Engine, deps Deps) {
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	authService := service.NewAuthService(deps.Store, deps.JWTSecret)
	settingsService := service.NewSettingsService(deps.Store)
	entryService := service.NewEntryService(deps.Store)
	pipelines := service.NewPipelineManager()
	prep := service.NewImagePrepService()

	authHandler := NewAuthHandler(authService)
	mealsHandler := NewMealsHandler(authService, settingsService, entryService, pipelines, prep, deps.RateLimiter)
	mealsHandler.visionURL = deps.VisionAPIURL
	mealsHandler.visionClient = deps.VisionClient
	entriesHandler := NewEntriesHandler(authService, entryService)
	statsHandler := NewStatsHandler(authService, entryService)
	settingsHandler := NewSettingsHandler(authService, settingsService)
	imageHandler := NewImageHandler(authService, deps.ImageService)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		mealsHandler.RegisterRoutes(v1)
		entriesHandler.RegisterRoutes(v1)
		statsHandler.RegisterRoutes(v1)
		settingsHandler.RegisterRoutes(v1)
		imageHandler.RegisterRoutes(v1)
	}
}
