package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealsnap/backend/internal/middleware"
	"github.com/mealsnap/backend/internal/models"
	"github.com/mealsnap/backend/internal/service"
)

type SettingsHandler struct {
	authService *service.AuthService
	settings    *service.SettingsService
}

func NewSettingsHandler(authService *service.AuthService, settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		authService: authService,
		settings:    settings,
	}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	profile.Use(middleware.AuthMiddleware(h.authService))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.GET("/goals", h.GetGoals)
		profile.PUT("/goals", h.UpdateGoals)
	}

	settings := router.Group("/settings")
	settings.Use(middleware.AuthMiddleware(h.authService))
	{
		settings.GET("/api-key", h.GetAPIKey)
		settings.PUT("/api-key", h.UpdateAPIKey)
	}
}

func (h *SettingsHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.settings.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile := &models.UserProfile{
		UserID:           userID,
		Name:             req.Name,
		Age:              req.Age,
		Weight:           req.Weight,
		Height:           req.Height,
		Gender:           req.Gender,
		ActivityLevel:    req.ActivityLevel,
		Goal:             req.Goal,
		DailyCalorieGoal: req.DailyCalorieGoal,
	}
	if err := h.settings.SaveProfile(c.Request.Context(), profile); err != nil {
		log.Printf("[SettingsHandler] profile update failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *SettingsHandler) GetGoals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	goals, err := h.settings.GetGoals(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get goals"})
		return
	}
	if goals == nil {
		c.JSON(http.StatusOK, gin.H{"goals": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (h *SettingsHandler) UpdateGoals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req GoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	goals := &models.DailyGoals{
		UserID:   userID,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Fiber:    req.Fiber,
	}
	if err := h.settings.SaveGoals(c.Request.Context(), goals); err != nil {
		log.Printf("[SettingsHandler] goals update failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update goals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// GetAPIKey reports whether a key is stored without ever echoing it back.
func (h *SettingsHandler) GetAPIKey(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	key, err := h.settings.VisionKey(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get api key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"configured": key != "", "masked": maskKey(key)})
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return ""
	}
	return "****" + key[len(key)-4:]
}

func (h *SettingsHandler) UpdateAPIKey(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req APIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.settings.SaveVisionKey(c.Request.Context(), userID, req.Key); err != nil {
		log.Printf("[SettingsHandler] api key update failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store api key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"configured": true})
}
