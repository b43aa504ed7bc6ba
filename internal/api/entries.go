package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mealsnap/backend/internal/middleware"
	"github.com/mealsnap/backend/internal/models"
	"github.com/mealsnap/backend/internal/service"
	"github.com/mealsnap/backend/internal/store"
)

type EntriesHandler struct {
	authService *service.AuthService
	entries     *service.EntryService
}

func NewEntriesHandler(authService *service.AuthService, entries *service.EntryService) *EntriesHandler {
	return &EntriesHandler{
		authService: authService,
		entries:     entries,
	}
}

func (h *EntriesHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/entries")
	entries.Use(middleware.AuthMiddleware(h.authService))
	{
		entries.GET("", h.List)
		entries.POST("", h.CreateManual)
		entries.GET("/search", h.Search)
		entries.GET("/:id", h.Get)
		entries.DELETE("/:id", h.Delete)
		entries.DELETE("", h.ClearAll)
	}
}

func (h *EntriesHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entries, err := h.entries.ListEntries(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[EntriesHandler] list failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// CreateManual logs a typed-in meal without going through the photo
// pipeline.
func (h *EntriesHandler) CreateManual(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry := &models.FoodEntry{
		UserID:    userID,
		Timestamp: req.Timestamp,
		MealType:  req.MealType,
		Notes:     req.Notes,
		Items:     make([]models.FoodItem, len(req.Items)),
	}
	for i, item := range req.Items {
		entry.TotalCalories += item.Calories
		entry.Items[i] = models.FoodItem{
			Name:     item.Name,
			Calories: item.Calories,
			Weight:   item.Weight,
			Unit:     item.Unit,
			Nutrients: models.Nutrients{
				Protein: item.Protein,
				Carbs:   item.Carbs,
				Fat:     item.Fat,
				Fiber:   item.Fiber,
			},
		}
	}

	saved, err := h.entries.SaveManualEntry(c.Request.Context(), entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save entry"})
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *EntriesHandler) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entries, err := h.entries.SearchEntries(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		log.Printf("[EntriesHandler] search failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *EntriesHandler) entryID(c *gin.Context) (uuid.UUID, bool) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return uuid.Nil, false
	}
	return entryID, true
}

func (h *EntriesHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entryID, ok := h.entryID(c)
	if !ok {
		return
	}

	entry, err := h.entries.GetEntry(c.Request.Context(), userID, entryID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get entry"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *EntriesHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entryID, ok := h.entryID(c)
	if !ok {
		return
	}

	err := h.entries.DeleteEntry(c.Request.Context(), userID, entryID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		log.Printf("[EntriesHandler] delete failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
}

func (h *EntriesHandler) ClearAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.entries.ClearAll(c.Request.Context(), userID); err != nil {
		log.Printf("[EntriesHandler] clear failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all data cleared"})
}
