package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealsnap/backend/internal/middleware"
	"github.com/mealsnap/backend/internal/service"
)

type StatsHandler struct {
	authService *service.AuthService
	entries     *service.EntryService
}

func NewStatsHandler(authService *service.AuthService, entries *service.EntryService) *StatsHandler {
	return &StatsHandler{
		authService: authService,
		entries:     entries,
	}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/stats")
	stats.Use(middleware.AuthMiddleware(h.authService))
	{
		stats.GET("/daily", h.Daily)
		stats.GET("/weekly", h.Weekly)
	}
}

// dateParam parses an optional YYYY-MM-DD query value, defaulting to today.
func dateParam(c *gin.Context, name string) (time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return time.Now(), true
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func (h *StatsHandler) Daily(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}

	stats, err := h.entries.DailyStats(c.Request.Context(), userID, date)
	if err != nil {
		log.Printf("[StatsHandler] daily stats failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) Weekly(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	start, ok := dateParam(c, "start")
	if !ok {
		return
	}

	stats, err := h.entries.WeeklyStats(c.Request.Context(), userID, start)
	if err != nil {
		log.Printf("[StatsHandler] weekly stats failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
