package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealsnap/backend/internal/service"
)

func logMealAt(t *testing.T, router *gin.Engine, token string, ts time.Time, calories float64) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/entries", token, ManualEntryRequest{
		Timestamp: ts.UnixMilli(),
		Items:     []ManualItemInput{{Name: "Meal", Calories: calories}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestDailyStatsEndpoint(t *testing.T) {
	router := newTestRouter(t, Deps{})
	token := registerUser(t, router)

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	logMealAt(t, router, token, day.Add(8*time.Hour), 400)
	logMealAt(t, router, token, day.Add(19*time.Hour), 600)
	logMealAt(t, router, token, day.AddDate(0, 0, 1), 999)

	w := doJSON(t, router, http.MethodGet, "/api/v1/stats/daily?date=2026-08-30", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats service.DailyStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "2026-08-30", stats.Date)
	assert.Equal(t, 2, stats.TotalMeals)
	assert.Equal(t, 1000.0, stats.TotalCalories)
}

func TestWeeklyStatsEndpoint(t *testing.T) {
	router := newTestRouter(t, Deps{})
	token := registerUser(t, router)

	weekStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		logMealAt(t, router, token, weekStart.AddDate(0, 0, i).Add(12*time.Hour), 700)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/stats/weekly?start=2026-08-24", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats service.WeeklyStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats.Days, 7)
	assert.Equal(t, 4900.0, stats.TotalCalories)
	assert.Equal(t, 700.0, stats.WeeklyAverage)
}

func TestStatsRejectsBadDate(t *testing.T) {
	router := newTestRouter(t, Deps{})
	token := registerUser(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/stats/daily?date=30-08-2026", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/stats/weekly?start=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsDefaultToToday(t *testing.T) {
	router := newTestRouter(t, Deps{})
	token := registerUser(t, router)

	logMealAt(t, router, token, time.Now(), 500)

	w := doJSON(t, router, http.MethodGet, "/api/v1/stats/daily", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats service.DailyStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalMeals)
	assert.Equal(t, 500.0, stats.TotalCalories)
}
