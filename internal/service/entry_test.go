package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealsnap/backend/internal/models"
	"github.com/mealsnap/backend/internal/store"
)

func entryAt(userID uuid.UUID, ts time.Time, calories float64, nutrients models.Nutrients) *models.FoodEntry {
	return &models.FoodEntry{
		UserID:        userID,
		Timestamp:     ts.UnixMilli(),
		TotalCalories: calories,
		Items: []models.FoodItem{
			{Name: "Item", Calories: calories, Nutrients: nutrients},
		},
	}
}

func TestSaveEntryRecomputesSummary(t *testing.T) {
	svc := NewEntryService(store.NewMemoryStore())
	userID := uuid.New()

	entry := &models.FoodEntry{
		UserID: userID,
		// A summary that disagrees with the items must not survive the save.
		Summary: models.Nutrients{Protein: 999, Carbs: 999, Fat: 999, Fiber: 999},
		Items: []models.FoodItem{
			{Name: "Chicken", Calories: 300, Nutrients: models.Nutrients{Protein: 30, Carbs: 0, Fat: 10, Fiber: 0}},
			{Name: "Rice", Calories: 200, Nutrients: models.Nutrients{Protein: 4, Carbs: 45, Fat: 1, Fiber: 1}},
		},
	}

	saved, err := svc.SaveEntry(context.Background(), entry)
	require.NoError(t, err)

	assert.Equal(t, 34.0, saved.Summary.Protein)
	assert.Equal(t, 45.0, saved.Summary.Carbs)
	assert.Equal(t, 11.0, saved.Summary.Fat)
	assert.Equal(t, 1.0, saved.Summary.Fiber)
	assert.NotZero(t, saved.Timestamp)
	assert.NotEqual(t, uuid.Nil, saved.ID)
}

func TestSaveManualEntryMarksManual(t *testing.T) {
	svc := NewEntryService(store.NewMemoryStore())

	saved, err := svc.SaveManualEntry(context.Background(), &models.FoodEntry{
		UserID: uuid.New(),
		Items:  []models.FoodItem{{Name: "Oatmeal", Calories: 150}},
	})
	require.NoError(t, err)
	assert.True(t, saved.IsManual)
}

func TestDailyStats(t *testing.T) {
	svc := NewEntryService(store.NewMemoryStore())
	userID := uuid.New()
	ctx := context.Background()

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	_, err := svc.SaveEntry(ctx, entryAt(userID, day.Add(8*time.Hour), 400, models.Nutrients{Protein: 20, Carbs: 40, Fat: 10, Fiber: 5}))
	require.NoError(t, err)
	_, err = svc.SaveEntry(ctx, entryAt(userID, day.Add(13*time.Hour), 600, models.Nutrients{Protein: 35, Carbs: 60, Fat: 20, Fiber: 8}))
	require.NoError(t, err)

	// Just before and after the day boundary; both must be excluded.
	_, err = svc.SaveEntry(ctx, entryAt(userID, day.Add(-time.Minute), 1000, models.Nutrients{}))
	require.NoError(t, err)
	_, err = svc.SaveEntry(ctx, entryAt(userID, day.Add(24*time.Hour+time.Minute), 1000, models.Nutrients{}))
	require.NoError(t, err)

	stats, err := svc.DailyStats(ctx, userID, day.Add(12*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "2026-08-30", stats.Date)
	assert.Equal(t, 2, stats.TotalMeals)
	assert.Equal(t, 1000.0, stats.TotalCalories)
	assert.Equal(t, 55.0, stats.Breakdown.Protein)
	assert.Equal(t, 100.0, stats.Breakdown.Carbs)
	assert.Equal(t, 30.0, stats.Breakdown.Fat)
	assert.Equal(t, 13.0, stats.Breakdown.Fiber)
}

func TestWeeklyStats(t *testing.T) {
	svc := NewEntryService(store.NewMemoryStore())
	userID := uuid.New()
	ctx := context.Background()

	weekStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	// One 700 kcal meal on each of the first three days.
	for i := 0; i < 3; i++ {
		_, err := svc.SaveEntry(ctx, entryAt(userID, weekStart.AddDate(0, 0, i).Add(12*time.Hour), 700, models.Nutrients{}))
		require.NoError(t, err)
	}

	stats, err := svc.WeeklyStats(ctx, userID, weekStart)
	require.NoError(t, err)

	require.Len(t, stats.Days, 7)
	assert.Equal(t, "2026-08-24", stats.Days[0].Date)
	assert.Equal(t, 700.0, stats.Days[0].TotalCalories)
	assert.Equal(t, 1, stats.Days[0].TotalMeals)
	assert.Equal(t, 0.0, stats.Days[6].TotalCalories)
	assert.Equal(t, 2100.0, stats.TotalCalories)
	assert.Equal(t, 300.0, stats.WeeklyAverage)
}

func TestEntriesInRange(t *testing.T) {
	svc := NewEntryService(store.NewMemoryStore())
	userID := uuid.New()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := svc.SaveEntry(ctx, entryAt(userID, base.AddDate(0, 0, i), 100, models.Nutrients{}))
		require.NoError(t, err)
	}

	entries, err := svc.EntriesInRange(ctx, userID, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestClearAllRemovesEntries(t *testing.T) {
	svc := NewEntryService(store.NewMemoryStore())
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.SaveEntry(ctx, entryAt(userID, time.Now(), 100, models.Nutrients{}))
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx, userID))

	entries, err := svc.ListEntries(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The store remains usable after a wipe.
	_, err = svc.SaveEntry(ctx, entryAt(userID, time.Now(), 100, models.Nutrients{}))
	require.NoError(t, err)
}
