package service

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mealsnap/backend/internal/models"
	"github.com/mealsnap/backend/internal/store"
)

// DailyStats aggregates one calendar day of entries.
type DailyStats struct {
	Date          string           `json:"date"`
	TotalCalories float64          `json:"total_calories"`
	TotalMeals    int              `json:"total_meals"`
	Breakdown     models.Nutrients `json:"nutrition_breakdown"`
}

// WeeklyStats aggregates the seven days starting at the requested date.
type WeeklyStats struct {
	Days          []DailyStats `json:"daily_stats"`
	WeeklyAverage float64      `json:"weekly_average"`
	TotalCalories float64      `json:"total_calories"`
}

// EntryService owns food entry persistence and aggregation over whichever
// store backend was selected at startup.
type EntryService struct {
	store store.Store
}

func NewEntryService(s store.Store) *EntryService {
	return &EntryService{store: s}
}

// SaveEntry persists an entry. The nutrition summary is always recomputed
// from the item nutrients before the write; a caller-supplied summary that
// disagrees with its items never reaches storage.
func (s *EntryService) SaveEntry(ctx context.Context, entry *models.FoodEntry) (*models.FoodEntry, error) {
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixMilli()
	}
	entry.Summary = entry.ComputedSummary()

	saved, err := s.store.SaveEntry(ctx, entry)
	if err != nil {
		log.Printf("[EntryService] failed to save entry for user %s: %v", entry.UserID, err)
		return nil, err
	}
	return saved, nil
}

// SaveManualEntry persists a hand-typed entry, marking it as manual.
func (s *EntryService) SaveManualEntry(ctx context.Context, entry *models.FoodEntry) (*models.FoodEntry, error) {
	entry.IsManual = true
	return s.SaveEntry(ctx, entry)
}

func (s *EntryService) ListEntries(ctx context.Context, userID uuid.UUID) ([]models.FoodEntry, error) {
	return s.store.ListEntries(ctx, userID)
}

func (s *EntryService) GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.FoodEntry, error) {
	return s.store.GetEntry(ctx, userID, entryID)
}

func (s *EntryService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	return s.store.DeleteEntry(ctx, userID, entryID)
}

func (s *EntryService) SearchEntries(ctx context.Context, userID uuid.UUID, query string) ([]models.FoodEntry, error) {
	return s.store.SearchEntries(ctx, userID, query)
}

// ClearAll wipes the user's entries, profile and goals. There is no undo.
func (s *EntryService) ClearAll(ctx context.Context, userID uuid.UUID) error {
	log.Printf("[EntryService] clearing all data for user %s", userID)
	return s.store.ClearAll(ctx, userID)
}

// EntriesInRange returns entries whose timestamp falls inside [from, to].
func (s *EntryService) EntriesInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.FoodEntry, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	lo, hi := from.UnixMilli(), to.UnixMilli()
	var inRange []models.FoodEntry
	for _, e := range entries {
		if e.Timestamp >= lo && e.Timestamp <= hi {
			inRange = append(inRange, e)
		}
	}
	return inRange, nil
}

// DailyStats sums calories, meal count and nutrient breakdown for the
// calendar day containing date, in date's location.
func (s *EntryService) DailyStats(ctx context.Context, userID uuid.UUID, date time.Time) (DailyStats, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(24*time.Hour - time.Millisecond)

	entries, err := s.EntriesInRange(ctx, userID, start, end)
	if err != nil {
		return DailyStats{}, err
	}

	stats := DailyStats{Date: start.Format("2006-01-02"), TotalMeals: len(entries)}
	for _, e := range entries {
		stats.TotalCalories += e.TotalCalories
		stats.Breakdown = stats.Breakdown.Add(e.Summary)
	}
	return stats, nil
}

// WeeklyStats builds seven consecutive daily aggregates starting at
// weekStart, plus the week total and the rounded daily average.
func (s *EntryService) WeeklyStats(ctx context.Context, userID uuid.UUID, weekStart time.Time) (WeeklyStats, error) {
	var week WeeklyStats
	week.Days = make([]DailyStats, 0, 7)

	for i := 0; i < 7; i++ {
		day, err := s.DailyStats(ctx, userID, weekStart.AddDate(0, 0, i))
		if err != nil {
			return WeeklyStats{}, err
		}
		week.Days = append(week.Days, day)
		week.TotalCalories += day.TotalCalories
	}
	week.WeeklyAverage = math.Round(week.TotalCalories / 7)
	return week, nil
}
