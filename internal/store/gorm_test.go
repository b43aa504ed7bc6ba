package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mealsnap/backend/internal/models"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	s := NewGormStore(db)
	require.NoError(t, s.Migrate())
	return s
}

func sampleEntry(userID uuid.UUID, names ...string) *models.FoodEntry {
	items := make([]models.FoodItem, len(names))
	for i, name := range names {
		items[i] = models.FoodItem{
			Name:      name,
			Calories:  100,
			Weight:    100,
			Unit:      "g",
			Nutrients: models.Nutrients{Protein: 5, Carbs: 10, Fat: 2, Fiber: 1},
		}
	}
	return &models.FoodEntry{
		UserID:        userID,
		Timestamp:     1700000000000,
		TotalCalories: float64(100 * len(names)),
		Items:         items,
	}
}

func TestGormStoreSaveAndGetEntry(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	saved, err := s.SaveEntry(ctx, sampleEntry(userID, "Chicken", "Rice"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	for _, item := range saved.Items {
		assert.Equal(t, saved.ID, item.FoodEntryID)
		assert.NotEqual(t, uuid.Nil, item.ID)
	}

	got, err := s.GetEntry(ctx, userID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	require.Len(t, got.Items, 2)

	// Entries are scoped to their owner.
	_, err = s.GetEntry(ctx, uuid.New(), saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreListOrdersByTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	older := sampleEntry(userID, "Older")
	older.Timestamp = 1000
	newer := sampleEntry(userID, "Newer")
	newer.Timestamp = 2000

	_, err := s.SaveEntry(ctx, older)
	require.NoError(t, err)
	_, err = s.SaveEntry(ctx, newer)
	require.NoError(t, err)

	entries, err := s.ListEntries(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Newer", entries[0].Items[0].Name)
	assert.Equal(t, "Older", entries[1].Items[0].Name)
}

func TestGormStoreDeleteEntryRemovesItems(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	saved, err := s.SaveEntry(ctx, sampleEntry(userID, "A", "B", "C"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteEntry(ctx, userID, saved.ID))

	_, err = s.GetEntry(ctx, userID, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, s.db.Model(&models.FoodItem{}).Where("food_entry_id = ?", saved.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, s.DeleteEntry(ctx, userID, saved.ID), ErrNotFound)
}

func TestGormStoreSearchEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.SaveEntry(ctx, sampleEntry(userID, "Chicken Salad"))
	require.NoError(t, err)
	_, err = s.SaveEntry(ctx, sampleEntry(userID, "Beef Stew"))
	require.NoError(t, err)

	entries, err := s.SearchEntries(ctx, userID, "chicken")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = s.SearchEntries(ctx, userID, "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGormStoreClearAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	_, err := s.SaveEntry(ctx, sampleEntry(userID, "Mine"))
	require.NoError(t, err)
	_, err = s.SaveEntry(ctx, sampleEntry(otherID, "Theirs"))
	require.NoError(t, err)
	require.NoError(t, s.SaveProfile(ctx, &models.UserProfile{UserID: userID, Name: "Me"}))
	require.NoError(t, s.SaveGoals(ctx, &models.DailyGoals{UserID: userID, Calories: 2000}))

	require.NoError(t, s.ClearAll(ctx, userID))

	entries, err := s.ListEntries(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = s.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetGoals(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Other users are untouched, and the store still accepts writes.
	others, err := s.ListEntries(ctx, otherID)
	require.NoError(t, err)
	assert.Len(t, others, 1)

	_, err = s.SaveEntry(ctx, sampleEntry(userID, "Fresh Start"))
	require.NoError(t, err)
}

func TestGormStoreProfileUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, s.SaveProfile(ctx, &models.UserProfile{UserID: userID, Name: "First"}))

	first, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, s.SaveProfile(ctx, &models.UserProfile{UserID: userID, Name: "Second", Age: 30}))

	second, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Second", second.Name)
	assert.Equal(t, 30, second.Age)
}

func TestGormStoreAPIKeyUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.GetAPIKey(ctx, userID, "gemini")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveAPIKey(ctx, userID, "gemini", "key-one"))
	require.NoError(t, s.SaveAPIKey(ctx, userID, "gemini", "key-two"))

	key, err := s.GetAPIKey(ctx, userID, "gemini")
	require.NoError(t, err)
	assert.Equal(t, "key-two", key)

	var count int64
	require.NoError(t, s.db.Model(&models.APIKey{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGormStoreUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
