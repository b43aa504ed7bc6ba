package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealsnap/backend/internal/models"
)

func TestMemoryStoreEntryLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	saved, err := s.SaveEntry(ctx, sampleEntry(userID, "Omelette"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)

	got, err := s.GetEntry(ctx, userID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Omelette", got.Items[0].Name)

	matches, err := s.SearchEntries(ctx, userID, "ome")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	none, err := s.SearchEntries(ctx, userID, "pizza")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.DeleteEntry(ctx, userID, saved.ID))
	assert.ErrorIs(t, s.DeleteEntry(ctx, userID, saved.ID), ErrNotFound)
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	entry := sampleEntry(userID, "Salad")
	saved, err := s.SaveEntry(ctx, entry)
	require.NoError(t, err)

	// Mutating the caller's copy must not leak into the store.
	entry.Items[0].Name = "Changed"

	got, err := s.GetEntry(ctx, userID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salad", got.Items[0].Name)
}

func TestMemoryStoreProfileAndGoals(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveProfile(ctx, &models.UserProfile{UserID: userID, Name: "One"}))
	require.NoError(t, s.SaveProfile(ctx, &models.UserProfile{UserID: userID, Name: "Two"}))

	profile, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Two", profile.Name)

	require.NoError(t, s.SaveGoals(ctx, &models.DailyGoals{UserID: userID, Calories: 1800}))
	goals, err := s.GetGoals(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1800, goals.Calories)

	require.NoError(t, s.ClearAll(ctx, userID))
	_, err = s.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}
