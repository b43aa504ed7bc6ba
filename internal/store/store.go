// Package store defines the per-user persistence contract behind the entry
// pipeline and its swappable backends: a relational gorm store and a
// key-value Redis store. Both honor the same contract so the pipeline never
// cares which one was selected at startup.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mealsnap/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist for the
// user.
var ErrNotFound = errors.New("record not found")

// Store is the capability set shared by all persistence backends. Storage
// errors propagate to callers unmodified; a failed write means user data
// loss and must be visible.
type Store interface {
	// CreateUser persists a new account, assigning an id when absent.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail looks an account up for login.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// SaveEntry persists a full denormalized entry, assigning an id when
	// absent, and returns the stored record.
	SaveEntry(ctx context.Context, entry *models.FoodEntry) (*models.FoodEntry, error)
	// ListEntries returns all of the user's entries, most recent timestamp
	// first.
	ListEntries(ctx context.Context, userID uuid.UUID) ([]models.FoodEntry, error)
	// GetEntry returns one entry with its items.
	GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.FoodEntry, error)
	// DeleteEntry removes an entry and its owned items atomically.
	DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error
	// SearchEntries filters the user's entries by food name.
	SearchEntries(ctx context.Context, userID uuid.UUID, query string) ([]models.FoodEntry, error)
	// ClearAll irreversibly removes the user's entries, profile and goals.
	ClearAll(ctx context.Context, userID uuid.UUID) error

	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)

	SaveGoals(ctx context.Context, goals *models.DailyGoals) error
	GetGoals(ctx context.Context, userID uuid.UUID) (*models.DailyGoals, error)

	SaveAPIKey(ctx context.Context, userID uuid.UUID, service, key string) error
	GetAPIKey(ctx context.Context, userID uuid.UUID, service string) (string, error)
}
