package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mealsnap/backend/internal/models"
	"github.com/mealsnap/backend/internal/store"
)

// VisionKeyService names the provider slot user API keys are stored under.
const VisionKeyService = "gemini"

// SettingsService manages user profile, daily goals and provider
// credentials.
type SettingsService struct {
	store store.Store
}

func NewSettingsService(s store.Store) *SettingsService {
	return &SettingsService{store: s}
}

func (s *SettingsService) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns nil without error when the user has not set one up yet.
func (s *SettingsService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return profile, err
}

func (s *SettingsService) SaveGoals(ctx context.Context, goals *models.DailyGoals) error {
	if err := s.store.SaveGoals(ctx, goals); err != nil {
		return fmt.Errorf("failed to save goals: %w", err)
	}
	return nil
}

func (s *SettingsService) GetGoals(ctx context.Context, userID uuid.UUID) (*models.DailyGoals, error) {
	goals, err := s.store.GetGoals(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return goals, err
}

// SaveVisionKey stores the user's provider credential.
func (s *SettingsService) SaveVisionKey(ctx context.Context, userID uuid.UUID, key string) error {
	if key == "" {
		return errors.New("api key cannot be empty")
	}
	return s.store.SaveAPIKey(ctx, userID, VisionKeyService, key)
}

// VisionKey returns the stored credential, or "" when none is configured.
func (s *SettingsService) VisionKey(ctx context.Context, userID uuid.UUID) (string, error) {
	key, err := s.store.GetAPIKey(ctx, userID, VisionKeyService)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return key, err
}
