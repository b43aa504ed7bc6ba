package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mealsnap/backend/internal/models"
)

// GormStore is the relational backend. Entries and their items live in
// separate tables; deletes and clears run in a transaction so callers see
// either both gone or neither.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schema for all persisted models.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.DailyGoals{},
		&models.APIKey{},
		&models.FoodEntry{},
		&models.FoodItem{},
	)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) SaveEntry(ctx context.Context, entry *models.FoodEntry) (*models.FoodEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	names := make([]string, len(entry.Items))
	for i := range entry.Items {
		if entry.Items[i].ID == uuid.Nil {
			entry.Items[i].ID = uuid.New()
		}
		entry.Items[i].FoodEntryID = entry.ID
		names[i] = entry.Items[i].Name
	}
	entry.Embedding = GenerateEmbedding(strings.Join(names, " "))

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *GormStore) ListEntries(ctx context.Context, userID uuid.UUID) ([]models.FoodEntry, error) {
	var entries []models.FoodEntry
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *GormStore) GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.FoodEntry, error) {
	var entry models.FoodEntry
	err := s.db.WithContext(ctx).
		Preload("Items").
		First(&entry, "id = ? AND user_id = ?", entryID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *GormStore) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.FoodEntry
		if err := tx.First(&entry, "id = ? AND user_id = ?", entryID, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("food_entry_id = ?", entryID).Delete(&models.FoodItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&entry).Error
	})
}

// SearchEntries orders by embedding distance on postgres and falls back to
// a keyword match elsewhere.
func (s *GormStore) SearchEntries(ctx context.Context, userID uuid.UUID, query string) ([]models.FoodEntry, error) {
	db := s.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID)

	if query != "" {
		if s.db.Dialector.Name() == "postgres" {
			vec := GenerateEmbedding(query)
			db = db.Joins("JOIN food_items ON food_items.food_entry_id = food_entries.id").
				Where("LOWER(food_items.name) LIKE ?", "%"+strings.ToLower(query)+"%").
				Distinct().
				Clauses(clause.OrderBy{
					Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
				})
		} else {
			db = db.Joins("JOIN food_items ON food_items.food_entry_id = food_entries.id").
				Where("LOWER(food_items.name) LIKE ?", "%"+strings.ToLower(query)+"%").
				Distinct()
		}
	}

	var entries []models.FoodEntry
	if err := db.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *GormStore) ClearAll(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.FoodEntry{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("food_entry_id IN ?", ids).Delete(&models.FoodItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.FoodEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.UserProfile{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.DailyGoals{}).Error
	})
}

func (s *GormStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	var existing models.UserProfile
	err := s.db.WithContext(ctx).First(&existing, "user_id = ?", profile.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if profile.ID == uuid.Nil {
			profile.ID = uuid.New()
		}
		return s.db.WithContext(ctx).Create(profile).Error
	}
	if err != nil {
		return err
	}
	profile.ID = existing.ID
	return s.db.WithContext(ctx).Model(&existing).Updates(profile).Error
}

func (s *GormStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *GormStore) SaveGoals(ctx context.Context, goals *models.DailyGoals) error {
	var existing models.DailyGoals
	err := s.db.WithContext(ctx).First(&existing, "user_id = ?", goals.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if goals.ID == uuid.Nil {
			goals.ID = uuid.New()
		}
		return s.db.WithContext(ctx).Create(goals).Error
	}
	if err != nil {
		return err
	}
	goals.ID = existing.ID
	return s.db.WithContext(ctx).Model(&existing).Updates(goals).Error
}

func (s *GormStore) GetGoals(ctx context.Context, userID uuid.UUID) (*models.DailyGoals, error) {
	var goals models.DailyGoals
	err := s.db.WithContext(ctx).First(&goals, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &goals, nil
}

func (s *GormStore) SaveAPIKey(ctx context.Context, userID uuid.UUID, serviceName, key string) error {
	var existing models.APIKey
	err := s.db.WithContext(ctx).First(&existing, "user_id = ? AND service = ?", userID, serviceName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := models.APIKey{
			ID:           uuid.New(),
			UserID:       userID,
			Service:      serviceName,
			EncryptedKey: key,
		}
		return s.db.WithContext(ctx).Create(&record).Error
	}
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&existing).Update("encrypted_key", key).Error
}

func (s *GormStore) GetAPIKey(ctx context.Context, userID uuid.UUID, serviceName string) (string, error) {
	var record models.APIKey
	err := s.db.WithContext(ctx).First(&record, "user_id = ? AND service = ?", userID, serviceName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return record.EncryptedKey, nil
}
