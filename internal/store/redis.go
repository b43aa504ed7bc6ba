package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mealsnap/backend/internal/models"
)

// RedisStore is the key-value backend. Each record set is one JSON document
// per user, mirroring a device-local encrypted store. Read-modify-write
// sequences are serialized with a per-user in-process lock so concurrent
// saves cannot silently drop an entry.
type RedisStore struct {
	client *redis.Client

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *RedisStore) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func entriesKey(userID uuid.UUID) string {
	return fmt.Sprintf("mealsnap:%s:entries", userID)
}

func profileKey(userID uuid.UUID) string {
	return fmt.Sprintf("mealsnap:%s:profile", userID)
}

func goalsKey(userID uuid.UUID) string {
	return fmt.Sprintf("mealsnap:%s:goals", userID)
}

func apiKeyKey(userID uuid.UUID, service string) string {
	return fmt.Sprintf("mealsnap:%s:apikey:%s", userID, service)
}

func userKey(email string) string {
	return fmt.Sprintf("mealsnap:users:%s", email)
}

// storedUser re-exposes the password hash, which the API-facing model hides
// from JSON.
type storedUser struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

func (s *RedisStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	data, err := json.Marshal(storedUser{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.client.Set(ctx, userKey(user.Email), data, 0).Err()
}

func (s *RedisStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	data, err := s.client.Get(ctx, userKey(email)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	var record storedUser
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	user := record.User
	user.PasswordHash = record.PasswordHash
	return &user, nil
}

func (s *RedisStore) loadEntries(ctx context.Context, userID uuid.UUID) ([]models.FoodEntry, error) {
	data, err := s.client.Get(ctx, entriesKey(userID)).Bytes()
	if err == redis.Nil {
		return []models.FoodEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	var entries []models.FoodEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

func (s *RedisStore) storeEntries(ctx context.Context, userID uuid.UUID, entries []models.FoodEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	if err := s.client.Set(ctx, entriesKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store entries: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveEntry(ctx context.Context, entry *models.FoodEntry) (*models.FoodEntry, error) {
	lock := s.userLock(entry.UserID)
	lock.Lock()
	defer lock.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	for i := range entry.Items {
		if entry.Items[i].ID == uuid.Nil {
			entry.Items[i].ID = uuid.New()
		}
		entry.Items[i].FoodEntryID = entry.ID
	}

	entries, err := s.loadEntries(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}
	entries = append([]models.FoodEntry{*entry}, entries...)
	if err := s.storeEntries(ctx, entry.UserID, entries); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *RedisStore) ListEntries(ctx context.Context, userID uuid.UUID) ([]models.FoodEntry, error) {
	entries, err := s.loadEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortEntriesByTimestamp(entries)
	return entries, nil
}

func (s *RedisStore) GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.FoodEntry, error) {
	entries, err := s.loadEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == entryID {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *RedisStore) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	entries, err := s.loadEntries(ctx, userID)
	if err != nil {
		return err
	}
	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.ID == entryID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrNotFound
	}
	return s.storeEntries(ctx, userID, kept)
}

func (s *RedisStore) SearchEntries(ctx context.Context, userID uuid.UUID, query string) ([]models.FoodEntry, error) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return entries, nil
	}
	var matched []models.FoodEntry
	for _, e := range entries {
		if entryMatchesQuery(e, query) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (s *RedisStore) ClearAll(ctx context.Context, userID uuid.UUID) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	keys := []string{entriesKey(userID), profileKey(userID), goalsKey(userID)}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return s.client.Set(ctx, profileKey(profile.UserID), data, 0).Err()
}

func (s *RedisStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	data, err := s.client.Get(ctx, profileKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

func (s *RedisStore) SaveGoals(ctx context.Context, goals *models.DailyGoals) error {
	if goals.ID == uuid.Nil {
		goals.ID = uuid.New()
	}
	data, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("failed to encode goals: %w", err)
	}
	return s.client.Set(ctx, goalsKey(goals.UserID), data, 0).Err()
}

func (s *RedisStore) GetGoals(ctx context.Context, userID uuid.UUID) (*models.DailyGoals, error) {
	data, err := s.client.Get(ctx, goalsKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	var goals models.DailyGoals
	if err := json.Unmarshal(data, &goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}
	return &goals, nil
}

func (s *RedisStore) SaveAPIKey(ctx context.Context, userID uuid.UUID, service, key string) error {
	return s.client.Set(ctx, apiKeyKey(userID, service), key, 0).Err()
}

func (s *RedisStore) GetAPIKey(ctx context.Context, userID uuid.UUID, service string) (string, error) {
	key, err := s.client.Get(ctx, apiKeyKey(userID, service)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load api key: %w", err)
	}
	return key, nil
}
