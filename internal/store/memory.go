package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mealsnap/backend/internal/models"
)

func sortEntriesByTimestamp(entries []models.FoodEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}

func entryMatchesQuery(entry models.FoodEntry, query string) bool {
	q := strings.ToLower(query)
	for _, item := range entry.Items {
		if strings.Contains(strings.ToLower(item.Name), q) {
			return true
		}
	}
	return false
}

// MemoryStore keeps everything in process. It backs handler tests and the
// local development mode where neither postgres nor redis is running.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	entries  map[uuid.UUID][]models.FoodEntry
	profiles map[uuid.UUID]models.UserProfile
	goals    map[uuid.UUID]models.DailyGoals
	apiKeys  map[uuid.UUID]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		entries:  make(map[uuid.UUID][]models.FoodEntry),
		profiles: make(map[uuid.UUID]models.UserProfile),
		goals:    make(map[uuid.UUID]models.DailyGoals),
		apiKeys:  make(map[uuid.UUID]map[string]string),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.Email] = *user
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) SaveEntry(ctx context.Context, entry *models.FoodEntry) (*models.FoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	for i := range entry.Items {
		if entry.Items[i].ID == uuid.Nil {
			entry.Items[i].ID = uuid.New()
		}
		entry.Items[i].FoodEntryID = entry.ID
	}
	stored := *entry
	stored.Items = append([]models.FoodItem(nil), entry.Items...)
	s.entries[entry.UserID] = append([]models.FoodEntry{stored}, s.entries[entry.UserID]...)
	return entry, nil
}

func (s *MemoryStore) ListEntries(ctx context.Context, userID uuid.UUID) ([]models.FoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := append([]models.FoodEntry(nil), s.entries[userID]...)
	sortEntriesByTimestamp(entries)
	return entries, nil
}

func (s *MemoryStore) GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.FoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries[userID] {
		if e.ID == entryID {
			found := e
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[userID]
	for i, e := range entries {
		if e.ID == entryID {
			s.entries[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) SearchEntries(ctx context.Context, userID uuid.UUID, query string) ([]models.FoodEntry, error) {
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

func (s *MemoryStore) ClearAll(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, userID)
	delete(s.profiles, userID)
	delete(s.goals, userID)
	return nil
}

func (s *MemoryStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[profile.UserID]; ok {
		profile.ID = existing.ID
	} else if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &profile, nil
}

func (s *MemoryStore) SaveGoals(ctx context.Context, goals *models.DailyGoals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.goals[goals.UserID]; ok {
		goals.ID = existing.ID
	} else if goals.ID == uuid.Nil {
		goals.ID = uuid.New()
	}
	s.goals[goals.UserID] = *goals
	return nil
}

func (s *MemoryStore) GetGoals(ctx context.Context, userID uuid.UUID) (*models.DailyGoals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goals, ok := s.goals[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &goals, nil
}

func (s *MemoryStore) SaveAPIKey(ctx context.Context, userID uuid.UUID, service, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.apiKeys[userID] == nil {
		s.apiKeys[userID] = make(map[string]string)
	}
	s.apiKeys[userID][service] = key
	return nil
}

func (s *MemoryStore) GetAPIKey(ctx context.Context, userID uuid.UUID, service string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.apiKeys[userID][service]
	if !ok {
		return "", ErrNotFound
	}
	return key, nil
}
