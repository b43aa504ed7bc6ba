package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

// UserProfile holds the user-editable settings shown on the profile screen.
// At most one per user.
type UserProfile struct {
	ID               uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Name             string         `gorm:"size:100" json:"name"`
	Age              int            `json:"age,omitempty"`
	Weight           float64        `gorm:"type:float" json:"weight,omitempty"`
	Height           float64        `gorm:"type:float" json:"height,omitempty"`
	Gender           string         `gorm:"size:10" json:"gender,omitempty"`
	ActivityLevel    string         `gorm:"size:20" json:"activity_level,omitempty"`
	Goal             string         `gorm:"size:20" json:"goal,omitempty"`
	DailyCalorieGoal int            `json:"daily_calorie_goal,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// DailyGoals holds calorie and macro targets. At most one per user.
type DailyGoals struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Calories  int       `json:"calories"`
	Protein   float64   `gorm:"type:float" json:"protein"`
	Carbs     float64   `gorm:"type:float" json:"carbs"`
	Fat       float64   `gorm:"type:float" json:"fat"`
	Fiber     float64   `gorm:"type:float" json:"fiber"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// APIKey stores a third-party provider credential for a user, one row per
// (user, service) pair.
type APIKey struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;index:idx_api_keys_user_service,unique" json:"user_id"`
	Service      string    `gorm:"size:50;not null;index:idx_api_keys_user_service,unique" json:"service"`
	EncryptedKey string    `gorm:"size:512;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
