package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Nutrients holds macronutrient grams for a single item or a whole entry.
type Nutrients struct {
	Protein float64 `gorm:"type:float" json:"protein"`
	Carbs   float64 `gorm:"type:float" json:"carbs"`
	Fat     float64 `gorm:"type:float" json:"fat"`
	Fiber   float64 `gorm:"type:float" json:"fiber"`
}

// Add returns the elementwise sum of two nutrient sets.
func (n Nutrients) Add(other Nutrients) Nutrients {
	return Nutrients{
		Protein: n.Protein + other.Protein,
		Carbs:   n.Carbs + other.Carbs,
		Fat:     n.Fat + other.Fat,
		Fiber:   n.Fiber + other.Fiber,
	}
}

// FoodItem is one food component of a logged meal. Items are owned by their
// parent FoodEntry and are deleted with it.
type FoodItem struct {
	ID            uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	FoodEntryID   uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Calories      float64   `gorm:"type:float" json:"calories"`
	Weight        float64   `gorm:"type:float" json:"weight"`
	Unit          string    `gorm:"size:20" json:"unit"`
	Nutrients     Nutrients `gorm:"embedded" json:"nutrients"`
	Confidence    int       `json:"confidence"`
	PortionAmount float64   `gorm:"type:float" json:"portion_amount"`
	PortionUnit   string    `gorm:"size:50" json:"portion_unit"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MealType values accepted for a FoodEntry.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// FoodEntry is one logged meal, photographed or manual.
//
// TotalCalories is the provider-supplied total at creation time; Summary is
// always the elementwise sum of the item nutrients, recomputed on save.
type FoodEntry struct {
	ID            uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Timestamp     int64           `gorm:"not null;index" json:"timestamp"`
	ImageURI      string          `gorm:"size:2048" json:"image_uri"`
	TotalCalories float64         `gorm:"type:float" json:"total_calories"`
	Confidence    int             `json:"confidence"`
	Summary       Nutrients       `gorm:"embedded;embeddedPrefix:summary_" json:"nutrition_summary"`
	Items         []FoodItem      `gorm:"foreignKey:FoodEntryID;constraint:OnDelete:CASCADE" json:"food_items"`
	MealType      string          `gorm:"size:20" json:"meal_type,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	IsManual      bool            `json:"is_manual"`
	Embedding     pgvector.Vector `gorm:"type:vector(3)" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ComputedSummary sums the nutrients of all items.
func (e *FoodEntry) ComputedSummary() Nutrients {
	var sum Nutrients
	for _, item := range e.Items {
		sum = sum.Add(item.Nutrients)
	}
	return sum
}
