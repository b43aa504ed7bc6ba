package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mealsnap/backend/internal/models"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("mealtype", validMealType)
	}
}

func validMealType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.MealBreakfast, models.MealLunch, models.MealDinner, models.MealSnack:
		return true
	}
	return false
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// IdentifyRequest carries the captured photo as base64. The server
// re-optimizes it before the provider call.
type IdentifyRequest struct {
	Image string `json:"image" binding:"required"`
}

type ReviewItemRequest struct {
	Name          string `json:"name,omitempty"`
	Quantity      string `json:"quantity,omitempty"`
	EstimatedSize string `json:"estimated_size,omitempty"`
}

type AdjustQuantityRequest struct {
	Delta float64 `json:"delta" binding:"required"`
}

type CalculateRequest struct {
	ImageURI  string `json:"image_uri,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	MealType  string `json:"meal_type,omitempty" binding:"omitempty,mealtype"`
	Notes     string `json:"notes,omitempty"`
}

// ManualEntryRequest logs a meal the user typed in without a photo.
type ManualEntryRequest struct {
	Timestamp int64             `json:"timestamp,omitempty"`
	MealType  string            `json:"meal_type,omitempty" binding:"omitempty,mealtype"`
	Notes     string            `json:"notes,omitempty"`
	Items     []ManualItemInput `json:"items" binding:"required,min=1,dive"`
}

type ManualItemInput struct {
	Name     string  `json:"name" binding:"required"`
	Calories float64 `json:"calories" binding:"required,gt=0"`
	Weight   float64 `json:"weight,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
}

type ProfileRequest struct {
	Name             string  `json:"name,omitempty"`
	Age              int     `json:"age,omitempty" binding:"omitempty,gte=0,lte=150"`
	Weight           float64 `json:"weight,omitempty" binding:"omitempty,gt=0"`
	Height           float64 `json:"height,omitempty" binding:"omitempty,gt=0"`
	Gender           string  `json:"gender,omitempty"`
	ActivityLevel    string  `json:"activity_level,omitempty"`
	Goal             string  `json:"goal,omitempty"`
	DailyCalorieGoal int     `json:"daily_calorie_goal,omitempty" binding:"omitempty,gte=0"`
}

type GoalsRequest struct {
	Calories int     `json:"calories" binding:"required,gt=0"`
	Protein  float64 `json:"protein,omitempty" binding:"omitempty,gte=0"`
	Carbs    float64 `json:"carbs,omitempty" binding:"omitempty,gte=0"`
	Fat      float64 `json:"fat,omitempty" binding:"omitempty,gte=0"`
	Fiber    float64 `json:"fiber,omitempty" binding:"omitempty,gte=0"`
}

type APIKeyRequest struct {
	Key string `json:"key" binding:"required"`
}
