package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRoundTrip(t *testing.T) {
	router := newTestRouter(t, Deps{})
	token := registerUser(t, router)

	w := doJSON(t, router, http.MethodPut, "/api/v1/profile", token, ProfileRequest{
		Name:             "Dana",
		Age:              28,
		Weight:           70,
		Height:           175,
		ActivityLevel:    "moderate",
		Goal:             "maintain",
		DailyCalorieGoal: 2200,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeBody(t, w)["profile"].(map[string]any)
	assert.Equal(t, "Dana", profile["name"])
	assert.Equal(t, 28.0, profile["age"])
}

func TestProfileValidation(t *testing.T) {
	router := newTestRouter(t, Deps{})
	token := registerUser(t, router)

	w := doJSON(t, router, http.MethodPut, "/api/v1/profile", token, map[string]any{"age": 300})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/profile", token, map[string]any{"weight": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoalsRoundTrip(t *testing.T) {
	router := newTestRouter(t, Deps{})
	token := registerUser(t, router)

	// Unset goals read back as null rather than an error.
	w := doJSON(t, router, http.MethodGet, "/api/v1/profile/goals", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeBody(t, w)["goals"])

	w = doJSON(t, router, http.MethodPut, "/api/v1/profile/goals", token, GoalsRequest{
		Calories: 2000,
		Protein:  120,
		Carbs:    220,
		Fat:      60,
		Fiber:    30,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/profile/goals", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	goals := decodeBody(t, w)["goals"].(map[string]any)
	assert.Equal(t, 2000.0, goals["calories"])
	assert.Equal(t, 120.0, goals["protein"])

	// Goals without calories are rejected.
	w = doJSON(t, router, http.MethodPut, "/api/v1/profile/goals", token, map[string]any{"protein": 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIKeyNeverEchoed(t *testing.T) {
	router := newTestRouter(t, Deps{})
	token := registerUser(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/settings/api-key", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["configured"])

	w = doJSON(t, router, http.MethodPut, "/api/v1/settings/api-key", token, APIKeyRequest{Key: "sk-secret-value-9876"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/settings/api-key", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, true, body["configured"])
	assert.Equal(t, "****9876", body["masked"])
	assert.NotContains(t, w.Body.String(), "sk-secret-value-9876")

	// Empty keys are rejected by validation.
	w = doJSON(t, router, http.MethodPut, "/api/v1/settings/api-key", token, APIKeyRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
