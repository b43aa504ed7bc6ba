package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	router := newTestRouter(t, Deps{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter(t, Deps{})

	req := RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "password123"}

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t, Deps{})

	cases := []RegisterRequest{
		{Name: "", Email: "x@example.com", Password: "password123"},
		{Name: "X", Email: "not-an-email", Password: "password123"},
		{Name: "X", Email: "x@example.com", Password: "short"},
	}
	for _, req := range cases {
		w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := newTestRouter(t, Deps{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: "Carol", Email: "carol@example.com", Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email: "carol@example.com", Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email: "nobody@example.com", Password: "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, Deps{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/entries", "not-a-valid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
