package testutil

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hse-compliance/internal/auth"
	"hse-compliance/internal/config"
	"hse-compliance/internal/models"

	"github.com/google/uuid"
)

// AuthHelper issues real tokens backed by session rows so requests pass both
// signature validation and the session check
type AuthHelper struct {
	Service *auth.Service
	DB      *sql.DB
}

// NewAuthHelper creates a new auth helper with an ephemeral signing key
func NewAuthHelper(db *sql.DB) *AuthHelper {
	return &AuthHelper{
		Service: auth.NewService(&config.JWTConfig{Expiration: time.Hour}),
		DB:      db,
	}
}

// IssueToken generates a token for a user and records the matching session
func (h *AuthHelper) IssueToken(t *testing.T, user *models.User) string {
	t.Helper()

	token, jti, err := h.Service.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	_, err = h.DB.Exec(`
		INSERT INTO sessions (id, user_id, jti, expires_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), user.ID, jti, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	return token
}

// AddAuthHeader adds an authorization header to the request
func (h *AuthHelper) AddAuthHeader(t *testing.T, req *http.Request, user *models.User) {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+h.IssueToken(t, user))
}

// CreateAuthenticatedRequest creates a request with an auth header
func (h *AuthHelper) CreateAuthenticatedRequest(t *testing.T, method, url string, user *models.User) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, url, nil)
	h.AddAuthHeader(t, req, user)
	return req
}
