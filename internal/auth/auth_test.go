package auth

import (
	"testing"
	"time"

	"hse-compliance/internal/config"
)

func testService() *Service {
	cfg := &config.JWTConfig{
		Secret:     "test-secret",
		Expiration: 24 * time.Hour,
	}
	return NewService(cfg)
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc := testService()

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "" || hash == password {
		t.Errorf("Hash should be non-empty and differ from the password")
	}

	if err := svc.VerifyPassword(hash, password); err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}

	if err := svc.VerifyPassword(hash, "wrongpassword"); err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := testService()

	token, jti, err := svc.GenerateToken(42, "admin@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if jti == "" {
		t.Error("JTI should not be empty")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Expected user ID 42, got %d", claims.UserID)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("Expected email admin@example.com, got %s", claims.Email)
	}
	if claims.ID != jti {
		t.Errorf("Expected JTI %s, got %s", jti, claims.ID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := testService()

	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Error("Should reject a malformed token")
	}
}

func TestExtractJTI(t *testing.T) {
	svc := testService()

	token, jti, err := svc.GenerateToken(1, "admin@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	extracted, err := svc.ExtractJTI(token)
	if err != nil {
		t.Fatalf("Failed to extract JTI: %v", err)
	}
	if extracted != jti {
		t.Errorf("Expected JTI %s, got %s", jti, extracted)
	}
}

func TestNewAssignmentToken(t *testing.T) {
	first, err := NewAssignmentToken()
	if err != nil {
		t.Fatalf("Failed to generate assignment token: %v", err)
	}
	second, err := NewAssignmentToken()
	if err != nil {
		t.Fatalf("Failed to generate assignment token: %v", err)
	}

	if first == second {
		t.Error("Two generated tokens should not collide")
	}

	// 32 bytes base64url without padding = 43 characters
	if len(first) != 43 {
		t.Errorf("Expected 43-character token, got %d characters", len(first))
	}
}
