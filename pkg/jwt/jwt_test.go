package jwt

import (
	"testing"
	"time"

	"smart-clinic-backend/config"

	"github.com/google/uuid"
)

func newTestService(secret string) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        secret,
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	service := newTestService("test-secret")
	userID := uuid.New()

	token, tokenID, err := service.GenerateAccessToken(userID, "budi@clinic.test", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken() failed: %v", err)
	}
	if tokenID == "" {
		t.Fatal("token id is empty")
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "budi@clinic.test" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.RoleID != 3 {
		t.Errorf("role id = %d, want 3", claims.RoleID)
	}
	if claims.TokenType != AccessToken {
		t.Errorf("token type = %q, want %q", claims.TokenType, AccessToken)
	}
	if claims.TokenID != tokenID {
		t.Errorf("token id = %q, want %q", claims.TokenID, tokenID)
	}
}

func TestRefreshTokenType(t *testing.T) {
	service := newTestService("test-secret")

	token, _, err := service.GenerateRefreshToken(uuid.New(), "budi@clinic.test", 3)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() failed: %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() failed: %v", err)
	}
	if claims.TokenType != RefreshToken {
		t.Errorf("token type = %q, want %q", claims.TokenType, RefreshToken)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	service := newTestService("test-secret")

	validToken, _, err := service.GenerateAccessToken(uuid.New(), "budi@clinic.test", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken() failed: %v", err)
	}

	expiredService := NewJWTService(config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: -time.Minute,
	})
	expiredToken, _, err := expiredService.GenerateAccessToken(uuid.New(), "budi@clinic.test", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken() failed: %v", err)
	}

	tests := []struct {
		name    string
		service *JWTService
		token   string
	}{
		{"wrong secret", newTestService("other-secret"), validToken},
		{"garbage token", service, "not.a.token"},
		{"expired token", service, expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.service.ValidateToken(tt.token); err == nil {
				t.Error("ValidateToken() accepted a bad token")
			}
		})
	}
}
