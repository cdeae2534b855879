package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("user@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	parsed, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claims["email"] != "user@example.com" {
		t.Errorf("email claim = %v", claims["email"])
	}
	if claims["type"] != "access" {
		t.Errorf("type claim = %v", claims["type"])
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	if _, err := ValidateJWT("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestRefreshTokenCarriesSession(t *testing.T) {
	token, err := GenerateRefreshToken("user@example.com", "session-123")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	parsed, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sessionId"] != "session-123" {
		t.Errorf("sessionId claim = %v", claims["sessionId"])
	}
	if claims["type"] != "refresh" {
		t.Errorf("type claim = %v", claims["type"])
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !ValidatePassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if ValidatePassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}
