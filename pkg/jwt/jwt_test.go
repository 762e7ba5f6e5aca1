package jwt

import (
	"testing"
	"time"

	"coursepath/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		Issuer:         "coursepath",
		AccessTokenTTL: 15 * time.Minute,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "advisor")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != "advisor" {
		t.Errorf("期望 Role=advisor，实际=%s", claims.Role)
	}
	if claims.ID == "" {
		t.Error("期望生成 jti")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		Issuer:         "coursepath",
		AccessTokenTTL: -time.Minute,
	})
	token, _ := m.GenerateAccessToken("user-1", "student")

	if _, err := m.ParseToken(token); err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际=%v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := newTestManager().GenerateAccessToken("user-1", "student")

	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-key-for-testing-000",
		Issuer:         "coursepath",
		AccessTokenTTL: time.Minute,
	})
	if _, err := other.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		Issuer:         "someone-else",
		AccessTokenTTL: time.Minute,
	})
	token, _ := m.GenerateAccessToken("user-1", "student")

	if _, err := newTestManager().ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := newTestManager().ParseToken("not-a-token"); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}
