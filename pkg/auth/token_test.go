package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:   "secret",
		Issuer:   "https://auth.foodlink.test",
		Audience: "authenticated",
	}
}

func TestMintAndParseIdentityToken(t *testing.T) {
	cfg := testJWTConfig()
	subject := uuid.New()

	token, err := MintIdentityToken(cfg, time.Now(), subject, "buyer@example.com", time.Hour)
	if err != nil {
		t.Fatalf("mint identity token: %v", err)
	}

	claims, err := ParseIdentityToken(cfg, token)
	if err != nil {
		t.Fatalf("parse identity token: %v", err)
	}
	id, err := claims.SubjectID()
	if err != nil {
		t.Fatalf("subject id: %v", err)
	}
	if id != subject {
		t.Fatalf("expected subject %s, got %s", subject, id)
	}
	if claims.Email != "buyer@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
}

func TestParseIdentityTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintIdentityToken(cfg, time.Now().Add(-2*time.Hour), uuid.New(), "", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseIdentityToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseIdentityTokenRejectsWrongSecretAndAudience(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintIdentityToken(cfg, time.Now(), uuid.New(), "", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "other"
	if _, err := ParseIdentityToken(other, token); err == nil {
		t.Fatal("expected signature failure")
	}

	other = cfg
	other.Audience = "service_role"
	if _, err := ParseIdentityToken(other, token); err == nil || !strings.Contains(err.Error(), "aud") {
		t.Fatalf("expected audience failure, got %v", err)
	}
}
