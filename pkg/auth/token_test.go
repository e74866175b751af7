package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storefront",
		ExpirationMinutes: minutes,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, Role: enums.RoleAdmin, JTI: "jti-1"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "jti-1" {
		t.Fatalf("expected jti to be preserved, got %q", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.UTC())
	}
}

func TestMintGeneratesJTI(t *testing.T) {
	cfg := testJWTConfig(5)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig(10)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("expected expired token to parse for refresh: %v", err)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti on expired claims")
	}
}

func TestMintAccessTokenInvalidInput(t *testing.T) {
	cfg := testJWTConfig(5)
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: "OWNER"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.RoleUser}); err == nil {
		t.Fatal("expected missing user id error")
	}
}

func TestMintReportsMissingSigningConfig(t *testing.T) {
	_, err := MintAccessToken(config.JWTConfig{}, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	if !errors.Is(err, ErrSigningConfig) {
		t.Fatalf("expected ErrSigningConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "secret, issuer, expiration") {
		t.Fatalf("expected every missing field named, got %v", err)
	}
}

func TestParseRejectsForeignIssuer(t *testing.T) {
	cfg := testJWTConfig(10)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch")
	}
	if _, err := ParseAccessTokenAllowExpired(other, token); err == nil {
		t.Fatal("issuer is checked even when expiry is ignored")
	}
}

func TestParseToleratesClockSkew(t *testing.T) {
	cfg := testJWTConfig(1)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Minute-10*time.Second), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err != nil {
		t.Fatalf("expected token inside the skew window to parse: %v", err)
	}
}
