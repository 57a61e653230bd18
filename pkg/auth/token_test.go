package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/enums"
)

func tokenConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "scraploop",
		ExpirationMinutes: minutes,
	}
}

func TestMintedTokenRoundTrips(t *testing.T) {
	cfg := tokenConfig(30)
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: userID,
		Role:   enums.ActorRoleRequester,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("user id %s, want %s", claims.UserID, userID)
	}
	if claims.Role != enums.ActorRoleRequester {
		t.Fatalf("role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer %s, want %s", claims.Issuer, cfg.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("a jti must be generated when the payload carries none")
	}

	wantExp := now.Add(30 * time.Minute)
	if gap := claims.ExpiresAt.Sub(wantExp).Abs(); gap >= time.Second {
		t.Fatalf("exp %v, want about %v", claims.ExpiresAt.UTC(), wantExp)
	}
}

func TestParseRejectsTamperedSignature(t *testing.T) {
	cfg := tokenConfig(10)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleCollector,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("tampered token must fail verification")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := tokenConfig(15)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleCollector,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestMintValidatesInputs(t *testing.T) {
	now := time.Now()
	valid := AccessTokenPayload{UserID: uuid.New(), Role: enums.ActorRoleRequester}

	if _, err := MintAccessToken(tokenConfig(5), now, AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("empty role must be rejected")
	}
	if _, err := MintAccessToken(tokenConfig(5), now, AccessTokenPayload{Role: enums.ActorRoleRequester}); err == nil {
		t.Fatal("nil user id must be rejected")
	}
	if _, err := MintAccessToken(tokenConfig(0), now, valid); err == nil {
		t.Fatal("zero ttl must be rejected")
	}
	cfg := tokenConfig(5)
	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, now, valid); err == nil {
		t.Fatal("empty secret must be rejected")
	}
}
