package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/auth"
	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/enums"
)

func authConfig(secret string) config.JWTConfig {
	return config.JWTConfig{Secret: secret, Issuer: "issuer", ExpirationMinutes: 60}
}

func signedToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.ActorRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func authedStatus(t *testing.T, cfg config.JWTConfig, header string) int {
	t.Helper()
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp.Code
}

func TestAuthRejectsMissingAndMalformedTokens(t *testing.T) {
	cfg := authConfig("secret")
	if got := authedStatus(t, cfg, ""); got != http.StatusUnauthorized {
		t.Fatalf("no header: %d", got)
	}
	if got := authedStatus(t, cfg, "Bearer "); got != http.StatusUnauthorized {
		t.Fatalf("empty bearer: %d", got)
	}
	if got := authedStatus(t, cfg, "Bearer invalid"); got != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", got)
	}
}

func TestAuthRejectsForeignSignature(t *testing.T) {
	token := signedToken(t, authConfig("other"), uuid.New(), enums.ActorRoleRequester)
	if got := authedStatus(t, authConfig("secret"), "Bearer "+token); got != http.StatusUnauthorized {
		t.Fatalf("foreign signature: %d", got)
	}
}

func TestAuthSeedsIdentityIntoContext(t *testing.T) {
	cfg := authConfig("secret")
	userID := uuid.New()
	token := signedToken(t, cfg, userID, enums.ActorRoleCollector)

	var gotUser, gotRole string
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status %d", resp.Code)
	}
	if gotUser != userID.String() {
		t.Fatalf("user %s, want %s", gotUser, userID)
	}
	if gotRole != string(enums.ActorRoleCollector) {
		t.Fatalf("role %s", gotRole)
	}
}
