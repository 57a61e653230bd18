package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingStore struct {
	setNXResult bool
	setNXErr    error
	claimedKey  string
	claimedTTL  time.Duration
	deletedKey  string
}

func (s *recordingStore) Get(context.Context, string) (string, error) { return "", nil }

func (s *recordingStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.claimedKey = key
	s.claimedTTL = ttl
	return s.setNXResult, s.setNXErr
}

func (s *recordingStore) IdempotencyKey(scope, id string) string {
	return "sl:idempotency:" + scope + ":" + id
}

func (s *recordingStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		s.deletedKey = keys[0]
	}
	return nil
}

func newTestGuard(t *testing.T, store *recordingStore, ttl time.Duration) *Guard {
	t.Helper()
	guard, err := NewGuard(store, ttl)
	if err != nil {
		t.Fatalf("building guard: %v", err)
	}
	return guard
}

func TestClaimFirstDelivery(t *testing.T) {
	store := &recordingStore{setNXResult: true}
	guard := newTestGuard(t, store, 24*time.Hour)

	eventID := uuid.New()
	first, err := guard.Claim(context.Background(), "domain-notifications", eventID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !first {
		t.Fatal("first delivery must claim successfully")
	}
	wantKey := "sl:idempotency:evt:processed:domain-notifications:" + eventID.String()
	if store.claimedKey != wantKey {
		t.Fatalf("claimed key %q, want %q", store.claimedKey, wantKey)
	}
	if store.claimedTTL != 24*time.Hour {
		t.Fatalf("claim ttl %v", store.claimedTTL)
	}
}

func TestClaimRedelivery(t *testing.T) {
	guard := newTestGuard(t, &recordingStore{setNXResult: false}, time.Hour)

	first, err := guard.Claim(context.Background(), "domain-notifications", uuid.New())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if first {
		t.Fatal("redelivery must not claim")
	}
}

func TestClaimStoreFailure(t *testing.T) {
	guard := newTestGuard(t, &recordingStore{setNXErr: errors.New("boom")}, time.Hour)

	if _, err := guard.Claim(context.Background(), "domain-notifications", uuid.New()); err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestClaimRejectsEmptyIdentity(t *testing.T) {
	guard := newTestGuard(t, &recordingStore{}, time.Hour)

	if _, err := guard.Claim(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("empty consumer must be rejected")
	}
	if _, err := guard.Claim(context.Background(), "domain-notifications", uuid.Nil); err == nil {
		t.Fatal("nil event id must be rejected")
	}
}

func TestReleaseDropsClaim(t *testing.T) {
	store := &recordingStore{}
	guard := newTestGuard(t, store, time.Hour)

	eventID := uuid.New()
	if err := guard.Release(context.Background(), "domain-notifications", eventID); err != nil {
		t.Fatalf("release: %v", err)
	}
	wantKey := "sl:idempotency:evt:processed:domain-notifications:" + eventID.String()
	if store.deletedKey != wantKey {
		t.Fatalf("deleted key %q, want %q", store.deletedKey, wantKey)
	}
}
