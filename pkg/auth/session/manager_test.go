package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *fakeStore) AccessSessionKey(accessID string) string {
	return "session:access:" + accessID
}

func newTestManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestGenerateStoresRefreshToken(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := m.Generate(ctx, accessID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}
	stored := store.values[store.AccessSessionKey(accessID)]
	if stored != token {
		t.Fatalf("expected token persisted under the access key")
	}
	if store.ttls[store.AccessSessionKey(accessID)] != time.Hour {
		t.Fatal("expected configured ttl applied")
	}
}

func TestGenerateRequiresAccessID(t *testing.T) {
	m, _ := newTestManager()
	if _, err := m.Generate(context.Background(), "  "); err == nil {
		t.Fatal("expected blank access id to be rejected")
	}
}

func TestRotateIssuesNewPairAndInvalidatesOld(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	oldID := NewAccessID()
	oldToken, err := m.Generate(ctx, oldID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	newID, newToken, err := m.Rotate(ctx, oldID, oldToken)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if newID == oldID {
		t.Fatal("expected a fresh access id")
	}
	if newToken == oldToken {
		t.Fatal("expected a fresh refresh token")
	}
	if _, ok := store.values[store.AccessSessionKey(oldID)]; ok {
		t.Fatal("expected old session removed")
	}
	if store.values[store.AccessSessionKey(newID)] != newToken {
		t.Fatal("expected new session stored")
	}

	// Replaying the old pair must fail.
	if _, _, err := m.Rotate(ctx, oldID, oldToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken on replay, got %v", err)
	}
}

func TestRotateRejectsMismatchedToken(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	if _, err := m.Generate(ctx, accessID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, _, err := m.Rotate(ctx, accessID, "forged-token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevokeEndsSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	if _, err := m.Generate(ctx, accessID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := m.Revoke(ctx, accessID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	active, err := m.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if active {
		t.Fatal("expected session gone after revoke")
	}
}

func TestHasSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	active, err := m.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if active {
		t.Fatal("expected no session before generate")
	}

	if _, err := m.Generate(ctx, accessID); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	active, err = m.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if !active {
		t.Fatal("expected session after generate")
	}
}
