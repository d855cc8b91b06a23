package localstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupRedis(t *testing.T) *RedisStore {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedis("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisSaveAndLoad(t *testing.T) {
	store := setupRedis(t)
	ctx := context.Background()

	userJSON := []byte(`{"id":12,"isAdmin":true}`)
	if err := store.SaveSession(ctx, "bearer-abc", userJSON); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	token, user, err := store.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if token != "bearer-abc" {
		t.Errorf("expected token bearer-abc, got %q", token)
	}
	if string(user) != string(userJSON) {
		t.Errorf("expected user %s, got %s", userJSON, user)
	}
}

func TestRedisLoadEmpty(t *testing.T) {
	store := setupRedis(t)

	_, _, err := store.LoadSession(context.Background())
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestRedisClearIdempotent(t *testing.T) {
	store := setupRedis(t)
	ctx := context.Background()

	if err := store.SaveSession(ctx, "tok", []byte(`{"id":1}`)); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
	if _, _, err := store.LoadSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after clear, got %v", err)
	}
}
