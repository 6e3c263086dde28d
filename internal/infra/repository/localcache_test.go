package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/eventgate/scanlink/internal/domain"
	"github.com/eventgate/scanlink/internal/infra/database"
	"github.com/eventgate/scanlink/internal/infra/repository"
)

func openTestCache(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewLocalCacheDB(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLocalCachePutGet(t *testing.T) {
	cache := repository.NewLocalCache(openTestCache(t))

	err := cache.Put(context.Background(), domain.Mapping{
		Token:      "TOKEN-1",
		AttendeeID: "m-1",
		ScopeID:    "evt-1",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := cache.Get(context.Background(), "TOKEN-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AttendeeID != "m-1" || got.ScopeID != "evt-1" {
		t.Fatalf("unexpected mapping %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}
}

func TestLocalCacheOverwrite(t *testing.T) {
	cache := repository.NewLocalCache(openTestCache(t))

	for _, id := range []string{"m-a", "m-b"} {
		err := cache.Put(context.Background(), domain.Mapping{Token: "TOKEN-1", AttendeeID: id})
		if err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	got, err := cache.Get(context.Background(), "TOKEN-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AttendeeID != "m-b" {
		t.Fatalf("expected overwrite to m-b, got %s", got.AttendeeID)
	}
}

func TestLocalCacheMiss(t *testing.T) {
	cache := repository.NewLocalCache(openTestCache(t))

	_, err := cache.Get(context.Background(), "never-seen")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLocalCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	db, err := database.NewLocalCacheDB(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	cache := repository.NewLocalCache(db)
	if err := cache.Put(context.Background(), domain.Mapping{Token: "TOKEN-1", AttendeeID: "m-1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = database.NewLocalCacheDB(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	got, err := repository.NewLocalCache(db).Get(context.Background(), "TOKEN-1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.AttendeeID != "m-1" {
		t.Fatalf("expected m-1 after reopen, got %s", got.AttendeeID)
	}
}
