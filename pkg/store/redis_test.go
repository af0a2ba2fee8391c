package store

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/item-service/pkg/item"
)

// setupTestRedis starts a Redis container, skipping when Docker is unavailable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Redis container not available: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		client.Close()
		container.Terminate(context.Background())
	})

	return client
}

func TestNewRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	s := NewRedisStore(client, "")
	if s.redis != client {
		t.Error("Store redis client not set correctly")
	}
	if s.keys.prefix != DefaultKeyPrefix {
		t.Errorf("Expected default prefix %q, got %q", DefaultKeyPrefix, s.keys.prefix)
	}
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil, "")
}

func TestRedisStore_SaveAndFind(t *testing.T) {
	s := NewRedisStore(setupTestRedis(t), "test")
	ctx := context.Background()

	saved, err := s.Save(ctx, item.Item{Name: "Item 1", Description: "desc", Status: "PENDING", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID != 1 {
		t.Errorf("Expected first ID 1, got %d", saved.ID)
	}

	got, err := s.FindByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got != saved {
		t.Errorf("FindByID = %+v, want %+v", got, saved)
	}

	got.Status = item.StatusProcessed
	if _, err := s.Save(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, _ := s.FindByID(ctx, saved.ID)
	if updated.Status != item.StatusProcessed {
		t.Errorf("Expected status %q, got %q", item.StatusProcessed, updated.Status)
	}
}

func TestRedisStore_NotFound(t *testing.T) {
	s := NewRedisStore(setupTestRedis(t), "test")
	ctx := context.Background()

	if _, err := s.FindByID(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteByID(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestRedisStore_ListAndDelete(t *testing.T) {
	s := NewRedisStore(setupTestRedis(t), "test")
	ctx := context.Background()

	for _, id := range []int64{12, 3, 7} {
		if _, err := s.Save(ctx, item.Item{ID: id, Name: "x"}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	ids, err := s.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	want := []int64{3, 7, 12}
	if len(ids) != len(want) {
		t.Fatalf("ListIDs = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ListIDs[%d] = %d, want %d", i, ids[i], want[i])
		}
	}

	if err := s.DeleteByID(ctx, 7); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}

	all, err := s.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != 3 || all[1].ID != 12 {
		t.Errorf("FindAll after delete = %+v", all)
	}
}

func TestRedisStore_FindAllEmpty(t *testing.T) {
	s := NewRedisStore(setupTestRedis(t), "empty")

	all, err := s.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", all)
	}
}

func TestRedisStore_ExplicitIDAdvancesSequence(t *testing.T) {
	s := NewRedisStore(setupTestRedis(t), "test")
	ctx := context.Background()

	if _, err := s.Save(ctx, item.Item{ID: 5, Name: "explicit"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	assigned, err := s.Save(ctx, item.Item{Name: "assigned"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if assigned.ID != 6 {
		t.Errorf("Expected assigned ID 6, got %d", assigned.ID)
	}

	explicit, err := s.FindByID(ctx, 5)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if explicit.Name != "explicit" {
		t.Errorf("Explicit item overwritten: %+v", explicit)
	}

	// A lower explicit ID leaves the sequence alone.
	if _, err := s.Save(ctx, item.Item{ID: 2, Name: "low"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	next, err := s.Save(ctx, item.Item{Name: "next"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if next.ID != 7 {
		t.Errorf("Expected assigned ID 7, got %d", next.ID)
	}
}
