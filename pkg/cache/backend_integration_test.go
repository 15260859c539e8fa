package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// Remote backends are exercised only when an address is provided:
//
//	SAFETYMAP_TEST_REDIS_URL=redis://localhost:6379/15 go test ./pkg/cache/
//	SAFETYMAP_TEST_MONGO_URI=mongodb://localhost:27017 go test ./pkg/cache/

func TestRedisCacheIntegration(t *testing.T) {
	url := os.Getenv("SAFETYMAP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SAFETYMAP_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	exerciseBackend(t, c)
}

func TestMongoCacheIntegration(t *testing.T) {
	uri := os.Getenv("SAFETYMAP_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SAFETYMAP_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	c, err := NewMongoCache(ctx, uri, "safetymap_test", "")
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	defer c.Close()
	exerciseBackend(t, c)
}

func exerciseBackend(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	key := "test:" + t.Name()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v; want payload hit", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get after Delete = hit %v, err %v", hit, err)
	}
}
