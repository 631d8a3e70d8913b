//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRedisCache_Integration(t *testing.T) {
	addr := os.Getenv("TAXONSCOPE_REDIS_ADDR")
	if addr == "" {
		t.Skip("TAXONSCOPE_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	prefix := "taxonscope-test:" + time.Now().Format("150405.000") + ":"
	if err := c.Set(ctx, prefix+"a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, prefix+"a")
	if err != nil || !hit || string(data) != "1" {
		t.Fatalf("Get() = %q, %v, %v; want \"1\", true, nil", data, hit, err)
	}
	if _, hit, _ := c.Get(ctx, prefix+"missing"); hit {
		t.Error("missing key should be a miss")
	}

	_ = c.Set(ctx, prefix+"b", []byte("2"), time.Minute)
	n, err := c.DeletePrefix(ctx, prefix)
	if err != nil {
		t.Fatalf("DeletePrefix() error: %v", err)
	}
	if n != 2 {
		t.Errorf("DeletePrefix() = %d, want 2", n)
	}
}
