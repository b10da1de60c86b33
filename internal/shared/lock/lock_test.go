package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       9,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping: redis unreachable: %v", err)
	}
	t.Cleanup(func() {
		rdb.Close()
	})
	return rdb
}

func TestAcquireRelease(t *testing.T) {
	rdb := setupRedis(t)
	locker := NewPlanLocker(rdb, time.Minute)
	ctx := context.Background()
	planID := fmt.Sprintf("plan-%d", time.Now().UnixNano())

	token, err := locker.Acquire(ctx, planID)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// 锁被持有时第二次获取失败
	if _, err := locker.Acquire(ctx, planID); !errors.Is(err, ErrLockHeld) {
		t.Errorf("expected ErrLockHeld, got %v", err)
	}

	if err := locker.Release(ctx, planID, token); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	// 释放后可重新获取
	token2, err := locker.Acquire(ctx, planID)
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	locker.Release(ctx, planID, token2)
}

func TestReleaseWrongTokenKeepsLock(t *testing.T) {
	rdb := setupRedis(t)
	locker := NewPlanLocker(rdb, time.Minute)
	ctx := context.Background()
	planID := fmt.Sprintf("plan-%d", time.Now().UnixNano())

	token, err := locker.Acquire(ctx, planID)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer locker.Release(ctx, planID, token)

	if err := locker.Release(ctx, planID, "wrong-token"); err != nil {
		t.Fatalf("Release with wrong token errored: %v", err)
	}

	// 锁仍被持有
	if _, err := locker.Acquire(ctx, planID); !errors.Is(err, ErrLockHeld) {
		t.Errorf("expected lock still held, got %v", err)
	}
}
