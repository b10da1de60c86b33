// Package lock 提供基于Redis的计划级互斥锁。
// 同一计划的启动/暂停/恢复操作在任意时刻只允许一个进行。
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld 计划锁已被其他操作持有
var ErrLockHeld = fmt.Errorf("计划正在被其他操作处理")

// PlanLocker 计划互斥锁
type PlanLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPlanLocker 创建计划锁，ttl<=0 时取默认5分钟
func NewPlanLocker(rdb *redis.Client, ttl time.Duration) *PlanLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlanLocker{rdb: rdb, ttl: ttl}
}

func lockKey(planID string) string {
	return "mes:plan:lock:" + planID
}

// Acquire 尝试获取计划锁（SETNX），返回释放用token。
// 锁被持有时返回 ErrLockHeld。
func (l *PlanLocker) Acquire(ctx context.Context, planID string) (string, error) {
	token := uuid.New().String()
	ok, err := l.rdb.SetNX(ctx, lockKey(planID), token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("获取计划锁失败: %w", err)
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

// 仅持有者可释放，避免TTL过期后误删他人锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Release 释放计划锁，token不匹配时不做任何事
func (l *PlanLocker) Release(ctx context.Context, planID, token string) error {
	return releaseScript.Run(ctx, l.rdb, []string{lockKey(planID)}, token).Err()
}
