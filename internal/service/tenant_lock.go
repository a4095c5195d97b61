package service

import (
	"context"
	"sync"
	"time"

	"smart-campus/backend/pkg/errors"
	"smart-campus/backend/pkg/redis"
)

// 租户排课锁：同一学校的课表写操作（手动增删 + 批量生成）全部串行。
// 进程内用 per-school 互斥锁兜底；配置了 Redis 时再叠加分布式锁，
// 覆盖多实例部署的场景
type tenantLocker struct {
	rdb *redis.Client // 可为 nil（未配置 Redis 时退化为进程内锁）
	mus sync.Map      // schoolID -> *sync.Mutex
	ttl time.Duration
}

func newTenantLocker(rdb *redis.Client) *tenantLocker {
	return &tenantLocker{rdb: rdb, ttl: 30 * time.Second}
}

// Lock 获取某学校的排课写锁，返回解锁函数
// 分布式锁被其他实例占用时返回 errors.ErrTenantLockBusy，调用方直接失败不等待
func (l *tenantLocker) Lock(ctx context.Context, schoolID string) (func(), error) {
	v, _ := l.mus.LoadOrStore(schoolID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	if l.rdb == nil {
		return mu.Unlock, nil
	}

	token, ok, err := l.rdb.AcquireTenantLock(ctx, schoolID, l.ttl)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	if !ok {
		mu.Unlock()
		return nil, errors.ErrTenantLockBusy
	}

	return func() {
		// 解锁不依赖请求上下文，请求被取消也要释放
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = l.rdb.ReleaseTenantLock(releaseCtx, schoolID, token)
		mu.Unlock()
	}, nil
}
