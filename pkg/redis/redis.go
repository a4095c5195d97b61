package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"smart-campus/backend/config"
)

// Client Redis 客户端封装
// 当前用于：接口限流、课表只读缓存、租户排课锁
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 接口限流（滑动窗口） ──

// CheckRateLimit 固定 key 的滑动窗口限流
// 返回 true 表示放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	windowStart := now - window.Milliseconds()

	pipe := c.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now), Member: fmt.Sprintf("%d", now)})
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return countCmd.Val() < int64(limit), nil
}

// ── 课表只读缓存 ──
//
// 缓存键携带租户版本号，任何课表写操作只需递增版本号即可整体失效，
// 无需按模式删除键

const (
	timetableCachePrefix = "timetable:grid:"
	timetableVersionKey  = "timetable:ver:"
	timetableCacheTTL    = 5 * time.Minute
)

// TimetableVersion 获取租户当前课表缓存版本（键不存在时视为 0）
func (c *Client) TimetableVersion(ctx context.Context, schoolID string) (int64, error) {
	v, err := c.rdb.Get(ctx, timetableVersionKey+schoolID).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return v, err
}

// BumpTimetableVersion 课表发生写操作后递增版本号，旧缓存自然失效
func (c *Client) BumpTimetableVersion(ctx context.Context, schoolID string) error {
	return c.rdb.Incr(ctx, timetableVersionKey+schoolID).Err()
}

// GetTimetableCache 读取课表缓存
func (c *Client) GetTimetableCache(ctx context.Context, schoolID string, version int64, key string) ([]byte, bool) {
	full := fmt.Sprintf("%s%s:%d:%s", timetableCachePrefix, schoolID, version, key)
	data, err := c.rdb.Get(ctx, full).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetTimetableCache 写入课表缓存
func (c *Client) SetTimetableCache(ctx context.Context, schoolID string, version int64, key string, data []byte) error {
	full := fmt.Sprintf("%s%s:%d:%s", timetableCachePrefix, schoolID, version, key)
	return c.rdb.Set(ctx, full, data, timetableCacheTTL).Err()
}

// ── 租户排课锁 ──
//
// SET NX + TTL 实现，解锁时校验持有者 token，避免误删他人持有的锁。
// 多实例部署下保证同一学校的排课写操作全局串行

const tenantLockPrefix = "timetable:lock:"

// 解锁脚本：仅当值等于持有者 token 时删除
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireTenantLock 尝试获取租户排课锁
// 成功返回持有者 token；锁被占用返回 ok=false
func (c *Client) AcquireTenantLock(ctx context.Context, schoolID string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := c.rdb.SetNX(ctx, tenantLockPrefix+schoolID, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// ReleaseTenantLock 释放租户排课锁（仅限持有者）
func (c *Client) ReleaseTenantLock(ctx context.Context, schoolID, token string) error {
	return unlockScript.Run(ctx, c.rdb, []string{tenantLockPrefix + schoolID}, token).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
