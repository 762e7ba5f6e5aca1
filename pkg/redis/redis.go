package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coursepath/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、写接口限流与学位审计结果缓存
type Client struct {
	rdb      *goredis.Client
	auditTTL time.Duration
	logger   *zap.Logger
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

	ttl := cfg.AuditCacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Client{rdb: rdb, auditTTL: ttl, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：窗口内请求数不超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	min := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", min)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return card.Val() <= int64(limit), nil
}

// ── 审计缓存 ──

const auditPrefix = "audit:student:"

// GetAudit 读取学生审计缓存，未命中返回 false
func (c *Client) GetAudit(ctx context.Context, studentID string, dst interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, auditPrefix+studentID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// 缓存格式不兼容时视为未命中
		c.logger.Warn("审计缓存解析失败", zap.String("student_id", studentID), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// SetAudit 写入学生审计缓存
func (c *Client) SetAudit(ctx context.Context, studentID string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, auditPrefix+studentID, raw, c.auditTTL).Err()
}

// InvalidateAudit 计划变更后清除学生审计缓存
func (c *Client) InvalidateAudit(ctx context.Context, studentID string) error {
	return c.rdb.Del(ctx, auditPrefix+studentID).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
