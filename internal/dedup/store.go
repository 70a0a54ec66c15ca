package dedup

import (
	"context"
	"sync"
	"time"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/types"
	"launch-sniper-sol/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const defaultMemoryCap = 65536

// Store 交易签名去重：上游为 at-least-once 推送，同一签名可能重复到达。
// 进程内缓存承担快路径；Redis 为可选的跨重启补充，查询失败时退化为仅内存判重，
// 绝不因 Redis 故障阻断流水线。
type Store struct {
	mu    sync.Mutex
	seen  map[types.Signature]struct{}
	order []types.Signature // FIFO 淘汰序
	cap   int

	rdb *redis.Client // 可为 nil
	ttl time.Duration
}

func NewStore(c config.DedupConfig) *Store {
	capacity := c.MemoryCap
	if capacity <= 0 {
		capacity = defaultMemoryCap
	}

	var rdb *redis.Client
	if c.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	}

	ttl := time.Duration(c.TTLSec) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Store{
		seen:  make(map[types.Signature]struct{}, capacity),
		order: make([]types.Signature, 0, capacity),
		cap:   capacity,
		rdb:   rdb,
		ttl:   ttl,
	}
}

// Seen 判断签名是否已处理过，并原子地登记。返回 true 表示重复，应丢弃该更新。
func (s *Store) Seen(ctx context.Context, sig types.Signature) bool {
	s.mu.Lock()
	if _, ok := s.seen[sig]; ok {
		s.mu.Unlock()
		return true
	}
	s.insertLocked(sig)
	s.mu.Unlock()

	if s.rdb == nil {
		return false
	}

	// SETNX：首次写入成功说明未见过；写入失败说明其他实例/上次运行已处理
	ok, err := s.rdb.SetNX(ctx, "sniper:sig:"+sig.String(), 1, s.ttl).Result()
	if err != nil {
		logger.Warnf("[dedup] redis setnx failed, fallback to memory only: %v", err)
		return false
	}
	return !ok
}

// insertLocked 登记签名并按 FIFO 淘汰最旧记录
func (s *Store) insertLocked(sig types.Signature) {
	if len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
	s.seen[sig] = struct{}{}
	s.order = append(s.order, sig)
}

// Close 释放 Redis 连接（若有）
func (s *Store) Close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}
