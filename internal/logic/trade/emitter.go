package trade

import (
	"context"
	"sync"
	"time"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/logic/bundle"
	"launch-sniper-sol/internal/monitor"
	"launch-sniper-sol/internal/types"
	"launch-sniper-sol/pkg/logger"
)

// Executor 接收构造完成的意图并外发（Kafka 等）。
// Submit 返回 error 仅用于记录，Emitter 不会为同一 mint 重试。
type Executor interface {
	Submit(ctx context.Context, intent *TradeIntent) error
}

// Emitter 保证每个 mint 至多外发一次意图。
// 幂等标记在 Submit 之前落下：外发失败宁可错过，也不允许重复下单。
type Emitter struct {
	conf    config.TradeConfig
	exec    Executor
	metrics *monitor.Metrics

	mu      sync.Mutex
	emitted map[types.Pubkey]struct{}
}

func NewEmitter(conf config.TradeConfig, exec Executor, metrics *monitor.Metrics) *Emitter {
	return &Emitter{
		conf:    conf,
		exec:    exec,
		metrics: metrics,
		emitted: make(map[types.Pubkey]struct{}),
	}
}

// EmitOnce 为 Qualified 且通过过滤的 Bundle 构造并外发意图。
// 返回 false 表示该 mint 已发过，本次为 no-op。
func (e *Emitter) EmitOnce(ctx context.Context, b *bundle.Bundle) (bool, error) {
	e.mu.Lock()
	if _, dup := e.emitted[b.Mint]; dup {
		e.mu.Unlock()
		return false, nil
	}
	e.emitted[b.Mint] = struct{}{}
	e.mu.Unlock()

	intent := BuildIntent(e.conf, b, time.Now())
	if err := e.exec.Submit(ctx, intent); err != nil {
		logger.Errorf("submit intent failed, mint: %s, err: %v", intent.Mint, err)
		return true, err
	}

	e.metrics.IncIntentsEmitted()
	logger.Infof("intent emitted, mint: %s, amountIn: %d, minOut: %d, wallets: %d",
		intent.Mint, intent.AmountInLamports, intent.MinAmountOut, intent.DistinctWallets)
	return true, nil
}
