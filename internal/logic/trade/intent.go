package trade

import (
	"math/big"
	"time"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/logic/bundle"
	"launch-sniper-sol/internal/logic/launchpad"
)

const lamportsPerSol = 1_000_000_000

// TradeIntent 是流水线的最终产物：一条可直接驱动下游签名器的下单意图。
// 所有字段来自静态配置与 Bundle 快照，构造过程不做任何链上查询。
type TradeIntent struct {
	IntentID string `json:"intent_id"` // mint + 创建交易签名，天然幂等键
	Mint     string `json:"mint"`
	Pool     string `json:"pool"`
	Side     string `json:"side"` // 目前恒为 "buy"

	AmountInLamports uint64 `json:"amount_in_lamports"`
	MinAmountOut     uint64 `json:"min_amount_out"` // 曲线快照估算 + 滑点折扣，0 表示无法估算
	SlippageBps      uint32 `json:"slippage_bps"`

	ComputeUnits             uint64 `json:"compute_units"`
	PriorityFeeMicroLamports uint64 `json:"priority_fee_micro_lamports"`

	CreationSlot    uint64 `json:"creation_slot"`
	QualifiedSlot   uint64 `json:"qualified_slot"`
	DistinctWallets int    `json:"distinct_wallets"`

	DeadlineMs int64 `json:"deadline_ms"` // UnixMilli，过期的意图下游直接丢弃
}

// BuildIntent 由 Qualified Bundle 与静态下单配置构造意图
func BuildIntent(conf config.TradeConfig, b *bundle.Bundle, now time.Time) *TradeIntent {
	amountIn := uint64(conf.BuySolAmount * lamportsPerSol)
	slippageBps := uint32(conf.SlippagePct * 100)

	return &TradeIntent{
		IntentID:         b.Mint.String() + ":" + b.CreationSig.String(),
		Mint:             b.Mint.String(),
		Pool:             b.Pool.String(),
		Side:             "buy",
		AmountInLamports: amountIn,
		MinAmountOut:     estimateMinOut(b.Curve, amountIn, slippageBps),
		SlippageBps:      slippageBps,

		ComputeUnits:             conf.ComputeUnits,
		PriorityFeeMicroLamports: conf.PriorityFeeMicroLamports,

		CreationSlot:    b.CreationSlot,
		QualifiedSlot:   b.FinalizedSlot,
		DistinctWallets: b.DistinctWallets(),

		DeadlineMs: now.UnixMilli() + int64(conf.IntentTTLMs),
	}
}

// estimateMinOut 按发射曲线快照的初始兑换率估算期望成交量，再按滑点打折：
//
//	expected = amountIn * totalBaseSell / totalQuoteFundRaising
//	minOut   = expected * (10000 - slippageBps) / 10000
//
// 中间乘积可达 ~2^84，必须走 big.Int。曲线参数缺失时返回 0（下游按无底线市价处理）。
func estimateMinOut(curve *launchpad.CurveSnapshot, amountIn uint64, slippageBps uint32) uint64 {
	if curve == nil || curve.TotalBaseSell == 0 || curve.TotalQuoteFundRaising == 0 {
		return 0
	}
	if slippageBps >= 10_000 {
		return 0
	}

	expected := new(big.Int).SetUint64(amountIn)
	expected.Mul(expected, new(big.Int).SetUint64(curve.TotalBaseSell))
	expected.Quo(expected, new(big.Int).SetUint64(curve.TotalQuoteFundRaising))

	expected.Mul(expected, big.NewInt(int64(10_000-slippageBps)))
	expected.Quo(expected, big.NewInt(10_000))

	if !expected.IsUint64() {
		return 0
	}
	return expected.Uint64()
}
