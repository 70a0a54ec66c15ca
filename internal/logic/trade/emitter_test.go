package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/logic/bundle"
	"launch-sniper-sol/internal/logic/launchpad"
	"launch-sniper-sol/internal/monitor"
	"launch-sniper-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) types.Pubkey {
	var k types.Pubkey
	k[0] = b
	return k
}

func testTradeConf() config.TradeConfig {
	return config.TradeConfig{
		BuySolAmount:             0.5,
		SlippagePct:              10.0,
		ComputeUnits:             200_000,
		PriorityFeeMicroLamports: 100_000,
		IntentTTLMs:              3000,
	}
}

func makeQualified(t *testing.T, mint byte) *bundle.Bundle {
	tr := bundle.NewTracker(config.DetectorConfig{
		WindowSlots:        10,
		MinDistinctWallets: 3,
		MaxTrackedBundles:  8,
		RetentionSlots:     100,
	}, monitor.New())

	qualified := tr.Track(launchpad.TxEvents{Events: []*launchpad.Event{
		{Kind: launchpad.KindInitialize, Slot: 100, Mint: key(mint), Wallet: key(0x11),
			Curve: &launchpad.CurveSnapshot{TotalBaseSell: 1000, TotalQuoteFundRaising: 100}},
		{Kind: launchpad.KindBuy, Slot: 101, Mint: key(mint), Wallet: key(0x22), AmountIn: 100},
		{Kind: launchpad.KindBuy, Slot: 102, Mint: key(mint), Wallet: key(0x33), AmountIn: 100},
		{Kind: launchpad.KindBuy, Slot: 103, Mint: key(mint), Wallet: key(0x44), AmountIn: 100},
	}})
	require.Len(t, qualified, 1)
	return qualified[0]
}

type fakeExecutor struct {
	submits []*TradeIntent
	err     error
}

func (f *fakeExecutor) Submit(_ context.Context, intent *TradeIntent) error {
	f.submits = append(f.submits, intent)
	return f.err
}

func TestBuildIntent(t *testing.T) {
	b := makeQualified(t, 1)
	now := time.UnixMilli(1_700_000_000_000)

	intent := BuildIntent(testTradeConf(), b, now)
	assert.Equal(t, b.Mint.String(), intent.Mint)
	assert.Equal(t, "buy", intent.Side)
	assert.Equal(t, uint64(500_000_000), intent.AmountInLamports)
	assert.Equal(t, uint32(1000), intent.SlippageBps)

	// 曲线兑换率 1000/100 = 10，期望 5e9，10% 滑点后 4.5e9
	assert.Equal(t, uint64(4_500_000_000), intent.MinAmountOut)

	assert.Equal(t, uint64(100), intent.CreationSlot)
	assert.Equal(t, uint64(103), intent.QualifiedSlot)
	assert.Equal(t, 3, intent.DistinctWallets)
	assert.Equal(t, now.UnixMilli()+3000, intent.DeadlineMs)
}

func TestEstimateMinOutEdgeCases(t *testing.T) {
	// 曲线缺失时返回 0
	assert.Equal(t, uint64(0), estimateMinOut(nil, 1000, 500))
	assert.Equal(t, uint64(0),
		estimateMinOut(&launchpad.CurveSnapshot{TotalBaseSell: 0, TotalQuoteFundRaising: 1}, 1000, 500))

	// 滑点 100% 等价于无底线
	assert.Equal(t, uint64(0),
		estimateMinOut(&launchpad.CurveSnapshot{TotalBaseSell: 10, TotalQuoteFundRaising: 1}, 1000, 10_000))
}

func TestEmitOncePerMint(t *testing.T) {
	exec := &fakeExecutor{}
	m := monitor.New()
	e := NewEmitter(testTradeConf(), exec, m)
	b := makeQualified(t, 2)

	emitted, err := e.EmitOnce(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, emitted)

	// 同一 mint 第二次为 no-op
	emitted, err = e.EmitOnce(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, emitted)

	require.Len(t, exec.submits, 1, "同一 mint 只允许外发一次")
	assert.Equal(t, uint64(1), m.Snapshot().IntentsEmitted)

	// 不同 mint 互不影响
	emitted, err = e.EmitOnce(context.Background(), makeQualified(t, 3))
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Len(t, exec.submits, 2)
}

func TestEmitFailureNoRetry(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("kafka down")}
	e := NewEmitter(testTradeConf(), exec, monitor.New())
	b := makeQualified(t, 4)

	emitted, err := e.EmitOnce(context.Background(), b)
	assert.True(t, emitted)
	assert.Error(t, err)

	// 失败后同一 mint 不再重发：宁可错过也不重复下单
	emitted, err = e.EmitOnce(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, emitted)
	assert.Len(t, exec.submits, 1)
}
