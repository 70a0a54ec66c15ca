package filter

import (
	"os"
	"path/filepath"
	"testing"

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

type buyRec struct {
	wallet byte
	amount uint64
}

// 通过真实的 Tracker 构造一个 Qualified Bundle：创建者 0x11，
// buys 按给定顺序入账。阈值取 buy 的去重钱包数（创建者不因 Initialize
// 入账），最后一个新钱包触发晋级，因此重复钱包必须排在列表前部。
func makeQualified(t *testing.T, name string, buys []buyRec) *bundle.Bundle {
	distinct := make(map[byte]struct{}, len(buys))
	for _, b := range buys {
		distinct[b.wallet] = struct{}{}
	}

	tr := bundle.NewTracker(config.DetectorConfig{
		WindowSlots:        10,
		MinDistinctWallets: len(distinct),
		MaxTrackedBundles:  8,
		RetentionSlots:     100,
	}, monitor.New())

	events := []*launchpad.Event{{
		Kind:   launchpad.KindInitialize,
		Slot:   100,
		Mint:   key(1),
		Wallet: key(0x11),
		Meta:   &launchpad.TokenMeta{Name: name, Symbol: "C", Uri: "https://example.com/m.json"},
		Curve:  &launchpad.CurveSnapshot{TotalBaseSell: 1000, TotalQuoteFundRaising: 100},
	}}
	for i, b := range buys {
		events = append(events, &launchpad.Event{
			Kind:     launchpad.KindBuy,
			Slot:     uint64(101 + i),
			Mint:     key(1),
			Wallet:   key(b.wallet),
			AmountIn: b.amount,
		})
	}

	qualified := tr.Track(launchpad.TxEvents{Events: events})
	require.Len(t, qualified, 1, "构造的事件序列必须产出一个 Qualified Bundle")
	return qualified[0]
}

func defaultBuys() []buyRec {
	return []buyRec{{0x22, 500_000_000}, {0x33, 400_000_000}, {0x44, 100_000_000}}
}

func TestEngineAllPass(t *testing.T) {
	e, err := NewEngine(config.FilterConfig{MaxWalletDominancePct: 60}, 3, nil)
	require.NoError(t, err)

	r := e.Evaluate(makeQualified(t, "Good Coin", defaultBuys()))
	assert.True(t, r.Pass)
	assert.Empty(t, r.FailedRule)
}

func TestMinDistinctWallets(t *testing.T) {
	e, err := NewEngine(config.FilterConfig{}, 5, nil)
	require.NoError(t, err)

	// 3 个去重钱包，引擎阈值 5，复核不通过
	r := e.Evaluate(makeQualified(t, "Coin", defaultBuys()))
	assert.False(t, r.Pass)
	assert.Equal(t, "min_distinct_wallets", r.FailedRule)
}

func TestWalletDominance(t *testing.T) {
	e, err := NewEngine(config.FilterConfig{MaxWalletDominancePct: 50}, 3, nil)
	require.NoError(t, err)

	// 0x22 占 900/1000 = 90%
	b := makeQualified(t, "Coin", []buyRec{{0x22, 900}, {0x33, 50}, {0x44, 50}})
	r := e.Evaluate(b)
	assert.False(t, r.Pass)
	assert.Equal(t, "wallet_dominance", r.FailedRule)

	// 500/1000 恰好在上限上，放行
	b = makeQualified(t, "Coin", []buyRec{{0x22, 500}, {0x33, 250}, {0x44, 250}})
	assert.True(t, e.Evaluate(b).Pass)
}

// 极端大额下占比判定不得因 uint64 乘法回绕而放行
func TestWalletDominanceOverflow(t *testing.T) {
	e, err := NewEngine(config.FilterConfig{MaxWalletDominancePct: 50}, 3, nil)
	require.NoError(t, err)

	// 2^62 * 100 回绕为 0 mod 2^64，朴素乘法会误判为占比 0
	b := makeQualified(t, "Coin", []buyRec{{0x22, 1 << 62}, {0x33, 1}, {0x44, 1}})
	r := e.Evaluate(b)
	assert.False(t, r.Pass)
	assert.Equal(t, "wallet_dominance", r.FailedRule)
}

func TestDevBuyLimit(t *testing.T) {
	e, err := NewEngine(config.FilterConfig{
		DevBuyCheck:  true,
		DevBuyMaxSol: 0.5,
	}, 3, nil)
	require.NoError(t, err)

	// 创建者 0x11 自买 1 SOL，超过 0.5 SOL 上限
	buys := []buyRec{{0x11, 1_000_000_000}, {0x22, 100}, {0x33, 100}}
	r := e.Evaluate(makeQualified(t, "Coin", buys))
	assert.False(t, r.Pass)
	assert.Equal(t, "dev_buy_limit", r.FailedRule)

	// 自买 0.3 SOL 放行
	buys[0].amount = 300_000_000
	assert.True(t, e.Evaluate(makeQualified(t, "Coin", buys)).Pass)
}

func TestTokenNameLists(t *testing.T) {
	e, err := NewEngine(config.FilterConfig{
		TokenNameCheck: true,
		NameAllowList:  []string{"dog", "cat"},
		NameDenyList:   []string{"scam"},
	}, 3, nil)
	require.NoError(t, err)

	assert.True(t, e.Evaluate(makeQualified(t, "Super DOG Coin", defaultBuys())).Pass,
		"allow 匹配大小写不敏感")

	r := e.Evaluate(makeQualified(t, "Dog Scam Coin", defaultBuys()))
	assert.Equal(t, "token_name", r.FailedRule, "deny 优先于 allow")

	r = e.Evaluate(makeQualified(t, "Bird Coin", defaultBuys()))
	assert.Equal(t, "token_name", r.FailedRule, "allow 非空时必须命中")
}

type fakeMeta struct{ has bool }

func (f fakeMeta) HasSocialLinks(string) bool { return f.has }

func TestSocialCheck(t *testing.T) {
	e, err := NewEngine(config.FilterConfig{SocialCheck: true}, 3, fakeMeta{has: false})
	require.NoError(t, err)
	r := e.Evaluate(makeQualified(t, "Coin", defaultBuys()))
	assert.Equal(t, "social_links", r.FailedRule)

	e, err = NewEngine(config.FilterConfig{SocialCheck: true}, 3, fakeMeta{has: true})
	require.NoError(t, err)
	assert.True(t, e.Evaluate(makeQualified(t, "Coin", defaultBuys())).Pass)

	// 未配置提供方时规则跳过
	e, err = NewEngine(config.FilterConfig{SocialCheck: true}, 3, nil)
	require.NoError(t, err)
	assert.True(t, e.Evaluate(makeQualified(t, "Coin", defaultBuys())).Pass)
}

func TestListsFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allow:\n  - moon\ndeny:\n  - rug\n"), 0o644))

	e, err := NewEngine(config.FilterConfig{
		TokenNameCheck: true,
		NameAllowList:  []string{"ignored"},
		ListsFile:      path,
	}, 3, nil)
	require.NoError(t, err)

	assert.True(t, e.Evaluate(makeQualified(t, "To The Moon", defaultBuys())).Pass)
	assert.Equal(t, "token_name", e.Evaluate(makeQualified(t, "Rug Moon", defaultBuys())).FailedRule)
	assert.Equal(t, "token_name", e.Evaluate(makeQualified(t, "Ignored Coin", defaultBuys())).FailedRule,
		"lists_file 必须覆盖内联列表")
}
