package bundle

import (
	"launch-sniper-sol/internal/logic/launchpad"
	"launch-sniper-sol/internal/types"
)

// Status 是 Bundle 的生命周期状态。Collecting 为唯一非终态，
// 终态之间互不可达，且每个 Bundle 至多发生一次终态迁移。
type Status uint8

const (
	StatusCollecting Status = iota
	StatusQualified
	StatusRejected
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusCollecting:
		return "collecting"
	case StatusQualified:
		return "qualified"
	case StatusRejected:
		return "rejected"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Contribution 为窗口内观察到的单次参与记录（buy / sell / add_liquidity）
type Contribution struct {
	Wallet    types.Pubkey
	Slot      uint64
	Kind      launchpad.Kind
	AmountIn  uint64
	Signature types.Signature
}

// FundingEdge 为出资关系图的一条边：from 在捆绑窗口内向 to 转过 SOL。
// 仅作辅助证据，不参与状态迁移判定。
type FundingEdge struct {
	From     types.Pubkey
	To       types.Pubkey
	Lamports uint64
}

// Bundle 表示单个 mint 从 Initialize 起跟踪的捆绑候选
type Bundle struct {
	Mint         types.Pubkey
	Pool         types.Pubkey
	Initializer  types.Pubkey
	CreationSlot uint64
	CreationSig  types.Signature

	Meta  *launchpad.TokenMeta
	Curve *launchpad.CurveSnapshot

	Status        Status
	FinalizedSlot uint64 // 进入终态时的 slot，Collecting 期间为 0

	Contributions []Contribution
	Funding       []FundingEdge

	wallets map[types.Pubkey]struct{} // 出资钱包去重集合
}

func newBundle(ev *launchpad.Event) *Bundle {
	b := &Bundle{
		Mint:         ev.Mint,
		Pool:         ev.Pool,
		Initializer:  ev.Wallet,
		CreationSlot: ev.Slot,
		CreationSig:  ev.Signature,
		Meta:         ev.Meta,
		Curve:        ev.Curve,
		Status:       StatusCollecting,
		wallets:      make(map[types.Pubkey]struct{}),
	}
	return b
}

// DistinctWallets 返回去重后的出资参与钱包数。
// 创建者不因 Initialize 本身入账，只有实际出资（buy/deposit）才计入。
func (b *Bundle) DistinctWallets() int {
	return len(b.wallets)
}

// HasWallet 判断钱包是否已参与本捆绑
func (b *Bundle) HasWallet(w types.Pubkey) bool {
	_, ok := b.wallets[w]
	return ok
}

// WalletAmountIn 返回指定钱包的 buy 输入金额合计（lamports）
func (b *Bundle) WalletAmountIn(w types.Pubkey) uint64 {
	var total uint64
	for _, c := range b.Contributions {
		if c.Kind == launchpad.KindBuy && c.Wallet == w {
			total += c.AmountIn
		}
	}
	return total
}

// TotalBuyAmountIn 返回全部 buy 输入金额合计（lamports）
func (b *Bundle) TotalBuyAmountIn() uint64 {
	var total uint64
	for _, c := range b.Contributions {
		if c.Kind == launchpad.KindBuy {
			total += c.AmountIn
		}
	}
	return total
}

func (b *Bundle) addContribution(ev *launchpad.Event) {
	b.Contributions = append(b.Contributions, Contribution{
		Wallet:    ev.Wallet,
		Slot:      ev.Slot,
		Kind:      ev.Kind,
		AmountIn:  ev.AmountIn,
		Signature: ev.Signature,
	})
	b.wallets[ev.Wallet] = struct{}{}
}

// finalize 执行一次性的终态迁移，已处于终态时为 no-op 并返回 false
func (b *Bundle) finalize(to Status, slot uint64) bool {
	if b.Status != StatusCollecting {
		return false
	}
	b.Status = to
	b.FinalizedSlot = slot
	return true
}
