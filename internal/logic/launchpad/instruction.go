package launchpad

import (
	"launch-sniper-sol/internal/logic/core"
	"launch-sniper-sol/internal/types"
)

// Kind 是指令语义变体的封闭集合。Other 在分类阶段即被丢弃，不进入捆绑跟踪。
type Kind uint8

const (
	KindOther Kind = iota
	KindInitialize
	KindBuy
	KindSell
	KindAddLiquidity
)

func (k Kind) String() string {
	switch k {
	case KindInitialize:
		return "initialize"
	case KindBuy:
		return "buy"
	case KindSell:
		return "sell"
	case KindAddLiquidity:
		return "add_liquidity"
	default:
		return "other"
	}
}

// WalletRef 表示带角色标注的钱包引用
type WalletRef struct {
	Wallet types.Pubkey
	Role   core.Role
}

// TokenMeta 为 Initialize 指令携带的代币元数据（borsh 解码产物）
type TokenMeta struct {
	Decimals uint8
	Name     string
	Symbol   string
	Uri      string
}

// CurveSnapshot 为发射曲线参数快照，供下单时估算期望成交量使用
type CurveSnapshot struct {
	CurveType             uint8 // 0=Constant 1=Fixed 2=Linear
	Supply                uint64
	TotalBaseSell         uint64 // 仅 Constant 曲线有值
	TotalQuoteFundRaising uint64
	MigrateType           uint8
}

// Event 表示分类后的指令事件，是捆绑跟踪器的唯一输入。
// 相同输入字节解码两次必然得到相同 Event（无浮点、无随机性）。
type Event struct {
	Kind      Kind
	Slot      uint64
	Signature types.Signature

	Mint   types.Pubkey // base token mint
	Wallet types.Pubkey // 操作发起钱包（payer）
	Pool   types.Pubkey // pool_state 账户

	AmountIn     uint64 // buy/sell 的输入金额，deposit 的注入金额（lamports / 最小单位）
	MinAmountOut uint64 // buy/sell 的成交下限
	ShareFeeRate uint64

	Meta  *TokenMeta     // 仅 Initialize
	Curve *CurveSnapshot // 仅 Initialize

	Wallets []WalletRef // 角色标注的账户引用（发起者 / mint / pool / vault）
}

// Transfer 表示同交易内观察到的钱包间 SOL 转账（System Program Transfer），
// 仅作为出资关系图的辅助数据
type Transfer struct {
	From     types.Pubkey
	To       types.Pubkey
	Lamports uint64
}

// TxEvents 为单笔交易的抽取结果
type TxEvents struct {
	Events    []*Event
	Transfers []Transfer
}
