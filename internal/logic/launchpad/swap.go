package launchpad

import (
	"encoding/binary"

	"launch-sniper-sol/internal/logic/core"
)

// swap 数据布局（buy_exact_in / sell_exact_in 共用）：
//
//	[8]  discriminator
//	[8]  amount_in     (LE) — buy 为 quote 输入，sell 为 base 输入
//	[8]  minimum_amount_out (LE)
//	[8]  share_fee_rate (LE)
const swapDataLen = DiscriminatorLen + 24

// LaunchLab - BuyExactIn / SellExactIn 指令账户布局：
//
// #0  - Payer（用户钱包，signer）
// #1  - Authority（程序派生权限地址）
// #2  - Global 配置账户
// #3  - Platform 配置账户
// #4  - Pool State（池子主账户）
// #5  - 用户 Base TokenAccount
// #6  - 用户 Quote TokenAccount
// #7  - Base Vault（池子 base 金库）
// #8  - Quote Vault（池子 quote 金库）
// #9  - Base Token Mint（被发射代币）
// #10 - Quote Token Mint（WSOL）
// #11 - Base Token Program
// #12 - Quote Token Program
// #13 - Event Authority
// #14 - LaunchLab 程序地址
func decodeSwap(slot uint64, tx *core.AdaptedTx, ix *core.AdaptedInstruction, isBuy bool) (*Event, *DecodeError) {
	if len(ix.Accounts) < 15 {
		return nil, newDecodeError(ErrAccountOutOfRange,
			"swap accounts too few: got=%d, expect>=15", len(ix.Accounts))
	}
	if len(ix.Data) < swapDataLen {
		return nil, newDecodeError(ErrTruncated,
			"swap data too short: got=%d, expect>=%d", len(ix.Data), swapDataLen)
	}

	amountIn := binary.LittleEndian.Uint64(ix.Data[8:16])
	minAmountOut := binary.LittleEndian.Uint64(ix.Data[16:24])
	shareFeeRate := binary.LittleEndian.Uint64(ix.Data[24:32])

	payer := ix.Accounts[0]
	pool := ix.Accounts[4]
	baseVault := ix.Accounts[7]
	quoteVault := ix.Accounts[8]
	baseMint := ix.Accounts[9]

	kind := KindBuy
	if !isBuy {
		kind = KindSell
	}

	return &Event{
		Kind:         kind,
		Slot:         slot,
		Signature:    tx.Signature,
		Mint:         baseMint.Key,
		Wallet:       payer.Key,
		Pool:         pool.Key,
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
		ShareFeeRate: shareFeeRate,
		Wallets: []WalletRef{
			{Wallet: payer.Key, Role: payer.Role()},
			{Wallet: baseMint.Key, Role: baseMint.Role()},
			{Wallet: pool.Key, Role: pool.Role()},
			{Wallet: baseVault.Key, Role: baseVault.Role()},
			{Wallet: quoteVault.Key, Role: quoteVault.Role()},
		},
	}, nil
}
