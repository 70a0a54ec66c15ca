package launchpad

import (
	"encoding/binary"

	"launch-sniper-sol/internal/logic/core"
)

// deposit 数据布局：
//
//	[8] discriminator
//	[8] amount (LE) — 注入的 quote 数量
const depositDataLen = DiscriminatorLen + 8

// LaunchLab - Deposit 指令账户布局（与 swap 布局前缀一致）：
//
// #0 - Payer（注入方钱包，signer）
// #1 - Authority
// #2 - Global 配置账户
// #3 - Platform 配置账户
// #4 - Pool State（池子主账户）
// #5+ - 用户/池子 token account 与 mint
func decodeDeposit(slot uint64, tx *core.AdaptedTx, ix *core.AdaptedInstruction) (*Event, *DecodeError) {
	if len(ix.Accounts) < 10 {
		return nil, newDecodeError(ErrAccountOutOfRange,
			"deposit accounts too few: got=%d, expect>=10", len(ix.Accounts))
	}
	if len(ix.Data) < depositDataLen {
		return nil, newDecodeError(ErrTruncated,
			"deposit data too short: got=%d, expect>=%d", len(ix.Data), depositDataLen)
	}

	payer := ix.Accounts[0]
	pool := ix.Accounts[4]
	baseMint := ix.Accounts[9]

	return &Event{
		Kind:      KindAddLiquidity,
		Slot:      slot,
		Signature: tx.Signature,
		Mint:      baseMint.Key,
		Wallet:    payer.Key,
		Pool:      pool.Key,
		AmountIn:  binary.LittleEndian.Uint64(ix.Data[8:16]),
		Wallets: []WalletRef{
			{Wallet: payer.Key, Role: payer.Role()},
			{Wallet: baseMint.Key, Role: baseMint.Role()},
			{Wallet: pool.Key, Role: pool.Role()},
		},
	}, nil
}
