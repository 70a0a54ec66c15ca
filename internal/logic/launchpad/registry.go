package launchpad

import (
	"encoding/binary"

	"launch-sniper-sol/internal/logic/core"
)

// Raydium LaunchLab（bonk.fun）指令 discriminator，
// 即 anchor 规范 sha256("global:<method>") 的前 8 字节，按大端读出便于 switch。
const (
	Initialize uint64 = 0xafaf6d1f0d989bed // initialize
	BuyExactIn uint64 = 0xfaea0d7bd59c13ec // buy_exact_in
	SellExact  uint64 = 0x9527de9bd37c981a // sell_exact_in
	Deposit    uint64 = 0xf223c68952e1f2b6 // deposit

	// DiscriminatorLen discriminator 固定宽度（字节）
	DiscriminatorLen = 8
)

// DecodeInstruction 将发射台程序的单条指令解码并分类为 Event。
// 纯函数：相同字节输入必然得到相同的 Event 或相同的 DecodeError。
// 未注册的 discriminator 返回 ErrUnknownDiscriminator，由调用方计数后跳过。
func DecodeInstruction(slot uint64, tx *core.AdaptedTx, ix *core.AdaptedInstruction) (*Event, *DecodeError) {
	if len(ix.Data) < DiscriminatorLen {
		return nil, newDecodeError(ErrTruncated,
			"data too short for discriminator: got=%d, want>=%d", len(ix.Data), DiscriminatorLen)
	}

	switch binary.BigEndian.Uint64(ix.Data[:DiscriminatorLen]) {
	case Initialize:
		return decodeInitialize(slot, tx, ix)
	case BuyExactIn:
		return decodeSwap(slot, tx, ix, true)
	case SellExact:
		return decodeSwap(slot, tx, ix, false)
	case Deposit:
		return decodeDeposit(slot, tx, ix)
	default:
		return nil, newDecodeError(ErrUnknownDiscriminator,
			"discriminator %x not registered", ix.Data[:DiscriminatorLen])
	}
}
