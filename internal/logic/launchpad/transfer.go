package launchpad

import (
	"encoding/binary"

	"launch-sniper-sol/internal/consts"
	"launch-sniper-sol/internal/logic/core"
)

// System Program 指令 tag（u32 LE 前缀）
const systemTransferTag = 2

// decodeSystemTransfer 解析 System Program Transfer 指令，失败时静默返回 nil。
// 数据布局：u32 tag (LE) + u64 lamports (LE)，账户 [0]=from [1]=to。
// 转账仅用于出资关系图，不影响捆绑状态机，因此不产生 DecodeError。
func decodeSystemTransfer(ix *core.AdaptedInstruction) *Transfer {
	if ix.ProgramID != consts.SystemProgram {
		return nil
	}
	if len(ix.Data) < 12 || binary.LittleEndian.Uint32(ix.Data[:4]) != systemTransferTag {
		return nil
	}
	if len(ix.Accounts) < 2 {
		return nil
	}
	return &Transfer{
		From:     ix.Accounts[0].Key,
		To:       ix.Accounts[1].Key,
		Lamports: binary.LittleEndian.Uint64(ix.Data[4:12]),
	}
}
