package core

import (
	"launch-sniper-sol/internal/types"
)

// Role 表示账户在指令中的角色（WalletRef 的角色标注）
type Role uint8

const (
	RoleReadonly Role = iota
	RoleWritable
	RoleSigner // signer 隐含 writable 与否由 Writable 字段单独表达
)

// AccountMeta 表示交易账户及其签名/可写属性，来源于 message header 与 lookup 表位置
type AccountMeta struct {
	Key      types.Pubkey
	Signer   bool
	Writable bool
}

// Role 返回账户的主导角色：signer > writable > readonly
func (a AccountMeta) Role() Role {
	switch {
	case a.Signer:
		return RoleSigner
	case a.Writable:
		return RoleWritable
	default:
		return RoleReadonly
	}
}

// AdaptedInstruction 表示一条主指令或 inner 指令，来源于 message.instructions 或 innerInstructions。
// 所有指令在预处理阶段已展平，并补充了位置信息（IxIndex、InnerIndex），以支持顺序遍历与事件定位。
type AdaptedInstruction struct {
	IxIndex    uint16        // 主指令索引（从 0 开始）
	InnerIndex uint16        // Inner 指令在主指令中的序号，主指令本身为 0，CPI 调用从 1 开始
	ProgramID  types.Pubkey  // 指令对应的程序 ID
	Accounts   []AccountMeta // 指令涉及的账户列表，保持原始顺序
	Data       []byte        // 指令原始数据，用于判断指令类型与解析参数
}

// AdaptedTx 表示已解析的链上交易结构，是解码/分类流程的核心输入。
// 消费一次即弃，不在流水线下游保留。
type AdaptedTx struct {
	Slot      uint64          // 交易所在 slot
	Signature types.Signature // 首个签名，作为交易唯一标识与去重主键

	// AccountKeys 为完整账户表：message.accountKeys + lookup 表 writable + readonly，
	// 顺序即指令中 accountIndex 的索引空间
	AccountKeys []AccountMeta

	// Instructions 表示交易中的所有指令（主指令与 inner 指令），已按执行顺序展平
	Instructions []*AdaptedInstruction
}

// Signers 返回交易签名者（账户表前 N 个 Signer 账户）
func (tx *AdaptedTx) Signers() []types.Pubkey {
	var out []types.Pubkey
	for _, a := range tx.AccountKeys {
		if !a.Signer {
			break // signer 永远位于账户表头部
		}
		out = append(out, a.Key)
	}
	return out
}
