package txadapter

import (
	"fmt"

	"launch-sniper-sol/internal/logic/core"
	"launch-sniper-sol/internal/types"
	"launch-sniper-sol/pkg/utils"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
)

// buildFullAccountKeys 构造交易中完整的账户表（含签名/可写属性）。
// 拼接 message.accountKeys 与 Address Lookup Table 中的 writable / readonly 地址，
// 供后续通过 accountIndex 高效索引使用。
//
// 属性规则（Solana message v0 语义）：
//   - 前 numRequiredSignatures 个为 signer，其中尾部 numReadonlySignedAccounts 个只读；
//   - 静态账户尾部 numReadonlyUnsignedAccounts 个只读；
//   - lookup 表地址依加载区分 writable / readonly，均非 signer。
func buildFullAccountKeys(
	msg *pb.Message,
	loadedWritable, loadedReadonly [][]byte,
) ([]core.AccountMeta, error) {
	staticKeys := msg.AccountKeys
	header := msg.Header
	if header == nil {
		return nil, fmt.Errorf("missing message header")
	}

	numSigners := int(header.NumRequiredSignatures)
	numROSigned := int(header.NumReadonlySignedAccounts)
	numROUnsigned := int(header.NumReadonlyUnsignedAccounts)
	if numSigners == 0 || numSigners > len(staticKeys) {
		return nil, fmt.Errorf("invalid signer count: %d (static keys: %d)", numSigners, len(staticKeys))
	}

	total := len(staticKeys) + len(loadedWritable) + len(loadedReadonly)
	metas := make([]core.AccountMeta, total)

	i := 0 // 写入索引

	// 主账户部分（来自 message.accountKeys）
	for _, b := range staticKeys {
		key, err := types.PubkeyFromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("invalid pubkey in accountKeys at index %d: %w", i, err)
		}
		signer := i < numSigners
		var writable bool
		if signer {
			writable = i < numSigners-numROSigned
		} else {
			writable = i < len(staticKeys)-numROUnsigned
		}
		metas[i] = core.AccountMeta{Key: key, Signer: signer, Writable: writable}
		i++
	}

	// Address Table 中的 writable 部分
	for _, b := range loadedWritable {
		key, err := types.PubkeyFromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("invalid pubkey in loadedWritable at index %d: %w", i, err)
		}
		metas[i] = core.AccountMeta{Key: key, Writable: true}
		i++
	}

	// Address Table 中的 readonly 部分
	for _, b := range loadedReadonly {
		key, err := types.PubkeyFromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("invalid pubkey in loadedReadonly at index %d: %w", i, err)
		}
		metas[i] = core.AccountMeta{Key: key}
		i++
	}
	return metas, nil
}

// buildAdaptedInstructions 扁平化解析主指令与 inner 指令，输出统一结构。
// 每条主指令与其 inner 指令将展开为多条 AdaptedInstruction：
//   - IxIndex：主指令索引；
//   - InnerIndex：0 表示主指令，1 及以上表示对应的 inner 指令序号。
//
// accountIndex 越界的指令返回 error，由调用方计入解码失败。
func buildAdaptedInstructions(
	tx *pb.SubscribeUpdateTransactionInfo,
	accountKeys []core.AccountMeta,
) ([]*core.AdaptedInstruction, error) {
	rawInstructions := tx.Transaction.Message.Instructions
	var rawInners []*pb.InnerInstructions
	if tx.Meta != nil {
		rawInners = tx.Meta.InnerInstructions
	}

	// 预分配容量：假设每条主指令平均含有 2 条 inner 指令，最低保留 8 条
	instructions := make([]*core.AdaptedInstruction, 0, utils.Max(len(rawInstructions)*2, 8))
	innerIndex := 0

	resolve := func(indices []byte) ([]core.AccountMeta, error) {
		accounts := make([]core.AccountMeta, 0, len(indices))
		for _, idx := range indices {
			if int(idx) >= len(accountKeys) {
				return nil, fmt.Errorf("account index %d out of range (total %d)", idx, len(accountKeys))
			}
			accounts = append(accounts, accountKeys[idx])
		}
		return accounts, nil
	}

	for i, inst := range rawInstructions {
		if int(inst.ProgramIdIndex) >= len(accountKeys) {
			return nil, fmt.Errorf("program id index %d out of range (total %d)", inst.ProgramIdIndex, len(accountKeys))
		}
		accounts, err := resolve(inst.Accounts)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, &core.AdaptedInstruction{
			IxIndex:    uint16(i),
			InnerIndex: 0,
			ProgramID:  accountKeys[inst.ProgramIdIndex].Key,
			Accounts:   accounts,
			Data:       inst.Data,
		})

		// 解析 inner 指令（如存在），InnerIndex 从 1 开始递增。
		// inner 列表按主指令索引递增排列，顺序匹配即可，无需 map 或多次扫描。
		if innerIndex < len(rawInners) && int(rawInners[innerIndex].Index) == i {
			for j, inner := range rawInners[innerIndex].Instructions {
				if int(inner.ProgramIdIndex) >= len(accountKeys) {
					return nil, fmt.Errorf("inner program id index %d out of range", inner.ProgramIdIndex)
				}
				innerAccounts, err := resolve(inner.Accounts)
				if err != nil {
					return nil, err
				}
				instructions = append(instructions, &core.AdaptedInstruction{
					IxIndex:    uint16(i),
					InnerIndex: uint16(j + 1),
					ProgramID:  accountKeys[inner.ProgramIdIndex].Key,
					Accounts:   innerAccounts,
					Data:       inner.Data,
				})
			}
			innerIndex++
		}
	}

	return instructions, nil
}

// AdaptGrpcTx 将 gRPC 推送的交易数据解析为内部 AdaptedTx 结构。
// 完整流程：
//  1. 构建账户表（含 Address Lookup 与签名/可写属性）；
//  2. 展平主指令 + inner 指令；
//  3. 返回 AdaptedTx；内部 panic 会被 recover 并转为 error。
func AdaptGrpcTx(slot uint64, tx *pb.SubscribeUpdateTransactionInfo) (_ *core.AdaptedTx, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("AdaptGrpcTx panic: %v", r)
		}
	}()

	if tx == nil || tx.Transaction == nil || tx.Transaction.Message == nil {
		return nil, fmt.Errorf("invalid transaction: missing message")
	}
	if len(tx.Transaction.Signatures) == 0 {
		return nil, fmt.Errorf("invalid transaction: missing signature")
	}
	signature, err := types.SignatureFromBytes(tx.Transaction.Signatures[0])
	if err != nil {
		return nil, fmt.Errorf("invalid transaction signature: %w", err)
	}

	var loadedWritable, loadedReadonly [][]byte
	if tx.Meta != nil {
		loadedWritable = tx.Meta.LoadedWritableAddresses
		loadedReadonly = tx.Meta.LoadedReadonlyAddresses
	}

	accountKeys, err := buildFullAccountKeys(tx.Transaction.Message, loadedWritable, loadedReadonly)
	if err != nil {
		return nil, fmt.Errorf("buildFullAccountKeys error: %w", err)
	}

	instructions, err := buildAdaptedInstructions(tx, accountKeys)
	if err != nil {
		return nil, fmt.Errorf("buildAdaptedInstructions error: %w", err)
	}

	return &core.AdaptedTx{
		Slot:         slot,
		Signature:    signature,
		AccountKeys:  accountKeys,
		Instructions: instructions,
	}, nil
}

// IsValidGrpcTx 预筛上游推送的交易：排除结构缺失、vote 交易与执行失败的交易
func IsValidGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) bool {
	if tx == nil || // - nil transaction info
		tx.Transaction == nil || // - missing Transaction field
		tx.Transaction.Message == nil || // - missing Message field in transaction
		len(tx.Transaction.Signatures) == 0 || // - missing transaction signature
		len(tx.Transaction.Signatures[0]) != 64 || // - invalid transaction signature length
		tx.IsVote || // - vote transaction skipped
		tx.Meta == nil || // - missing transaction meta data
		tx.Meta.Err != nil { // - transaction execution failed
		return false
	}
	return true
}
