package launchpad

import (
	"launch-sniper-sol/internal/consts"
	"launch-sniper-sol/internal/logic/core"
	"launch-sniper-sol/pkg/logger"
)

// ExtractTxEvents 遍历交易的全部指令，抽取发射台事件与 SOL 转账。
// 返回事件集合与解码失败计数：失败只计数跳过，永不中断整笔交易的处理。
// 不含任何发射台指令的交易返回空 TxEvents（调用方据此直接丢弃）。
func ExtractTxEvents(tx *core.AdaptedTx) (result TxEvents, decodeFails int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("extract panic, tx: %s, slot: %d, err: %v", tx.Signature, tx.Slot, r)
			result = TxEvents{}
			decodeFails++
		}
	}()

	for _, ix := range tx.Instructions {
		switch ix.ProgramID {
		case consts.LaunchpadProgram:
			event, decodeErr := DecodeInstruction(tx.Slot, tx, ix)
			if decodeErr != nil {
				// 所有可恢复解码错误一律计数，绝不静默丢弃；
				// 未注册 discriminator（发射台的治理类指令）常见，降级到 debug
				if decodeErr.Kind == ErrUnknownDiscriminator {
					logger.Debugf("skip launchpad ix, tx: %s, ixIndex: %d, err: %v",
						tx.Signature, ix.IxIndex, decodeErr)
				} else {
					logger.Warnf("decode launchpad ix failed, tx: %s, ixIndex: %d, err: %v",
						tx.Signature, ix.IxIndex, decodeErr)
				}
				decodeFails++
				continue
			}
			result.Events = append(result.Events, event)

		case consts.SystemProgram:
			if t := decodeSystemTransfer(ix); t != nil {
				result.Transfers = append(result.Transfers, *t)
			}
		}
	}
	return result, decodeFails
}
