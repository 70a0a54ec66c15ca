package grpc

import (
	"context"
	"time"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/dedup"
	"launch-sniper-sol/internal/logic/bundle"
	"launch-sniper-sol/internal/logic/filter"
	"launch-sniper-sol/internal/logic/launchpad"
	"launch-sniper-sol/internal/logic/trade"
	"launch-sniper-sol/internal/logic/txadapter"
	"launch-sniper-sol/internal/monitor"
	"launch-sniper-sol/pkg/logger"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
)

// TxProcessor 消费订阅通道，串起 解码 -> 捆绑跟踪 -> 过滤 -> 外发 全流程。
// 单 goroutine 顺序消费：状态机内部已有锁，这里不再引入并行，
// 保证同一 slot 内事件按推送顺序进入跟踪器。
type TxProcessor struct {
	conf    config.SniperConfig
	txChan  chan *pb.SubscribeUpdateTransaction
	dedup   *dedup.Store
	tracker *bundle.Tracker
	engine  *filter.Engine
	emitter *trade.Emitter
	metrics *monitor.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTxProcessor(
	conf config.SniperConfig,
	txChan chan *pb.SubscribeUpdateTransaction,
	dedupStore *dedup.Store,
	tracker *bundle.Tracker,
	engine *filter.Engine,
	emitter *trade.Emitter,
	metrics *monitor.Metrics,
) *TxProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &TxProcessor{
		conf:    conf,
		txChan:  txChan,
		dedup:   dedupStore,
		tracker: tracker,
		engine:  engine,
		emitter: emitter,
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

func (p *TxProcessor) Start() {
	sweepInterval := time.Duration(p.conf.DetectorConf.SweepIntervalSec) * time.Second
	if sweepInterval <= 0 {
		sweepInterval = 2 * time.Second
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	defer close(p.done)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tracker.Sweep()
		case update := <-p.txChan:
			p.handleTx(update)
		}
	}
}

func (p *TxProcessor) Stop() {
	p.cancel()
	<-p.done
}

func (p *TxProcessor) handleTx(update *pb.SubscribeUpdateTransaction) {
	tx := update.Transaction
	if !txadapter.IsValidGrpcTx(tx) {
		return
	}

	adapted, err := txadapter.AdaptGrpcTx(update.Slot, tx)
	if err != nil {
		p.metrics.IncDecodeFailures()
		logger.Warnf("adapt tx failed, slot: %d, err: %v", update.Slot, err)
		return
	}

	// 签名判重在解码之后：解码失败的交易不占用去重容量
	if p.dedup.Seen(p.ctx, adapted.Signature) {
		return
	}

	p.tracker.ObserveSlot(adapted.Slot)

	txe, fails := launchpad.ExtractTxEvents(adapted)
	for i := 0; i < fails; i++ {
		p.metrics.IncDecodeFailures()
	}
	if len(txe.Events) == 0 && len(txe.Transfers) == 0 {
		return
	}
	if len(txe.Events) > 0 {
		p.metrics.IncTxDecoded()
	}

	for _, b := range p.tracker.Track(txe) {
		p.onQualified(b)
	}
}

// onQualified 对新晋 Qualified 的 Bundle 依次执行过滤与幂等外发
func (p *TxProcessor) onQualified(b *bundle.Bundle) {
	result := p.engine.Evaluate(b)
	if !result.Pass {
		p.metrics.IncFilterRejected()
		logger.Infof("bundle filtered, mint: %s, rule: %s", b.Mint, result.FailedRule)
		return
	}

	emitted, err := p.emitter.EmitOnce(p.ctx, b)
	if err != nil {
		// EmitOnce 内部已记录错误；幂等标记已落下，不重试
		return
	}
	if !emitted {
		logger.Infof("intent already emitted for mint: %s, skip", b.Mint)
	}
}
