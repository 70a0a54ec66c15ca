package bundle

import (
	"container/heap"
	"sync"

	"launch-sniper-sol/internal/config"
	"launch-sniper-sol/internal/logic/launchpad"
	"launch-sniper-sol/internal/monitor"
	"launch-sniper-sol/internal/types"
	"launch-sniper-sol/pkg/logger"
)

// heapItem 按 creationSlot 排序的索引项。条目可能过期（对应 Bundle 已被移除
// 或被同 mint 的新 Bundle 替换），弹出时按 map 现状惰性校验。
type heapItem struct {
	slot uint64
	mint types.Pubkey
}

type slotHeap []heapItem

func (h slotHeap) Len() int            { return len(h) }
func (h slotHeap) Less(i, j int) bool  { return h[i].slot < h[j].slot }
func (h slotHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *slotHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *slotHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Tracker 是捆绑检测状态机。mint -> Bundle 映射与 creationSlot 小顶堆
// 在同一把锁下成对更新，二者不允许出现中间态。
// 所有状态迁移（Qualified / Rejected / Expired）都只在这里发生。
type Tracker struct {
	mu      sync.Mutex
	conf    config.DetectorConfig
	metrics *monitor.Metrics

	bundles map[types.Pubkey]*Bundle
	index   slotHeap

	maxSlot uint64 // 已观测到的最大 slot，驱动 Sweep 的时间推进
}

func NewTracker(conf config.DetectorConfig, metrics *monitor.Metrics) *Tracker {
	return &Tracker{
		conf:    conf,
		metrics: metrics,
		bundles: make(map[types.Pubkey]*Bundle, conf.MaxTrackedBundles),
	}
}

// ObserveSlot 推进时间基准。接收循环对每笔有效交易调用一次，
// 保证即使窗口内再无发射台事件，Sweep 也能感知链上时间流逝。
func (t *Tracker) ObserveSlot(slot uint64) {
	t.mu.Lock()
	if slot > t.maxSlot {
		t.maxSlot = slot
	}
	t.mu.Unlock()
}

// Track 消费一笔交易抽取出的事件与转账，返回本次新晋 Qualified 的 Bundle。
// 返回的 Bundle 已进入终态，调用方只读使用，无需再持锁。
func (t *Tracker) Track(txe launchpad.TxEvents) []*Bundle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var qualified []*Bundle
	for _, ev := range txe.Events {
		if ev.Slot > t.maxSlot {
			t.maxSlot = ev.Slot
		}
		switch ev.Kind {
		case launchpad.KindInitialize:
			t.onInitialize(ev)
		case launchpad.KindBuy, launchpad.KindAddLiquidity:
			if b := t.onContribution(ev); b != nil {
				qualified = append(qualified, b)
			}
		case launchpad.KindSell:
			// 卖出不是出资行为，不入账、不推动阈值
		}
	}

	for _, tr := range txe.Transfers {
		t.onTransfer(tr)
	}
	return qualified
}

// onInitialize 为新 mint 建立 Bundle。同一 mint 的重复 Initialize 属于
// 结构冲突（程序正常流程不可能发生）：原 Bundle 置为 Rejected 并立即清出。
func (t *Tracker) onInitialize(ev *launchpad.Event) {
	if old, ok := t.bundles[ev.Mint]; ok {
		if old.finalize(StatusRejected, ev.Slot) {
			t.metrics.IncBundlesRejected()
			logger.Warnf("duplicate initialize, mint: %s, firstSlot: %d, dupSlot: %d",
				ev.Mint, old.CreationSlot, ev.Slot)
		}
		delete(t.bundles, ev.Mint)
		return
	}

	t.evictForCapacity()

	b := newBundle(ev)
	t.bundles[ev.Mint] = b
	heap.Push(&t.index, heapItem{slot: b.CreationSlot, mint: b.Mint})
	t.metrics.IncBundlesCreated()
	logger.Infof("bundle created, mint: %s, slot: %d, initializer: %s",
		ev.Mint, ev.Slot, ev.Wallet)
}

// onContribution 把 buy/deposit 记入对应 Bundle。
// 窗口外迟到的参与会触发该 Bundle 的 Expired 终态，且本次参与被丢弃。
// 返回非 nil 表示该事件使 Bundle 达到阈值并晋级 Qualified。
func (t *Tracker) onContribution(ev *launchpad.Event) *Bundle {
	b, ok := t.bundles[ev.Mint]
	if !ok {
		return nil // 未跟踪的 mint（窗口开始前已存在或已被清出）
	}
	if b.Status != StatusCollecting {
		return nil // 终态不可逆，迟到参与一律忽略
	}

	if ev.Slot > b.CreationSlot+t.conf.WindowSlots {
		if b.finalize(StatusExpired, ev.Slot) {
			t.metrics.IncBundlesExpired()
			logger.Infof("bundle expired on late contribution, mint: %s, wallets: %d",
				ev.Mint, b.DistinctWallets())
		}
		return nil
	}

	b.addContribution(ev)
	if b.DistinctWallets() >= t.conf.MinDistinctWallets {
		b.finalize(StatusQualified, ev.Slot)
		t.metrics.IncBundlesQualified()
		logger.Infof("bundle qualified, mint: %s, wallets: %d, slotSpan: %d",
			ev.Mint, b.DistinctWallets(), ev.Slot-b.CreationSlot)
		return b
	}
	return nil
}

// onTransfer 把 SOL 转账挂到接收方正在参与的 Collecting Bundle 上
func (t *Tracker) onTransfer(tr launchpad.Transfer) {
	for _, b := range t.bundles {
		if b.Status == StatusCollecting && b.HasWallet(tr.To) {
			b.Funding = append(b.Funding, FundingEdge{
				From:     tr.From,
				To:       tr.To,
				Lamports: tr.Lamports,
			})
		}
	}
}

// evictForCapacity 在容量耗尽时按 creationSlot 从老到新寻找仍在 Collecting 的
// Bundle，强制置为 Expired 并移除。保留期内的终态 Bundle 不作牺牲品——它们的
// 重复 Initialize 抑制仍有价值——只有在完全找不到 Collecting 时才移除最老的终态。
func (t *Tracker) evictForCapacity() {
	for len(t.bundles) >= t.conf.MaxTrackedBundles && t.index.Len() > 0 {
		var terminal []heapItem // 弹出顺序即 creationSlot 升序
		var victim *Bundle
		for t.index.Len() > 0 {
			item := heap.Pop(&t.index).(heapItem)
			b, ok := t.bundles[item.mint]
			if !ok || b.CreationSlot != item.slot {
				continue // 过期索引项
			}
			if b.Status != StatusCollecting {
				terminal = append(terminal, item)
				continue
			}
			victim = b
			break
		}

		if victim != nil {
			victim.finalize(StatusExpired, t.maxSlot)
			t.metrics.IncBundlesExpired()
			logger.Warnf("bundle force-expired for capacity, mint: %s, createdSlot: %d",
				victim.Mint, victim.CreationSlot)
			delete(t.bundles, victim.Mint)
		} else if len(terminal) > 0 {
			// 全部处于终态保留期：牺牲最老的终态 Bundle 为新发射腾位
			delete(t.bundles, terminal[0].mint)
			terminal = terminal[1:]
		} else {
			return
		}

		// 被跳过的终态条目放回索引
		for _, item := range terminal {
			heap.Push(&t.index, item)
		}
	}
}

// Sweep 周期性扫描：窗口耗尽的 Collecting Bundle 置为 Expired，
// 超过保留窗口的终态 Bundle 从 map 清除。由外部定时器驱动。
func (t *Tracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for mint, b := range t.bundles {
		if b.Status == StatusCollecting && t.maxSlot > b.CreationSlot+t.conf.WindowSlots {
			b.finalize(StatusExpired, t.maxSlot)
			t.metrics.IncBundlesExpired()
			logger.Infof("bundle expired on sweep, mint: %s, wallets: %d",
				mint, b.DistinctWallets())
		}
		if b.Status != StatusCollecting && t.maxSlot > b.FinalizedSlot+t.conf.RetentionSlots {
			delete(t.bundles, mint)
		}
	}

	// 索引只留 map 中仍存在且未超保留期的条目
	if t.index.Len() > len(t.bundles)*2 {
		t.compactIndex()
	}
}

func (t *Tracker) compactIndex() {
	live := t.index[:0]
	for _, item := range t.index {
		if b, ok := t.bundles[item.mint]; ok && b.CreationSlot == item.slot {
			live = append(live, item)
		}
	}
	t.index = live
	heap.Init(&t.index)
}

// TrackedCount 返回当前跟踪中的 Bundle 总数（含终态保留期内的）
func (t *Tracker) TrackedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bundles)
}

// Lookup 按 mint 查询 Bundle，测试与诊断用
func (t *Tracker) Lookup(mint types.Pubkey) (*Bundle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.bundles[mint]
	return b, ok
}
