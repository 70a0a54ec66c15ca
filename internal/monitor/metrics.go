package monitor

import (
	"sync/atomic"
	"time"
)

// Metrics 汇总流水线各环节的运行计数，供外部观测方轮询。
// 所有计数器只增不减；可恢复错误必须落到对应计数器上，不允许静默丢弃。
type Metrics struct {
	updatesReceived uint64 // 收到的上游推送条数
	txDecoded       uint64 // 成功解码出目标程序指令的交易数
	decodeFailures  uint64 // 解码失败（截断 / 未知 discriminator / 账户越界）

	bundlesCreated   uint64
	bundlesQualified uint64
	bundlesRejected  uint64
	bundlesExpired   uint64

	filterRejected uint64 // Qualified 后被过滤规则拦下（预期终态，非错误）
	intentsEmitted uint64

	lastActivityNs int64 // 最近一次收到上游数据的时间（UnixNano）
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncUpdatesReceived() { atomic.AddUint64(&m.updatesReceived, 1) }
func (m *Metrics) IncTxDecoded()       { atomic.AddUint64(&m.txDecoded, 1) }
func (m *Metrics) IncDecodeFailures()  { atomic.AddUint64(&m.decodeFailures, 1) }

func (m *Metrics) IncBundlesCreated()   { atomic.AddUint64(&m.bundlesCreated, 1) }
func (m *Metrics) IncBundlesQualified() { atomic.AddUint64(&m.bundlesQualified, 1) }
func (m *Metrics) IncBundlesRejected()  { atomic.AddUint64(&m.bundlesRejected, 1) }
func (m *Metrics) IncBundlesExpired()   { atomic.AddUint64(&m.bundlesExpired, 1) }

func (m *Metrics) IncFilterRejected() { atomic.AddUint64(&m.filterRejected, 1) }
func (m *Metrics) IncIntentsEmitted() { atomic.AddUint64(&m.intentsEmitted, 1) }

// TouchActivity 更新最近活跃时间，由接收循环在每条上游数据到达时调用
func (m *Metrics) TouchActivity() {
	atomic.StoreInt64(&m.lastActivityNs, time.Now().UnixNano())
}

// LastActivity 返回最近一次收到上游数据的时间，零值表示尚未收到任何数据
func (m *Metrics) LastActivity() time.Time {
	ns := atomic.LoadInt64(&m.lastActivityNs)
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Snapshot 单次原子读出的计数快照
type Snapshot struct {
	UpdatesReceived  uint64
	TxDecoded        uint64
	DecodeFailures   uint64
	BundlesCreated   uint64
	BundlesQualified uint64
	BundlesRejected  uint64
	BundlesExpired   uint64
	FilterRejected   uint64
	IntentsEmitted   uint64
	LastActivity     time.Time
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		UpdatesReceived:  atomic.LoadUint64(&m.updatesReceived),
		TxDecoded:        atomic.LoadUint64(&m.txDecoded),
		DecodeFailures:   atomic.LoadUint64(&m.decodeFailures),
		BundlesCreated:   atomic.LoadUint64(&m.bundlesCreated),
		BundlesQualified: atomic.LoadUint64(&m.bundlesQualified),
		BundlesRejected:  atomic.LoadUint64(&m.bundlesRejected),
		BundlesExpired:   atomic.LoadUint64(&m.bundlesExpired),
		FilterRejected:   atomic.LoadUint64(&m.filterRejected),
		IntentsEmitted:   atomic.LoadUint64(&m.intentsEmitted),
		LastActivity:     m.LastActivity(),
	}
}
