package monitor

import (
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// Reporter 周期性输出指标快照，作为 ServiceGroup 的一员运行
type Reporter struct {
	metrics  *Metrics
	interval time.Duration
	done     chan struct{}
}

func NewReporter(m *Metrics, intervalSec int) *Reporter {
	if intervalSec <= 0 {
		intervalSec = 30
	}
	return &Reporter{
		metrics:  m,
		interval: time.Duration(intervalSec) * time.Second,
		done:     make(chan struct{}),
	}
}

func (r *Reporter) Start() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			s := r.metrics.Snapshot()
			logx.Infof("[monitor] updates=%d decoded=%d decode_fail=%d bundles{created=%d qualified=%d rejected=%d expired=%d} filter_rejected=%d intents=%d last_activity=%s",
				s.UpdatesReceived, s.TxDecoded, s.DecodeFailures,
				s.BundlesCreated, s.BundlesQualified, s.BundlesRejected, s.BundlesExpired,
				s.FilterRejected, s.IntentsEmitted, formatActivity(s.LastActivity))
		}
	}
}

func (r *Reporter) Stop() {
	close(r.done)
}

func formatActivity(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return time.Since(t).Truncate(time.Millisecond).String()
}
