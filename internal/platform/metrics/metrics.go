package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	jobRunsTotal  uint64
	jobRunsFailed uint64

	requestsApproved uint64
	requestsRejected uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordJobRun(failed bool) {
	atomic.AddUint64(&c.jobRunsTotal, 1)
	if failed {
		atomic.AddUint64(&c.jobRunsFailed, 1)
	}
}

func (c *Collector) RecordDecision(approved bool) {
	if approved {
		atomic.AddUint64(&c.requestsApproved, 1)
	} else {
		atomic.AddUint64(&c.requestsRejected, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":  atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
		"jobRunsTotal":      atomic.LoadUint64(&c.jobRunsTotal),
		"jobRunsFailed":     atomic.LoadUint64(&c.jobRunsFailed),
		"leaveApprovals":    atomic.LoadUint64(&c.requestsApproved),
		"leaveRejections":   atomic.LoadUint64(&c.requestsRejected),
	}
}
