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

	periodsGenerated   uint64
	recordsGenerated   uint64
	deductionsRecorded uint64
	payslipsSent       uint64
	payslipsFailed     uint64
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

func (c *Collector) PeriodGenerated(records int) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.periodsGenerated, 1)
	atomic.AddUint64(&c.recordsGenerated, uint64(records))
}

func (c *Collector) DeductionsRecorded(n int) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.deductionsRecorded, uint64(n))
}

func (c *Collector) PayslipsDispatched(sent, failed int) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.payslipsSent, uint64(sent))
	atomic.AddUint64(&c.payslipsFailed, uint64(failed))
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":           total,
		"errorsTotal":             errs,
		"rateLimitedTotal":        limited,
		"avgDurationMs":           avg,
		"totalDurationMs":         totalMs,
		"periodsGeneratedTotal":   atomic.LoadUint64(&c.periodsGenerated),
		"recordsGeneratedTotal":   atomic.LoadUint64(&c.recordsGenerated),
		"deductionsRecordedTotal": atomic.LoadUint64(&c.deductionsRecorded),
		"payslipsSentTotal":       atomic.LoadUint64(&c.payslipsSent),
		"payslipsFailedTotal":     atomic.LoadUint64(&c.payslipsFailed),
	}
}
