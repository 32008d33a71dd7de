package analytics

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// ConcurrencyPlanner sizes the batch-evaluation worker pool from the host's
// resources. Per-address evaluation is CPU-bound and embarrassingly parallel,
// so the base is 2x the core count, damped on low-memory hosts and clamped to
// the configured bounds.
type ConcurrencyPlanner struct {
	cpuCores int
	memoryGB float64
	workers  int
}

// NewConcurrencyPlanner inspects the host once at construction. min and max
// bound the resulting worker count; non-positive bounds fall back to 2 and 20.
func NewConcurrencyPlanner(min, max int) *ConcurrencyPlanner {
	if min <= 0 {
		min = 2
	}
	if max <= 0 {
		max = 20
	}

	p := &ConcurrencyPlanner{cpuCores: runtime.NumCPU()}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		p.memoryGB = float64(memInfo.Total) / (1024 * 1024 * 1024)
	} else {
		logrus.WithError(err).Warn("Could not read memory info, assuming 8GB")
		p.memoryGB = 8.0
	}

	workers := p.cpuCores * 2
	if p.memoryGB < 4.0 {
		workers /= 2
	} else if p.memoryGB < 8.0 {
		workers = workers * 3 / 4
	}
	if workers < min {
		workers = min
	}
	if workers > max {
		workers = max
	}
	p.workers = workers

	logrus.WithFields(logrus.Fields{
		"cpu_cores": p.cpuCores,
		"memory_gb": p.memoryGB,
		"workers":   p.workers,
	}).Info("Concurrency planner initialized")

	return p
}

// Workers returns the planned worker-pool size.
func (p *ConcurrencyPlanner) Workers() int { return p.workers }
