package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	startTime        time.Time
	cycles           int64
	emptyLines       int64
	flushes          int64
	workersDone      int64
	workersCancelled int64
	stepStats        map[string]*StepStats
	mu               sync.RWMutex
}

type StepStats struct {
	Calls     int64
	TotalTime int64
	LastRun   time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
		stepStats: make(map[string]*StepStats),
	}
}

func (m *Metrics) IncrCycle() {
	atomic.AddInt64(&m.cycles, 1)
}

func (m *Metrics) IncrEmptyLine() {
	atomic.AddInt64(&m.emptyLines, 1)
}

func (m *Metrics) IncrFlush() {
	atomic.AddInt64(&m.flushes, 1)
}

func (m *Metrics) IncrWorkerDone() {
	atomic.AddInt64(&m.workersDone, 1)
}

func (m *Metrics) IncrWorkerCancelled() {
	atomic.AddInt64(&m.workersCancelled, 1)
}

func (m *Metrics) GetCycleCount() int64 {
	return atomic.LoadInt64(&m.cycles)
}

func (m *Metrics) AddStepExecution(step string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, exists := m.stepStats[step]
	if !exists {
		stats = &StepStats{}
		m.stepStats[step] = stats
	}

	stats.Calls++
	stats.TotalTime += duration.Nanoseconds()
	stats.LastRun = time.Now()
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]interface{})
	stats["uptime_in_seconds"] = int(time.Since(m.startTime).Seconds())
	stats["cycles"] = m.GetCycleCount()
	stats["empty_lines"] = atomic.LoadInt64(&m.emptyLines)
	stats["flushes"] = atomic.LoadInt64(&m.flushes)
	stats["workers_done"] = atomic.LoadInt64(&m.workersDone)
	stats["workers_cancelled"] = atomic.LoadInt64(&m.workersCancelled)

	stepStats := make(map[string]map[string]interface{})
	for step, stat := range m.stepStats {
		stepStats[step] = map[string]interface{}{
			"calls":         stat.Calls,
			"total_time_us": stat.TotalTime / 1000,
			"avg_time_us":   stat.TotalTime / stat.Calls / 1000,
			"last_run":      stat.LastRun,
		}
	}
	stats["stepstats"] = stepStats

	return stats
}
