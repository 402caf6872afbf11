package observability

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats is a snapshot of the server process health.
type ProcessStats struct {
	PID         int32     `json:"pid"`
	Status      string    `json:"status"`
	RSSBytes    uint64    `json:"rss_bytes"`
	CPUPercent  float64   `json:"cpu_percent"`
	Goroutines  int       `json:"goroutines"`
	AllocMemMb  uint64    `json:"alloc_mem_mb"`
	NumGC       uint32    `json:"num_gc"`
	Connections int       `json:"connections"`
	UptimeSec   int64     `json:"uptime_seconds"`
	SampledAt   time.Time `json:"sampled_at"`
}

// MonitoringManager keeps the latest process snapshot for the health endpoint.
type MonitoringManager struct {
	mu          sync.RWMutex
	startedAt   time.Time
	latestStats ProcessStats
	process     *process.Process
}

func NewMonitoringManager() (*MonitoringManager, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &MonitoringManager{startedAt: time.Now(), process: p}, nil
}

// Sample reads the current process statistics and keeps them as the latest snapshot.
// connections is the number of live connections at sampling time.
func (mm *MonitoringManager) Sample(connections int) (ProcessStats, error) {
	memInfo, err := mm.process.MemoryInfo()
	if err != nil {
		return ProcessStats{}, err
	}
	cpuPercent, err := mm.process.CPUPercent()
	if err != nil {
		return ProcessStats{}, err
	}
	status, err := mm.process.Status()
	if err != nil {
		return ProcessStats{}, err
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	now := time.Now()
	stats := ProcessStats{
		PID:         mm.process.Pid,
		Status:      status,
		RSSBytes:    memInfo.RSS,
		CPUPercent:  cpuPercent,
		Goroutines:  runtime.NumGoroutine(),
		AllocMemMb:  m.Alloc / 1024 / 1024,
		NumGC:       m.NumGC,
		Connections: connections,
		UptimeSec:   int64(now.Sub(mm.startedAt).Seconds()),
		SampledAt:   now.UTC(),
	}

	mm.mu.Lock()
	mm.latestStats = stats
	mm.mu.Unlock()
	return stats, nil
}

// GetLatest returns the last sampled snapshot.
func (mm *MonitoringManager) GetLatest() ProcessStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
