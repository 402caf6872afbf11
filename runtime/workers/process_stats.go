package workers

import (
	"context"
	"log/slog"
	"room-chat/observability"
	"time"
)

// ProcessSampler reads the health of the server process.
type ProcessSampler interface {
	Sample(connections int) (observability.ProcessStats, error)
}

// ConnectionCounter reports the number of live connections.
type ConnectionCounter interface {
	ConnectionCount() int
}

// ProcessStatsWorker samples the process on every tick and records the result.
type ProcessStatsWorker struct {
	log            *slog.Logger
	sampler        ProcessSampler
	connections    ConnectionCounter
	record         func(observability.ProcessStats)
	metricInterval time.Duration
}

func NewProcessStatsWorker(log *slog.Logger,
	sampler ProcessSampler,
	connections ConnectionCounter,
	record func(observability.ProcessStats),
	metricInterval time.Duration) *ProcessStatsWorker {
	return &ProcessStatsWorker{
		log:            log,
		sampler:        sampler,
		connections:    connections,
		record:         record,
		metricInterval: metricInterval,
	}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping process sampling")
			return nil
		case <-ticker.C:
			stats, err := w.sampler.Sample(w.connections.ConnectionCount())
			if err != nil {
				w.log.Error("Error while sampling process", "error", err)
				continue
			}
			if w.record != nil {
				w.record(stats)
			}
		}
	}
}
