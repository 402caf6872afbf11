package workers

import (
	"context"
	"log/slog"
	"room-chat/observability"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fixedConnections int

func (c fixedConnections) ConnectionCount() int { return int(c) }

type fakeSampler struct{}

func (fakeSampler) Sample(connections int) (observability.ProcessStats, error) {
	return observability.ProcessStats{PID: 42, Connections: connections}, nil
}

func TestProcessStatsWorker_RecordsSamples(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	recorded := make(chan observability.ProcessStats, 10)

	worker := NewProcessStatsWorker(log, fakeSampler{}, fixedConnections(3),
		func(stats observability.ProcessStats) { recorded <- stats }, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	// When the worker ticks
	req.NoError(worker.Run(ctx))

	// Then the samples carry the live connection count
	stats := <-recorded
	req.Equal(int32(42), stats.PID)
	req.Equal(3, stats.Connections)
}
