package workers

import (
	"context"
	"log/slog"
	"room-chat/domain/event"
	"time"
)

// ChannelProbe reads the length and capacity of one channel.
type ChannelProbe struct {
	Name string
	Len  func() int
	Cap  func() int
}

// Probe builds a ChannelProbe over any channel.
func Probe[T any](name string, ch chan T) ChannelProbe {
	return ChannelProbe{
		Name: name,
		Len:  func() int { return len(ch) },
		Cap:  func() int { return cap(ch) },
	}
}

// ChannelCapacityWorker periodically reports the usage of internal channels.
// len and cap never block, and a sample dropped on a full telemetry channel is
// replaced by the next tick.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	probes         []ChannelProbe
	telemetryChan  chan<- event.Event
	metricInterval time.Duration
}

func NewChannelCapacityWorker(log *slog.Logger,
	probes []ChannelProbe, telemetryChan chan<- event.Event,
	metricInterval time.Duration) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:            log,
		probes:         probes,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *ChannelCapacityWorker) sample() {
	for _, p := range w.probes {
		e := event.NewEvent(event.ChannelCapacityType, event.ChannelCapacity{
			ChannelName: p.Name,
			Capacity:    p.Cap(),
			Length:      p.Len(),
		})
		if !event.Emit(w.telemetryChan, e) {
			w.log.Debug("Observability telemetry event lost", "channel", p.Name)
		}
	}
}
