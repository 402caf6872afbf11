package workers

import (
	"context"
	"log/slog"
	"room-chat/contract"
	"room-chat/domain/event"
	"room-chat/errors"
	"sync"
	"sync/atomic"
	"time"
)

// EventFanout broadcasts a domain event to the current subscribers of its room.
//
// Delivery is best effort: the subscriber set is a snapshot taken at call time,
// each sink gets its own timeout, failures are logged and swallowed and nothing is
// queued or replayed. Broadcast returns once every sink has returned or timed out,
// so callers holding the room sequencer publish in commit order.
//
// Permanent sinks (search index) receive every event regardless of the room.
type EventFanout struct {
	log            *slog.Logger
	permanentSinks []contract.EventSink
	registry       contract.IRegistry
	telemetryChan  chan<- event.Event
	sinkTimeout    time.Duration
}

var _ contract.Broadcaster = (*EventFanout)(nil)

func NewEventFanout(log *slog.Logger,
	permanentSinks []contract.EventSink,
	registry contract.IRegistry,
	telemetryChan chan<- event.Event,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		permanentSinks: permanentSinks,
		registry:       registry,
		telemetryChan:  telemetryChan,
		sinkTimeout:    sinkTimeout,
	}
}

func (f *EventFanout) Broadcast(ctx context.Context, e event.DomainEvent) {
	start := time.Now()
	roomSinks := f.registry.GetSinksForRoom(e.RoomID())
	sinks := make([]contract.EventSink, 0, len(f.permanentSinks)+len(roomSinks))
	sinks = append(sinks, f.permanentSinks...)
	sinks = append(sinks, roomSinks...)

	// The caller's request may end before a slow subscriber gives up
	deliveryCtx := context.WithoutCancel(ctx)

	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	for _, sink := range sinks {
		wg.Add(1)
		go func(s contract.EventSink) {
			defer wg.Done()
			if err := f.consume(deliveryCtx, s, e); err != nil {
				failed.Add(1)
				f.log.Debug("Sink delivery failed",
					"event", e.Type(),
					"room_id", e.RoomID().String(),
					"error", err)
			}
		}(sink)
	}
	wg.Wait()

	delivery := event.Delivery{
		EventType: e.Type(),
		Room:      e.RoomID(),
		Sinks:     len(sinks),
		Failed:    int(failed.Load()),
		Duration:  time.Since(start),
	}
	if !event.Emit(f.telemetryChan, event.NewEvent(event.DeliveryType, delivery)) {
		f.log.Debug("Observability telemetry event lost")
	}
}

func (f *EventFanout) consume(ctx context.Context, sink contract.EventSink, e event.DomainEvent) (err error) {
	ctx, cancel := context.WithTimeout(ctx, f.sinkTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("Sink panicked", "event", e.Type(), "panic", r)
			err = errors.ErrWorkerPanic
		}
	}()
	return sink.Consume(ctx, e)
}
