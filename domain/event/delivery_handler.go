package event

import (
	"log/slog"
	"room-chat/errors"
	"time"
)

// DeliveryHandler handles events reporting a broadcast to a room.
// Slow broadcasts are logged since they hold the room sequencer.
type DeliveryHandler struct {
	log              *slog.Logger
	metrics          Metrics
	latencyThreshold time.Duration
}

func NewDeliveryHandler(log *slog.Logger, metrics Metrics, latencyThreshold time.Duration) *DeliveryHandler {
	return &DeliveryHandler{log: log, metrics: metrics, latencyThreshold: latencyThreshold}
}

func (h *DeliveryHandler) Handle(e Event) {
	if e.Type != DeliveryType {
		return
	}
	payload, ok := e.Payload.(Delivery)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", e.Type)
		return
	}
	h.metrics.ObserveDelivery(payload.EventType, payload.Sinks, payload.Failed, payload.Duration)
	if payload.Failed > 0 {
		h.log.Debug("broadcast partially failed",
			"room_id", payload.Room.String(),
			"event", payload.EventType,
			"failed", payload.Failed,
			"sinks", payload.Sinks)
	}
	if h.latencyThreshold > 0 && payload.Duration > h.latencyThreshold {
		h.log.Warn("high broadcast latency detected",
			"room_id", payload.Room.String(),
			"lead_time_ms", payload.Duration.Milliseconds())
	}
}
