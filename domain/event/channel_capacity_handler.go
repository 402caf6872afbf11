package event

import (
	"fmt"
	"log/slog"
	"room-chat/errors"
)

// ChannelCapacityHandler handles events reporting the capacity of channels.
// It is triggered to monitor the length and max capacity of internal channels.
type ChannelCapacityHandler struct {
	log                  *slog.Logger
	metrics              Metrics
	lowCapacityThreshold int
}

func NewChannelCapacityHandler(log *slog.Logger, metrics Metrics, lowCapacityThreshold int) *ChannelCapacityHandler {
	return &ChannelCapacityHandler{log: log, metrics: metrics, lowCapacityThreshold: lowCapacityThreshold}
}

func (h ChannelCapacityHandler) Handle(e Event) {
	if e.Type != ChannelCapacityType {
		return
	}
	payload, ok := e.Payload.(ChannelCapacity)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", e.Type)
		return
	}
	h.metrics.SetChannelUsage(payload.ChannelName, payload.Length, payload.Capacity)
	if payload.Capacity <= 0 {
		// In case of unbuffered channel
		return
	}
	capacityLeft := payload.Capacity - payload.Length
	if capacityLeft >= 0 && capacityLeft <= h.lowCapacityThreshold {
		h.log.Warn(fmt.Sprintf("channel %s capacity left : %d", payload.ChannelName, capacityLeft))
	}
}
