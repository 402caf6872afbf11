package event

import (
	"log/slog"
	"room-chat/errors"
)

type CensoredHandler struct {
	log     *slog.Logger
	metrics Metrics
}

func NewCensoredHandler(log *slog.Logger, metrics Metrics) *CensoredHandler {
	return &CensoredHandler{log: log, metrics: metrics}
}

func (h *CensoredHandler) Handle(e Event) {
	if e.Type != CensorshipHitType {
		return
	}
	payload, ok := e.Payload.(Censored)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", e.Type)
		return
	}
	for _, word := range payload.Words {
		h.metrics.IncCensored(word)
	}
}
