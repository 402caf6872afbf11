package event

import (
	"log/slog"
	"room-chat/errors"
)

// WorkerRestartedAfterPanicHandler handles events when a worker panics and is restarted.
// It is triggered by the Supervisor when a worker recovers from a panic.
type WorkerRestartedAfterPanicHandler struct {
	log     *slog.Logger
	metrics Metrics
}

func NewWorkerRestartedAfterPanicHandler(log *slog.Logger, metrics Metrics) *WorkerRestartedAfterPanicHandler {
	return &WorkerRestartedAfterPanicHandler{log: log, metrics: metrics}
}

func (h *WorkerRestartedAfterPanicHandler) Handle(e Event) {
	if e.Type != RestartedAfterPanicType {
		return
	}
	payload, ok := e.Payload.(WorkerRestartedAfterPanic)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", e.Type)
		return
	}
	h.metrics.IncWorkerRestart(payload.WorkerName)
	h.log.Debug("Worker restarted after panic", "name", payload.WorkerName)
}
