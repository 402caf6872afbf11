//go:generate go run go.uber.org/mock/mockgen -source=handlers.go -destination=../../mocks/mock_handlers.go -package=mocks
package event

import "time"

// Handler Each kind of event has his own handler
// Based on the Chain of responsibility pattern
type Handler interface {
	Handle(e Event)
}

// Metrics is where handlers record what they observe.
type Metrics interface {
	ObserveDelivery(eventType Type, sinks, failed int, duration time.Duration)
	IncWorkerRestart(workerName string)
	SetChannelUsage(channelName string, length, capacity int)
	IncCensored(word string)
}
