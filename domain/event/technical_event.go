package event

import (
	"room-chat/domain"
	"time"
)

const (
	DeliveryType            Type = "DELIVERY"
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	CensorshipHitType       Type = "CENSORSHIP_HIT"
)

// Event is a technical event flowing to the telemetry worker.
// It never reaches a client.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

// Delivery reports the outcome of one broadcast.
type Delivery struct {
	EventType Type
	Room      domain.RoomID
	Sinks     int
	Failed    int
	Duration  time.Duration
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type Censored struct {
	Room  domain.RoomID
	Words []string
}

func NewEvent(t Type, payload any) Event {
	return Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}
}

// Emit hands a technical event to the telemetry channel without blocking.
// A full or nil channel drops the event and reports false.
func Emit(telemetryChan chan<- Event, e Event) bool {
	if telemetryChan == nil {
		return false
	}
	select {
	case telemetryChan <- e:
		return true
	default:
		return false
	}
}
