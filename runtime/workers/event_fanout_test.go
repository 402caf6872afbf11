package workers

import (
	"context"
	"log/slog"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/mocks"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func messageCreated(roomID domain.RoomID) event.MessageCreated {
	m := domain.NewMessage(roomID, "alice", "hello", time.Now())
	return event.NewMessageCreated(m)
}

func TestEventFanout_Broadcast(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	permanentSink := mocks.NewMockEventSink(ctrl)
	roomSink := mocks.NewMockEventSink(ctrl)
	telemetry := make(chan event.Event, 1)
	roomID := domain.NewRoomID()

	fanout := NewEventFanout(log, []contract.EventSink{permanentSink}, mockRegistry, telemetry, time.Second)
	evt := messageCreated(roomID)

	// Given two subscribers in the room and one permanent sink
	mockRegistry.EXPECT().GetSinksForRoom(roomID).Return([]contract.EventSink{roomSink, roomSink}).Times(1)
	permanentSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	roomSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(2)

	// When the event is broadcast
	fanout.Broadcast(context.Background(), evt)

	// Then every sink has consumed it before Broadcast returned
	// And a delivery report is sent to telemetry
	select {
	case e := <-telemetry:
		req.Equal(event.DeliveryType, e.Type)
		delivery := e.Payload.(event.Delivery)
		req.Equal(event.MessageCreatedType, delivery.EventType)
		req.Equal(roomID, delivery.Room)
		req.Equal(3, delivery.Sinks)
		req.Zero(delivery.Failed)
	default:
		req.Fail("Delivery telemetry event is missing")
	}
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	slowSink := mocks.NewMockEventSink(ctrl)
	fastSink := mocks.NewMockEventSink(ctrl)
	telemetry := make(chan event.Event, 1)
	roomID := domain.NewRoomID()

	sinkTimeout := 20 * time.Millisecond
	fanout := NewEventFanout(log, nil, mockRegistry, telemetry, sinkTimeout)

	// Given one subscriber never answering and one healthy subscriber
	mockRegistry.EXPECT().GetSinksForRoom(roomID).Return([]contract.EventSink{slowSink, fastSink}).Times(1)
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ event.DomainEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)
	var delivered atomic.Bool
	fastSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, event.DomainEvent) error {
			delivered.Store(true)
			return nil
		}).Times(1)

	// When the event is broadcast
	start := time.Now()
	fanout.Broadcast(context.Background(), messageCreated(roomID))

	// Then the slow subscriber is abandoned at its deadline
	// And the healthy subscriber still receives the event
	req.Less(time.Since(start), time.Second)
	req.True(delivered.Load())
	e := <-telemetry
	req.Equal(1, e.Payload.(event.Delivery).Failed)
}

func TestEventFanout_SinkPanicIsSwallowed(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	badSink := mocks.NewMockEventSink(ctrl)
	roomID := domain.NewRoomID()

	fanout := NewEventFanout(log, nil, mockRegistry, nil, time.Second)

	// Given a subscriber panicking on consume
	mockRegistry.EXPECT().GetSinksForRoom(roomID).Return([]contract.EventSink{badSink}).Times(1)
	badSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, event.DomainEvent) error { panic("boom") }).Times(1)

	// When the event is broadcast
	// Then the panic does not escape
	req.NotPanics(func() { fanout.Broadcast(context.Background(), messageCreated(roomID)) })
}

func TestEventFanout_CanceledCallerStillDelivers(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	roomID := domain.NewRoomID()

	fanout := NewEventFanout(log, nil, mockRegistry, nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Given the caller's context is already canceled
	mockRegistry.EXPECT().GetSinksForRoom(roomID).Return([]contract.EventSink{sink}).Times(1)
	var sinkErr error
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ event.DomainEvent) error {
			sinkErr = ctx.Err()
			return sinkErr
		}).Times(1)

	// When the event is broadcast
	fanout.Broadcast(ctx, messageCreated(roomID))

	// Then the subscriber saw a live context
	req.NoError(sinkErr)
}
