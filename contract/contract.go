//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"room-chat/domain"
	"room-chat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives the events of the rooms it is subscribed to.
// Consume must honor ctx, the broadcaster gives up on it at the deadline.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// ConnectionID identifies one live connection. A user may hold several.
type ConnectionID string

// IRegistry is the connection manager: who is connected and which rooms they listen to.
type IRegistry interface {
	Register(connID ConnectionID, identity domain.Identity, sink EventSink) (first bool, err error)
	SubscribeAll(connID ConnectionID, roomIDs []domain.RoomID) error
	SubscribeUser(userID domain.UserID, roomID domain.RoomID) int
	UnsubscribeUser(userID domain.UserID, roomID domain.RoomID) int
	DropRoom(roomID domain.RoomID) int
	Unregister(connID ConnectionID) (rooms []domain.RoomID, last bool)
	GetSinksForRoom(roomID domain.RoomID) []EventSink
	IsOnline(userID domain.UserID) bool
}

// Broadcaster publishes an event to the current subscribers of its room.
type Broadcaster interface {
	Broadcast(ctx context.Context, e event.DomainEvent)
}
