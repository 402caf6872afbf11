package runtime

import (
	"context"
	"log/slog"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func identity(userID domain.UserID) domain.Identity {
	return domain.Identity{UserID: userID, Username: string(userID)}
}

func TestRegistry_Lifecycle(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	roomA := domain.NewRoomID()
	roomB := domain.NewRoomID()
	sink := &Sink{name: "c1"}

	// Given no connection
	req.Equal(Closed, registry.State("c1"))

	// When the connection is registered
	first, err := registry.Register("c1", identity("alice"), sink)
	req.NoError(err)
	req.True(first)
	req.Equal(Authenticated, registry.State("c1"))

	// And subscribed to its rooms in one batch
	req.NoError(registry.SubscribeAll("c1", []domain.RoomID{roomA, roomB}))
	req.Equal(Subscribed, registry.State("c1"))
	req.ElementsMatch([]domain.RoomID{roomA, roomB}, registry.Rooms("c1"))
	req.Equal([]contract.EventSink{sink}, registry.GetSinksForRoom(roomA))

	// When it is unregistered
	rooms, last := registry.Unregister("c1")

	// Then it is gone from every set
	req.True(last)
	req.ElementsMatch([]domain.RoomID{roomA, roomB}, rooms)
	req.Equal(Closed, registry.State("c1"))
	req.Empty(registry.GetSinksForRoom(roomA))
	req.Empty(registry.GetSinksForRoom(roomB))
	req.Empty(registry.roomMembers)
	req.Empty(registry.userConns)
	req.False(registry.IsOnline("alice"))
}

func TestRegistry_Register_Twice(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	_, err := registry.Register("c1", identity("alice"), &Sink{})
	req.NoError(err)
	_, err = registry.Register("c1", identity("alice"), &Sink{})
	req.ErrorIs(err, errors.ErrAlreadyRegistered)

	req.ErrorIs(registry.SubscribeAll("unknown", nil), errors.ErrUnknownConnection)
}

func TestRegistry_JoinLeave_MirrorsAllConnectionsOfUser(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	roomA := domain.NewRoomID()
	laptop := &Sink{name: "laptop"}
	phone := &Sink{name: "phone"}
	other := &Sink{name: "bob"}

	// Given alice connected twice and bob once
	first, err := registry.Register("laptop", identity("alice"), laptop)
	req.NoError(err)
	req.True(first)
	first, err = registry.Register("phone", identity("alice"), phone)
	req.NoError(err)
	req.False(first)
	_, err = registry.Register("bob", identity("bob"), other)
	req.NoError(err)

	// When alice joins room A
	req.Equal(2, registry.SubscribeUser("alice", roomA))

	// Then both of her connections listen to it
	req.ElementsMatch([]contract.EventSink{laptop, phone}, registry.GetSinksForRoom(roomA))

	// When she leaves
	req.Equal(2, registry.UnsubscribeUser("alice", roomA))
	req.Empty(registry.GetSinksForRoom(roomA))

	// Closing one connection keeps her online
	_, last := registry.Unregister("phone")
	req.False(last)
	req.True(registry.IsOnline("alice"))
	req.Equal(2, registry.ConnectionCount())
}

func TestRegistry_DropRoom(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	roomA := domain.NewRoomID()
	roomB := domain.NewRoomID()
	_, err := registry.Register("c1", identity("alice"), &Sink{})
	req.NoError(err)
	req.NoError(registry.SubscribeAll("c1", []domain.RoomID{roomA, roomB}))

	req.Equal(1, registry.DropRoom(roomA))

	req.Empty(registry.GetSinksForRoom(roomA))
	req.Equal([]domain.RoomID{roomB}, registry.Rooms("c1"))
	req.Equal(0, registry.DropRoom(roomA))
}

func TestRegistry_Snapshot_IsIndependent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	roomA := domain.NewRoomID()
	_, err := registry.Register("c1", identity("alice"), &Sink{})
	req.NoError(err)
	req.NoError(registry.SubscribeAll("c1", []domain.RoomID{roomA}))

	snapshot := registry.GetSinksForRoom(roomA)
	registry.Unregister("c1")

	req.Len(snapshot, 1)
}

func TestConnState_Transitions(t *testing.T) {
	req := require.New(t)

	req.True(Connecting.CanTransition(Authenticated))
	req.True(Connecting.CanTransition(Closed))
	req.True(Authenticated.CanTransition(Subscribed))
	req.True(Subscribed.CanTransition(Closed))
	req.False(Connecting.CanTransition(Subscribed))
	req.False(Subscribed.CanTransition(Authenticated))
	req.False(Closed.CanTransition(Connecting))
	req.Equal("subscribed", Subscribed.String())
}
