package services

import (
	"context"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/repositories"
)

// Connect binds an authenticated connection to its identity and subscribes it
// to every room of the user. The first connection of a user announces its
// presence in each of those rooms.
// The connection is registered before memberships are read, so a join or leave
// committed meanwhile reaches it through the registry. Each room is then
// confirmed under its sequencer, the same lock join and leave publish under.
func (s *ChatService) Connect(ctx context.Context, connID contract.ConnectionID,
	identity domain.Identity, sink contract.EventSink) ([]domain.RoomID, error) {
	first, err := s.connections.Register(connID, identity, sink)
	if err != nil {
		return nil, err
	}

	var candidates []domain.RoomID
	err = s.uow.View(ctx, func(txn repositories.Txn) error {
		var err error
		candidates, err = s.rooms.RoomIDsOf(txn, identity.UserID)
		return err
	})
	if err != nil {
		s.connections.Unregister(connID)
		return nil, err
	}

	roomIDs := make([]domain.RoomID, 0, len(candidates))
	for _, roomID := range candidates {
		err := s.sequencer.Do(roomID, func() error {
			member, err := s.isMember(ctx, roomID, identity.UserID)
			if err != nil || !member {
				return err
			}
			roomIDs = append(roomIDs, roomID)
			return s.connections.SubscribeAll(connID, []domain.RoomID{roomID})
		})
		if err != nil {
			s.connections.Unregister(connID)
			return nil, err
		}
	}
	if err := s.connections.SubscribeAll(connID, nil); err != nil {
		s.connections.Unregister(connID)
		return nil, err
	}

	if first && s.cfg.PresenceOnConnect {
		for _, roomID := range roomIDs {
			s.broadcaster.Broadcast(ctx, event.UserJoined{Room: roomID, User: identity.Ref()})
		}
	}
	return roomIDs, nil
}

func (s *ChatService) isMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	var membership *domain.Membership
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		var err error
		membership, err = s.rooms.GetMembership(txn, roomID, userID)
		return err
	})
	return membership != nil, err
}

// Disconnect removes the connection from every subscriber set at once.
// When it was the last connection of the user, the rooms learn it left.
func (s *ChatService) Disconnect(ctx context.Context, connID contract.ConnectionID, identity domain.Identity) {
	rooms, last := s.connections.Unregister(connID)
	if !last || !s.cfg.PresenceOnConnect {
		return
	}
	for _, roomID := range rooms {
		s.broadcaster.Broadcast(ctx, event.UserLeft{Room: roomID, User: identity.Ref()})
	}
}
