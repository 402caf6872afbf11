package services

import (
	"context"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/repositories"
)

// CreateRoom creates the room with its creator as admin. The live connections
// of the creator start listening to it right away.
func (s *ChatService) CreateRoom(ctx context.Context, identity domain.Identity,
	name string, visibility domain.Visibility) (domain.Room, error) {
	var room domain.Room
	err := s.uow.Update(ctx, func(txn repositories.Txn) error {
		var err error
		room, err = s.rooms.CreateRoom(txn, name, visibility, identity.UserID, s.now())
		return err
	})
	if err != nil {
		return domain.Room{}, err
	}
	s.connections.SubscribeUser(identity.UserID, room.ID)
	s.log.Info("Room created", "room_id", room.ID.String(), "user_id", identity.UserID.String())
	return room, nil
}

// GetRoom returns a room the user can read: public, or private with membership.
func (s *ChatService) GetRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID) (domain.Room, error) {
	var room domain.Room
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		var err error
		if room, err = s.rooms.GetRoom(txn, roomID); err != nil {
			return err
		}
		return s.permissions.CanReadRoom(txn, room, userID)
	})
	return room, err
}

// ListRooms returns the rooms of the user when mine is set, the public rooms otherwise.
func (s *ChatService) ListRooms(ctx context.Context, userID domain.UserID, mine bool) ([]domain.Room, error) {
	var rooms []domain.Room
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		var filter *domain.UserID
		if mine {
			filter = &userID
		}
		var err error
		rooms, err = s.rooms.ListRooms(txn, filter)
		return err
	})
	return rooms, err
}

func (s *ChatService) ListMembers(ctx context.Context, userID domain.UserID, roomID domain.RoomID) ([]domain.Member, error) {
	var members []domain.Member
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		room, err := s.rooms.GetRoom(txn, roomID)
		if err != nil {
			return err
		}
		if err := s.permissions.CanReadRoom(txn, room, userID); err != nil {
			return err
		}
		members, err = s.rooms.ListMembers(txn, roomID)
		return err
	})
	return members, err
}

// UpdateRoom renames the room or changes its visibility, admin only.
func (s *ChatService) UpdateRoom(ctx context.Context, userID domain.UserID,
	roomID domain.RoomID, patch domain.RoomPatch) (domain.Room, error) {
	if err := patch.Validate(); err != nil {
		return domain.Room{}, err
	}
	var room domain.Room
	err := s.commitAndPublish(ctx, roomID, func(txn repositories.Txn) ([]event.DomainEvent, error) {
		if err := s.permissions.CanAdministerRoom(txn, roomID, userID); err != nil {
			return nil, err
		}
		var err error
		if room, err = s.rooms.UpdateRoom(txn, roomID, patch); err != nil {
			return nil, err
		}
		return []event.DomainEvent{event.RoomUpdated{Room: roomID, Updates: patch.Updates()}}, nil
	}, publishHooks{})
	return room, err
}

// DeleteRoom removes the room with its memberships and messages, admin only.
// room_deleted reaches the subscribers before the room stops existing for them.
func (s *ChatService) DeleteRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID) error {
	var cascade RoomCascade
	err := s.commitAndPublish(ctx, roomID, func(txn repositories.Txn) ([]event.DomainEvent, error) {
		if err := s.permissions.CanAdministerRoom(txn, roomID, userID); err != nil {
			return nil, err
		}
		var err error
		if cascade, err = s.rooms.DeleteRoom(txn, roomID); err != nil {
			return nil, err
		}
		return []event.DomainEvent{event.RoomDeleted{Room: roomID}}, nil
	}, publishHooks{
		afterPublish: func() { s.connections.DropRoom(roomID) },
	})
	if err != nil {
		return err
	}
	s.log.Info("Room deleted",
		"room_id", roomID.String(),
		"members", len(cascade.Members),
		"messages", len(cascade.Messages))
	return nil
}

// JoinRoom makes the user a member and subscribes its live connections.
func (s *ChatService) JoinRoom(ctx context.Context, identity domain.Identity, roomID domain.RoomID) (domain.Membership, error) {
	var membership domain.Membership
	err := s.commitAndPublish(ctx, roomID, func(txn repositories.Txn) ([]event.DomainEvent, error) {
		var err error
		if membership, err = s.rooms.JoinRoom(txn, roomID, identity.UserID, s.now()); err != nil {
			return nil, err
		}
		return []event.DomainEvent{event.UserJoined{Room: roomID, User: identity.Ref()}}, nil
	}, publishHooks{
		beforePublish: func() { s.connections.SubscribeUser(identity.UserID, roomID) },
	})
	return membership, err
}

// LeaveRoom removes the membership of the user, then its live connections stop listening.
func (s *ChatService) LeaveRoom(ctx context.Context, identity domain.Identity, roomID domain.RoomID) error {
	return s.commitAndPublish(ctx, roomID, func(txn repositories.Txn) ([]event.DomainEvent, error) {
		if err := s.rooms.LeaveRoom(txn, roomID, identity.UserID); err != nil {
			return nil, err
		}
		return []event.DomainEvent{event.UserLeft{Room: roomID, User: identity.Ref()}}, nil
	}, publishHooks{
		afterPublish: func() { s.connections.UnsubscribeUser(identity.UserID, roomID) },
	})
}

// RemoveMember lets an admin remove another member from the room.
func (s *ChatService) RemoveMember(ctx context.Context, adminID domain.UserID, roomID domain.RoomID, memberID domain.UserID) error {
	return s.commitAndPublish(ctx, roomID, func(txn repositories.Txn) ([]event.DomainEvent, error) {
		if err := s.permissions.CanAdministerRoom(txn, roomID, adminID); err != nil {
			return nil, err
		}
		user, err := s.rooms.GetUser(txn, memberID)
		if err != nil {
			return nil, err
		}
		if err := s.rooms.LeaveRoom(txn, roomID, memberID); err != nil {
			return nil, err
		}
		return []event.DomainEvent{event.UserLeft{Room: roomID, User: user.Ref()}}, nil
	}, publishHooks{
		afterPublish: func() { s.connections.UnsubscribeUser(memberID, roomID) },
	})
}
