//go:generate go run go.uber.org/mock/mockgen -source=permission.go -destination=../mocks/mock_permission.go -package=mocks
package services

import (
	"room-chat/domain"
	"room-chat/errors"
	"room-chat/repositories"
)

// IPermissionEvaluator centralizes every authorization decision.
// A nil error means the action is allowed. Facts are read in the caller's
// transaction, so a check and the mutation it guards commit together.
type IPermissionEvaluator interface {
	CanSend(txn repositories.Txn, roomID domain.RoomID, userID domain.UserID) error
	CanEdit(message domain.Message, userID domain.UserID) error
	CanDelete(txn repositories.Txn, message domain.Message, userID domain.UserID) error
	CanAdministerRoom(txn repositories.Txn, roomID domain.RoomID, userID domain.UserID) error
	CanReadRoom(txn repositories.Txn, room domain.Room, userID domain.UserID) error
	CanReadMessage(txn repositories.Txn, message domain.Message, userID domain.UserID) error
}

type PermissionEvaluator struct {
	rooms             repositories.IRoomRepository
	members           repositories.IMembershipRepository
	strictMessageRead bool
}

var _ IPermissionEvaluator = PermissionEvaluator{}

// NewPermissionEvaluator builds the evaluator. With strictMessageRead unset, any
// authenticated user may read a message by id whatever its room.
func NewPermissionEvaluator(rooms repositories.IRoomRepository,
	members repositories.IMembershipRepository, strictMessageRead bool) PermissionEvaluator {
	return PermissionEvaluator{rooms: rooms, members: members, strictMessageRead: strictMessageRead}
}

func (p PermissionEvaluator) CanSend(txn repositories.Txn, roomID domain.RoomID, userID domain.UserID) error {
	if _, err := p.rooms.GetRoom(txn, roomID); err != nil {
		return err
	}
	membership, err := p.members.GetMembership(txn, roomID, userID)
	if err != nil {
		return err
	}
	if !domain.CanSend(membership) {
		return errors.ErrNotMember
	}
	return nil
}

func (p PermissionEvaluator) CanEdit(message domain.Message, userID domain.UserID) error {
	if !domain.CanEdit(message, userID) {
		return errors.ErrNotAuthor
	}
	return nil
}

func (p PermissionEvaluator) CanDelete(txn repositories.Txn, message domain.Message, userID domain.UserID) error {
	if message.AuthorID == userID {
		return nil
	}
	membership, err := p.members.GetMembership(txn, message.RoomID, userID)
	if err != nil {
		return err
	}
	if !domain.CanDelete(message, userID, membership) {
		return errors.ErrNotAuthorOrAdmin
	}
	return nil
}

func (p PermissionEvaluator) CanAdministerRoom(txn repositories.Txn, roomID domain.RoomID, userID domain.UserID) error {
	if _, err := p.rooms.GetRoom(txn, roomID); err != nil {
		return err
	}
	membership, err := p.members.GetMembership(txn, roomID, userID)
	if err != nil {
		return err
	}
	if !domain.CanAdministerRoom(membership) {
		return errors.ErrNotAdmin
	}
	return nil
}

func (p PermissionEvaluator) CanReadRoom(txn repositories.Txn, room domain.Room, userID domain.UserID) error {
	if room.IsPublic() {
		return nil
	}
	membership, err := p.members.GetMembership(txn, room.ID, userID)
	if err != nil {
		return err
	}
	if !domain.CanReadRoom(room, membership) {
		return errors.ErrPrivateRoom
	}
	return nil
}

func (p PermissionEvaluator) CanReadMessage(txn repositories.Txn, message domain.Message, userID domain.UserID) error {
	if !p.strictMessageRead {
		return nil
	}
	membership, err := p.members.GetMembership(txn, message.RoomID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return errors.ErrNotMember
	}
	return nil
}
