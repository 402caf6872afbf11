package services

import (
	"room-chat/domain"
	"room-chat/errors"
	"room-chat/repositories"
	"sort"
	"time"

	"github.com/samber/lo"
)

// RoomRegistry owns the lifecycle of rooms and memberships.
// It performs no authorization: callers check the PermissionEvaluator first,
// in the same transaction.
type RoomRegistry struct {
	rooms    repositories.IRoomRepository
	members  repositories.IMembershipRepository
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
}

func NewRoomRegistry(rooms repositories.IRoomRepository,
	members repositories.IMembershipRepository,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository) *RoomRegistry {
	return &RoomRegistry{rooms: rooms, members: members, messages: messages, users: users}
}

// CreateRoom inserts the room and the admin membership of its creator.
// Both writes belong to txn, so neither survives without the other.
func (r *RoomRegistry) CreateRoom(txn repositories.Txn, name string, visibility domain.Visibility,
	creatorID domain.UserID, at time.Time) (domain.Room, error) {
	room, err := domain.NewRoom(name, visibility, at)
	if err != nil {
		return domain.Room{}, err
	}
	if err := r.rooms.CreateRoom(txn, room); err != nil {
		return domain.Room{}, err
	}
	admin := domain.NewMembership(creatorID, room.ID, domain.RoleAdmin, at)
	if err := r.members.AddMember(txn, admin); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *RoomRegistry) GetRoom(txn repositories.Txn, roomID domain.RoomID) (domain.Room, error) {
	return r.rooms.GetRoom(txn, roomID)
}

func (r *RoomRegistry) GetMembership(txn repositories.Txn, roomID domain.RoomID, userID domain.UserID) (*domain.Membership, error) {
	return r.members.GetMembership(txn, roomID, userID)
}

// JoinRoom adds the user as a plain member. A second join fails with ErrAlreadyMember.
func (r *RoomRegistry) JoinRoom(txn repositories.Txn, roomID domain.RoomID, userID domain.UserID, at time.Time) (domain.Membership, error) {
	if _, err := r.rooms.GetRoom(txn, roomID); err != nil {
		return domain.Membership{}, err
	}
	membership := domain.NewMembership(userID, roomID, domain.RoleMember, at)
	if err := r.members.AddMember(txn, membership); err != nil {
		return domain.Membership{}, err
	}
	return membership, nil
}

// LeaveRoom deletes the membership, ErrNotMember when there is none.
func (r *RoomRegistry) LeaveRoom(txn repositories.Txn, roomID domain.RoomID, userID domain.UserID) error {
	removed, err := r.members.RemoveMember(txn, roomID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return errors.ErrNotMember
	}
	return nil
}

// ListRooms returns the rooms of userID when given, the public rooms otherwise.
func (r *RoomRegistry) ListRooms(txn repositories.Txn, userID *domain.UserID) ([]domain.Room, error) {
	if userID == nil {
		all, err := r.rooms.ListRooms(txn)
		if err != nil {
			return nil, err
		}
		return lo.Filter(all, func(room domain.Room, _ int) bool { return room.IsPublic() }), nil
	}

	roomIDs, err := r.members.ListRoomIDsByUser(txn, *userID)
	if err != nil {
		return nil, err
	}
	rooms := make([]domain.Room, 0, len(roomIDs))
	for _, id := range roomIDs {
		room, err := r.rooms.GetRoom(txn, id)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })
	return rooms, nil
}

// AllRooms lists every room whatever its visibility.
func (r *RoomRegistry) AllRooms(txn repositories.Txn) ([]domain.Room, error) {
	return r.rooms.ListRooms(txn)
}

func (r *RoomRegistry) GetUser(txn repositories.Txn, userID domain.UserID) (domain.User, error) {
	return r.users.GetUser(txn, userID)
}

func (r *RoomRegistry) RoomIDsOf(txn repositories.Txn, userID domain.UserID) ([]domain.RoomID, error) {
	return r.members.ListRoomIDsByUser(txn, userID)
}

// ListMembers returns the memberships of the room with the username of each member.
// A deleted room has no members.
func (r *RoomRegistry) ListMembers(txn repositories.Txn, roomID domain.RoomID) ([]domain.Member, error) {
	memberships, err := r.members.ListByRoom(txn, roomID)
	if err != nil {
		return nil, err
	}
	members := make([]domain.Member, 0, len(memberships))
	for _, m := range memberships {
		user, err := r.users.GetUser(txn, m.UserID)
		if err != nil {
			return nil, err
		}
		members = append(members, domain.Member{Membership: m, Username: user.Username})
	}
	return members, nil
}

func (r *RoomRegistry) UpdateRoom(txn repositories.Txn, roomID domain.RoomID, patch domain.RoomPatch) (domain.Room, error) {
	if err := patch.Validate(); err != nil {
		return domain.Room{}, err
	}
	room, err := r.rooms.GetRoom(txn, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	updated := room.Apply(patch)
	if err := r.rooms.UpdateRoom(txn, updated); err != nil {
		return domain.Room{}, err
	}
	return updated, nil
}

// RoomCascade lists what a room deletion removed along with the room.
type RoomCascade struct {
	Members  []domain.UserID
	Messages []domain.MessageID
}

// DeleteRoom removes the room, its memberships and its messages in txn.
func (r *RoomRegistry) DeleteRoom(txn repositories.Txn, roomID domain.RoomID) (RoomCascade, error) {
	if _, err := r.rooms.GetRoom(txn, roomID); err != nil {
		return RoomCascade{}, err
	}
	messageIDs, err := r.messages.DeleteRoomMessages(txn, roomID)
	if err != nil {
		return RoomCascade{}, err
	}
	memberIDs, err := r.members.DeleteRoomMembers(txn, roomID)
	if err != nil {
		return RoomCascade{}, err
	}
	if err := r.rooms.DeleteRoom(txn, roomID); err != nil {
		return RoomCascade{}, err
	}
	return RoomCascade{Members: memberIDs, Messages: messageIDs}, nil
}
