//go:generate go run go.uber.org/mock/mockgen -source=membership.go -destination=../mocks/mock_membership_repository.go -package=mocks
package repositories

import (
	"room-chat/domain"
	"room-chat/errors"
	"sort"
	"strings"

	"github.com/samber/lo"
)

type IMembershipRepository interface {
	AddMember(txn Txn, membership domain.Membership) error
	GetMembership(txn Txn, roomID domain.RoomID, userID domain.UserID) (*domain.Membership, error)
	RemoveMember(txn Txn, roomID domain.RoomID, userID domain.UserID) (bool, error)
	ListByRoom(txn Txn, roomID domain.RoomID) ([]domain.Membership, error)
	ListRoomIDsByUser(txn Txn, userID domain.UserID) ([]domain.RoomID, error)
	DeleteRoomMembers(txn Txn, roomID domain.RoomID) ([]domain.UserID, error)
}

// MembershipRepository stores memberships under the room and keeps
// a reverse index by user so both directions are prefix scans.
type MembershipRepository struct{}

func NewMembershipRepository() MembershipRepository {
	return MembershipRepository{}
}

// AddMember returns ErrAlreadyMember if the (user, room) pair already exists.
func (MembershipRepository) AddMember(txn Txn, membership domain.Membership) error {
	key := memberKey(membership.RoomID, membership.UserID)
	found, err := txn.exists(key)
	if err != nil {
		return err
	}
	if found {
		return errors.ErrAlreadyMember
	}
	if err = txn.set(key, fromMembership(membership)); err != nil {
		return err
	}
	return txn.setRaw(memberByUserKey(membership.UserID, membership.RoomID), []byte{})
}

// GetMembership returns nil when the user is not a member of the room.
func (MembershipRepository) GetMembership(txn Txn, roomID domain.RoomID, userID domain.UserID) (*domain.Membership, error) {
	var record membershipRecord
	found, err := txn.get(memberKey(roomID, userID), &record)
	if err != nil || !found {
		return nil, err
	}
	membership, err := record.toMembership()
	if err != nil {
		return nil, errors.Store(err)
	}
	return &membership, nil
}

func (MembershipRepository) RemoveMember(txn Txn, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	key := memberKey(roomID, userID)
	found, err := txn.exists(key)
	if err != nil || !found {
		return false, err
	}
	if err = txn.delete(key); err != nil {
		return false, err
	}
	return true, txn.delete(memberByUserKey(userID, roomID))
}

// ListByRoom returns the memberships of a room, earliest joiner first.
func (MembershipRepository) ListByRoom(txn Txn, roomID domain.RoomID) ([]domain.Membership, error) {
	var memberships []domain.Membership
	err := txn.scan(roomMembersPrefix(roomID), func(_, value []byte) error {
		var record membershipRecord
		if err := decode(value, &record); err != nil {
			return errors.Store(err)
		}
		membership, err := record.toMembership()
		if err != nil {
			return errors.Store(err)
		}
		memberships = append(memberships, membership)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByJoinedAt(memberships)
	return memberships, nil
}

func (MembershipRepository) ListRoomIDsByUser(txn Txn, userID domain.UserID) ([]domain.RoomID, error) {
	prefix := userRoomsPrefix(userID)
	keys, err := txn.keys(prefix)
	if err != nil {
		return nil, err
	}
	roomIDs := make([]domain.RoomID, 0, len(keys))
	for _, key := range keys {
		roomID, err := domain.ParseRoomID(strings.TrimPrefix(string(key), string(prefix)))
		if err != nil {
			return nil, errors.Store(err)
		}
		roomIDs = append(roomIDs, roomID)
	}
	return roomIDs, nil
}

// DeleteRoomMembers removes every membership of the room with its index entries
// and returns the users who were members.
func (r MembershipRepository) DeleteRoomMembers(txn Txn, roomID domain.RoomID) ([]domain.UserID, error) {
	memberships, err := r.ListByRoom(txn, roomID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if err = txn.delete(memberKey(roomID, m.UserID)); err != nil {
			return nil, err
		}
		if err = txn.delete(memberByUserKey(m.UserID, roomID)); err != nil {
			return nil, err
		}
	}
	return lo.Map(memberships, func(m domain.Membership, _ int) domain.UserID {
		return m.UserID
	}), nil
}

func sortByJoinedAt(memberships []domain.Membership) {
	sort.SliceStable(memberships, func(i, j int) bool {
		return memberships[i].JoinedAt.Before(memberships[j].JoinedAt)
	})
}
