//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"room-chat/domain"
	"room-chat/errors"
	"sort"
)

type IRoomRepository interface {
	CreateRoom(txn Txn, room domain.Room) error
	GetRoom(txn Txn, id domain.RoomID) (domain.Room, error)
	UpdateRoom(txn Txn, room domain.Room) error
	DeleteRoom(txn Txn, id domain.RoomID) error
	ListRooms(txn Txn) ([]domain.Room, error)
}

type RoomRepository struct{}

func NewRoomRepository() RoomRepository {
	return RoomRepository{}
}

func (RoomRepository) CreateRoom(txn Txn, room domain.Room) error {
	return txn.set(roomKey(room.ID), fromRoom(room))
}

// GetRoom returns ErrRoomNotFound when no room has this id.
func (RoomRepository) GetRoom(txn Txn, id domain.RoomID) (domain.Room, error) {
	var record roomRecord
	found, err := txn.get(roomKey(id), &record)
	if err != nil {
		return domain.Room{}, err
	}
	if !found {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	room, err := record.toRoom()
	if err != nil {
		return domain.Room{}, errors.Store(err)
	}
	return room, nil
}

func (RoomRepository) UpdateRoom(txn Txn, room domain.Room) error {
	found, err := txn.exists(roomKey(room.ID))
	if err != nil {
		return err
	}
	if !found {
		return errors.ErrRoomNotFound
	}
	return txn.set(roomKey(room.ID), fromRoom(room))
}

func (RoomRepository) DeleteRoom(txn Txn, id domain.RoomID) error {
	found, err := txn.exists(roomKey(id))
	if err != nil {
		return err
	}
	if !found {
		return errors.ErrRoomNotFound
	}
	return txn.delete(roomKey(id))
}

// ListRooms returns every room, oldest first.
func (RoomRepository) ListRooms(txn Txn) ([]domain.Room, error) {
	var rooms []domain.Room
	err := txn.scan([]byte(roomPrefix), func(_, value []byte) error {
		var record roomRecord
		if err := decode(value, &record); err != nil {
			return errors.Store(err)
		}
		room, err := record.toRoom()
		if err != nil {
			return errors.Store(err)
		}
		rooms = append(rooms, room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ID.String() < rooms[j].ID.String()
	})
	return rooms, nil
}
