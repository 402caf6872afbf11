//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"room-chat/domain"
	"room-chat/errors"
	"strings"
)

type IUserRepository interface {
	CreateUser(txn Txn, user domain.User) error
	GetUser(txn Txn, id domain.UserID) (domain.User, error)
	GetUserByUsername(txn Txn, username string) (domain.User, error)
	UpdateUser(txn Txn, user domain.User) error
	ListUsers(txn Txn) ([]domain.User, error)
}

// UserRepository keeps usernames unique, case-insensitively,
// through a username -> id index written in the same transaction.
type UserRepository struct{}

func NewUserRepository() UserRepository {
	return UserRepository{}
}

// CreateUser returns ErrUserAlreadyExists when the username is taken.
func (UserRepository) CreateUser(txn Txn, user domain.User) error {
	taken, err := txn.exists(usernameKey(user.Username))
	if err != nil {
		return err
	}
	if taken {
		return errors.ErrUserAlreadyExists
	}
	if err = txn.set(userKey(user.ID), fromUser(user)); err != nil {
		return err
	}
	return txn.setRaw(usernameKey(user.Username), []byte(user.ID))
}

func (UserRepository) GetUser(txn Txn, id domain.UserID) (domain.User, error) {
	var record userRecord
	found, err := txn.get(userKey(id), &record)
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		return domain.User{}, errors.ErrUserNotFound
	}
	return record.toUser(), nil
}

func (r UserRepository) GetUserByUsername(txn Txn, username string) (domain.User, error) {
	id, found, err := txn.getRaw(usernameKey(username))
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		return domain.User{}, errors.ErrUserNotFound
	}
	return r.GetUser(txn, domain.UserID(id))
}

// UpdateUser moves the username index entry when the username changes.
func (r UserRepository) UpdateUser(txn Txn, user domain.User) error {
	current, err := r.GetUser(txn, user.ID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(current.Username, user.Username) {
		taken, err := txn.exists(usernameKey(user.Username))
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrUserAlreadyExists
		}
		if err = txn.delete(usernameKey(current.Username)); err != nil {
			return err
		}
	}
	if err = txn.set(userKey(user.ID), fromUser(user)); err != nil {
		return err
	}
	return txn.setRaw(usernameKey(user.Username), []byte(user.ID))
}

func (UserRepository) ListUsers(txn Txn) ([]domain.User, error) {
	var users []domain.User
	err := txn.scan([]byte(userPrefix), func(_, value []byte) error {
		var record userRecord
		if err := decode(value, &record); err != nil {
			return errors.Store(err)
		}
		users = append(users, record.toUser())
		return nil
	})
	return users, err
}
