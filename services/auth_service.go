//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"room-chat/auth"
	"room-chat/domain"
	"room-chat/errors"
	"room-chat/repositories"
	"room-chat/search"
	"strings"
	"time"
)

// PasswordHasher hashes and checks passwords, the algorithm stays opaque here.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, encodedHash string) (bool, error)
}

// IdentityVerifier issues credentials and turns them back into identities.
type IdentityVerifier interface {
	Issue(user domain.User) (string, error)
	Verify(credential string) (domain.Identity, error)
}

type Token string

func (t Token) String() string {
	return string(t)
}

// Profile is the public view of a user.
type Profile struct {
	ID        domain.UserID `json:"id"`
	Username  string        `json:"username"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}

func NewProfile(u domain.User) Profile {
	return Profile{ID: u.ID, Username: u.Username, Active: u.Active, CreatedAt: u.CreatedAt}
}

type AuthService struct {
	log      *slog.Logger
	uow      repositories.IUnitOfWork
	users    repositories.IUserRepository
	hasher   PasswordHasher
	verifier IdentityVerifier
	index    search.IIndex
	now      func() time.Time
}

func NewAuthService(log *slog.Logger, uow repositories.IUnitOfWork, users repositories.IUserRepository,
	hasher PasswordHasher, verifier IdentityVerifier, index search.IIndex) *AuthService {
	return &AuthService{
		log:      log,
		uow:      uow,
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		index:    index,
		now:      time.Now,
	}
}

// Register creates an active user and returns its first token.
func (s *AuthService) Register(ctx context.Context, req auth.RegisterRequest) (Token, Profile, error) {
	// Validation comes before any expensive hashing
	if err := auth.ValidateRegister(req); err != nil {
		return "", Profile{}, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", Profile{}, err
	}

	user := domain.User{
		ID:           domain.NewUserID(),
		Username:     req.Username,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.uow.Update(ctx, func(txn repositories.Txn) error {
		return s.users.CreateUser(txn, user)
	}); err != nil {
		return "", Profile{}, err
	}
	s.indexUser(user)

	token, err := s.verifier.Issue(user)
	if err != nil {
		return "", Profile{}, err
	}
	s.log.Info("User registered", "user_id", user.ID.String())
	return Token(token), NewProfile(user), nil
}

// Login checks the credentials of an active user. Every failure reads the same,
// so usernames cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, req auth.LoginRequest) (Token, Profile, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return "", Profile{}, err
	}
	var user domain.User
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		var err error
		user, err = s.users.GetUserByUsername(txn, req.Username)
		return err
	})
	if errors.Is(err, errors.ErrUserNotFound) {
		return "", Profile{}, errors.ErrInvalidCredentials
	}
	if err != nil {
		return "", Profile{}, err
	}

	match, err := s.hasher.Compare(req.Password, user.PasswordHash)
	if err != nil || !match {
		return "", Profile{}, errors.ErrInvalidCredentials
	}
	if !user.Active {
		return "", Profile{}, errors.ErrInactiveUser
	}

	token, err := s.verifier.Issue(user)
	if err != nil {
		return "", Profile{}, err
	}
	return Token(token), NewProfile(user), nil
}

// Verify checks a credential and that its user still exists and is active.
func (s *AuthService) Verify(ctx context.Context, credential string) (domain.Identity, error) {
	identity, err := s.verifier.Verify(credential)
	if err != nil {
		return domain.Identity{}, err
	}
	user, err := s.GetUser(ctx, identity.UserID)
	if errors.Is(err, errors.ErrUserNotFound) {
		return domain.Identity{}, errors.ErrInvalidToken
	}
	if err != nil {
		return domain.Identity{}, err
	}
	if !user.Active {
		return domain.Identity{}, errors.ErrInactiveUser
	}
	return identity, nil
}

func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (Profile, error) {
	user, err := s.GetUser(ctx, identity.UserID)
	if err != nil {
		return Profile{}, err
	}
	return NewProfile(user), nil
}

// UpdateMe changes the username and/or password of the caller.
// A username change invalidates the claims of the current token, so a new one is issued.
func (s *AuthService) UpdateMe(ctx context.Context, identity domain.Identity, req auth.UpdateMeRequest) (Profile, *Token, error) {
	if err := auth.ValidateUpdateMe(req); err != nil {
		return Profile{}, nil, err
	}
	patch := req.Patch()

	var hash string
	if patch.Password != nil {
		var err error
		if hash, err = s.hasher.Hash(*patch.Password); err != nil {
			return Profile{}, nil, err
		}
	}

	var user domain.User
	renamed := false
	err := s.uow.Update(ctx, func(txn repositories.Txn) error {
		var err error
		if user, err = s.users.GetUser(txn, identity.UserID); err != nil {
			return err
		}
		if patch.Username != nil && *patch.Username != user.Username {
			renamed = true
			user.Username = *patch.Username
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		return s.users.UpdateUser(txn, user)
	})
	if err != nil {
		return Profile{}, nil, err
	}

	if !renamed {
		return NewProfile(user), nil, nil
	}
	s.indexUser(user)
	issued, err := s.verifier.Issue(user)
	if err != nil {
		return Profile{}, nil, err
	}
	token := Token(issued)
	return NewProfile(user), &token, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID domain.UserID) (domain.User, error) {
	var user domain.User
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		var err error
		user, err = s.users.GetUser(txn, userID)
		return err
	})
	return user, err
}

// SearchUsers returns the users whose username starts with the query.
func (s *AuthService) SearchUsers(ctx context.Context, query string, limit int) ([]Profile, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.ErrEmptyQuery
	}
	ids, err := s.index.SearchUsers(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(ids))
	err = s.uow.View(ctx, func(txn repositories.Txn) error {
		for _, id := range ids {
			user, err := s.users.GetUser(txn, id)
			if errors.Is(err, errors.ErrUserNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			profiles = append(profiles, NewProfile(user))
		}
		return nil
	})
	return profiles, err
}

// ReindexUsers rebuilds the user documents from the store, used at boot
// when the index lives in memory.
func (s *AuthService) ReindexUsers(ctx context.Context) (int, error) {
	var users []domain.User
	if err := s.uow.View(ctx, func(txn repositories.Txn) error {
		var err error
		users, err = s.users.ListUsers(txn)
		return err
	}); err != nil {
		return 0, err
	}
	for _, user := range users {
		if err := s.index.IndexUser(user); err != nil {
			return 0, err
		}
	}
	return len(users), nil
}

// indexUser never fails the request: the store is the source of truth.
func (s *AuthService) indexUser(user domain.User) {
	if err := s.index.IndexUser(user); err != nil {
		s.log.Warn("User not indexed", "user_id", user.ID.String(), "error", err)
	}
}
