package auth

import (
	"room-chat/domain"
	"room-chat/errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	hasher := NewArgon2Hasher(testParams)
	password := "correct-horse-battery"

	hash, err := hasher.Hash(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := hasher.Compare(password, hash)
	req.NoError(err)
	req.True(match)

	// Wrong password
	match, err = hasher.Compare("wrong-password", hash)
	req.NoError(err)
	req.False(match)

	// Hash produced with other parameters is still verifiable
	match, err = NewArgon2Hasher(DefaultParams).Compare(password, hash)
	req.NoError(err)
	req.True(match)
}

func TestCompare_InvalidHashFormat(t *testing.T) {
	req := require.New(t)
	hasher := NewArgon2Hasher(testParams)

	_, err := hasher.Compare("password", "not-a-hash")
	req.ErrorIs(err, errors.ErrInvalidHashFormat)

	_, err = hasher.Compare("password", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	req.ErrorIs(err, errors.ErrInvalidHashFormat)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"Valid request", RegisterRequest{"alice", "password123"}, nil},
		{"Dots and dashes", RegisterRequest{"alice.b-c_d", "password123"}, nil},
		{"Username too short", RegisterRequest{"al", "password123"}, errors.ErrInvalidUsername},
		{"Username too long", RegisterRequest{strings.Repeat("a", 51), "password123"}, errors.ErrInvalidUsername},
		{"Username with spaces", RegisterRequest{"alice smith", "password123"}, errors.ErrInvalidUsername},
		{"Password too short", RegisterRequest{"alice", "short"}, errors.ErrInvalidPassword},
		{"Password too long", RegisterRequest{"alice", strings.Repeat("a", 73)}, errors.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, errors.ErrValidation)
		})
	}
}

func TestUpdateMeValidation(t *testing.T) {
	req := require.New(t)
	name := "bob"
	short := "x"

	req.ErrorIs(ValidateUpdateMe(UpdateMeRequest{}), errors.ErrEmptyPatch)
	req.NoError(ValidateUpdateMe(UpdateMeRequest{Username: &name}))
	req.ErrorIs(ValidateUpdateMe(UpdateMeRequest{Password: &short}), errors.ErrInvalidPassword)
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("secret", "", time.Hour)
	user := domain.User{ID: "user-123", Username: "alice", Active: true}

	// Given a token issued for alice
	token, err := manager.Issue(user)
	req.NoError(err)

	// When it is verified
	identity, err := manager.Verify(token)

	// Then the identity is the one of alice
	req.NoError(err)
	req.Equal(domain.UserID("user-123"), identity.UserID)
	req.Equal("alice", identity.Username)
	req.Equal(domain.DefaultRoleClaim, identity.Role)
	req.WithinDuration(identity.IssuedAt.Add(time.Hour), identity.ExpiresAt, time.Second)
}

func TestTokenManager_Verify_Failures(t *testing.T) {
	req := require.New(t)
	past := time.Now().Add(-2 * time.Hour)
	user := domain.User{ID: "user-123", Username: "alice"}

	// Expired token
	expired, err := NewTokenManager("secret", "", time.Hour).
		WithClock(func() time.Time { return past }).
		Issue(user)
	req.NoError(err)
	_, err = NewTokenManager("secret", "", time.Hour).Verify(expired)
	req.ErrorIs(err, errors.ErrExpiredToken)
	req.ErrorIs(err, errors.ErrAuth)

	// Signed with another secret
	forged, err := NewTokenManager("other", "", time.Hour).Issue(user)
	req.NoError(err)
	_, err = NewTokenManager("secret", "", time.Hour).Verify(forged)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// Signed by another issuer
	foreign, err := NewTokenManager("secret", "someone-else", time.Hour).Issue(user)
	req.NoError(err)
	_, err = NewTokenManager("secret", "", time.Hour).Verify(foreign)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// Unsigned token
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{UserID: "user-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	req.NoError(err)
	_, err = NewTokenManager("secret", "", time.Hour).Verify(none)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// Garbage and missing credential
	_, err = NewTokenManager("secret", "", time.Hour).Verify("garbage")
	req.ErrorIs(err, errors.ErrInvalidToken)
	_, err = NewTokenManager("secret", "", time.Hour).Verify("")
	req.ErrorIs(err, errors.ErrMissingToken)
}

func TestBearerToken(t *testing.T) {
	req := require.New(t)

	req.Equal("abc", BearerToken("Bearer abc"))
	req.Equal("abc", BearerToken("bearer abc"))
	req.Empty(BearerToken("Basic abc"))
	req.Empty(BearerToken(""))
}
