package auth

import (
	"fmt"
	"room-chat/domain"
	"room-chat/errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultIssuer = "room-chat"

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the signed credentials of users.
// The secret is loaded from the configuration, never hardcoded.
type TokenManager struct {
	secret   []byte
	issuer   string
	duration time.Duration
	now      func() time.Time
}

func NewTokenManager(secret, issuer string, duration time.Duration) *TokenManager {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		duration: duration,
		now:      time.Now,
	}
}

// WithClock replaces the time source, mostly for tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// Issue creates a signed JWT for a specific user.
func (m *TokenManager) Issue(user domain.User) (string, error) {
	issuedAt := m.now()
	claims := &CustomClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Roles:    []string{domain.DefaultRoleClaim},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    m.issuer,
		},
	}

	// Create the token using the HS256 algorithm (HMAC with SHA256).
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrTokenGeneration, err)
	}
	return signed, nil
}

// Verify parses and validates the signature and expiration of a JWT string
// and turns its claims into an Identity.
func (m *TokenManager) Verify(credential string) (domain.Identity, error) {
	if credential == "" {
		return domain.Identity{}, errors.ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(credential, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, errors.ErrExpiredToken
		}
		return domain.Identity{}, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return domain.Identity{}, errors.ErrInvalidToken
	}

	identity := domain.Identity{
		UserID:   domain.UserID(claims.UserID),
		Username: claims.Username,
		Role:     domain.DefaultRoleClaim,
	}
	if len(claims.Roles) > 0 {
		identity.Role = claims.Roles[0]
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// BearerToken extracts the credential of an "Authorization: Bearer <token>" header.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
