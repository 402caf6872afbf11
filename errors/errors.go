// Package errors defines the error taxonomy shared by every layer.
// Each specific error wraps exactly one category, so callers can test
// either the precise cause or its category with Is.
package errors

import (
	"errors"
	"fmt"
)

// Categories
var (
	ErrAuth          = errors.New("unauthenticated")
	ErrAuthorization = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrStore         = errors.New("store failure")
	ErrUnavailable   = errors.New("unavailable")
)

// Authentication
var (
	ErrMissingToken       = fmt.Errorf("%w: credential is missing", ErrAuth)
	ErrInvalidToken       = fmt.Errorf("%w: invalid credential", ErrAuth)
	ErrExpiredToken       = fmt.Errorf("%w: expired credential", ErrAuth)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuth)
	ErrInactiveUser       = fmt.Errorf("%w: user is inactive", ErrAuth)
)

// Authorization
var (
	ErrNotMember        = fmt.Errorf("%w: user is not a member of the room", ErrAuthorization)
	ErrNotAdmin         = fmt.Errorf("%w: user is not an admin of the room", ErrAuthorization)
	ErrNotAuthor        = fmt.Errorf("%w: user is not the author of the message", ErrAuthorization)
	ErrNotAuthorOrAdmin = fmt.Errorf("%w: user is neither the author nor a room admin", ErrAuthorization)
	ErrPrivateRoom      = fmt.Errorf("%w: room is private", ErrAuthorization)
)

// Missing entities
var (
	ErrRoomNotFound    = fmt.Errorf("%w: room", ErrNotFound)
	ErrMessageNotFound = fmt.Errorf("%w: message", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("%w: user", ErrNotFound)
)

// Validation
var (
	ErrEmptyContent      = fmt.Errorf("%w: content must not be empty", ErrValidation)
	ErrContentTooLong    = fmt.Errorf("%w: content is too long", ErrValidation)
	ErrInvalidLimit      = fmt.Errorf("%w: limit is out of range", ErrValidation)
	ErrInvalidCursor     = fmt.Errorf("%w: cursor does not belong to the room", ErrValidation)
	ErrInvalidRoomName   = fmt.Errorf("%w: invalid room name", ErrValidation)
	ErrInvalidVisibility = fmt.Errorf("%w: visibility must be public or private", ErrValidation)
	ErrInvalidUsername   = fmt.Errorf("%w: invalid username", ErrValidation)
	ErrInvalidPassword   = fmt.Errorf("%w: invalid password", ErrValidation)
	ErrInvalidID         = fmt.Errorf("%w: malformed identifier", ErrValidation)
	ErrEmptyPatch        = fmt.Errorf("%w: nothing to update", ErrValidation)
	ErrUnknownAction     = fmt.Errorf("%w: unknown action", ErrValidation)
	ErrMalformedPayload  = fmt.Errorf("%w: malformed payload", ErrValidation)
	ErrEmptyQuery        = fmt.Errorf("%w: search query must not be empty", ErrValidation)
)

// Conflicts
var (
	ErrAlreadyMember     = fmt.Errorf("%w: user is already a member of the room", ErrConflict)
	ErrUserAlreadyExists = fmt.Errorf("%w: username is already taken", ErrConflict)
)

// Runtime
var (
	ErrShuttingDown       = fmt.Errorf("%w: server is shutting down", ErrUnavailable)
	ErrWorkerPanic        = errors.New("worker panic")
	ErrEmptyWords         = errors.New("no words have been found")
	ErrTokenGeneration    = errors.New("token generation failed")
	ErrConnectionClosed   = errors.New("connection closed")
	ErrAlreadyRegistered  = errors.New("connection is already registered")
	ErrUnknownConnection  = errors.New("unknown connection")
	ErrSinkBufferOverflow = errors.New("sink buffer is full")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrInvalidHashFormat  = errors.New("invalid hash format")
)

// Store wraps a collaborator failure so that it is reported as ErrStore
// while keeping the original cause reachable for logging.
func Store(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStore, err)
}

// Categorized reports whether err already belongs to one of the categories.
func Categorized(err error) bool {
	for _, category := range []error{ErrAuth, ErrAuthorization, ErrNotFound, ErrValidation, ErrConflict, ErrStore, ErrUnavailable} {
		if errors.Is(err, category) {
			return true
		}
	}
	return false
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }
