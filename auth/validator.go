package auth

import (
	"regexp"
	"room-chat/domain"
	"room-chat/errors"

	"github.com/go-playground/validator/v10"
)

var (
	validate        = newValidator()
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

// UpdateMeRequest carries optional profile changes.
type UpdateMeRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50,username"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (r UpdateMeRequest) Patch() domain.UserPatch {
	return domain.UserPatch{Username: r.Username, Password: r.Password}
}

func ValidateRegister(req RegisterRequest) error {
	return toDomainError(validate.Struct(req))
}

func ValidateLogin(req LoginRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.ErrInvalidCredentials
	}
	return nil
}

func ValidateUpdateMe(req UpdateMeRequest) error {
	if req.Username == nil && req.Password == nil {
		return errors.ErrEmptyPatch
	}
	return toDomainError(validate.Struct(req))
}

// toDomainError maps the first failing field to its validation sentinel.
func toDomainError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return errors.ErrMalformedPayload
	}
	switch fieldErrors[0].Field() {
	case "Username":
		return errors.ErrInvalidUsername
	case "Password":
		return errors.ErrInvalidPassword
	default:
		return errors.ErrMalformedPayload
	}
}
