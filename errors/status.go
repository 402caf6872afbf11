package errors

import "net/http"

// HTTPStatus maps an error to the status taxonomy exposed by the API.
// Anything outside the known categories is an unexpected failure.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case Is(err, ErrValidation):
		return http.StatusBadRequest
	case Is(err, ErrAuth):
		return http.StatusUnauthorized
	case Is(err, ErrAuthorization):
		return http.StatusForbidden
	case Is(err, ErrNotFound):
		return http.StatusNotFound
	case Is(err, ErrConflict):
		return http.StatusConflict
	case Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns a stable machine readable code for the error category.
func Code(err error) string {
	switch HTTPStatus(err) {
	case http.StatusOK:
		return "OK"
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "AUTH_ERROR"
	case http.StatusForbidden:
		return "AUTHORIZATION_ERROR"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// PublicMessage is the message safe to show to a client.
// Store and unexpected failures never leak their cause.
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// Body is the error shape returned by the HTTP API and the error event.
type Body struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

func ToBody(err error) Body {
	return Body{Status: HTTPStatus(err), Code: Code(err), Message: PublicMessage(err)}
}
