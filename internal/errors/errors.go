package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingFields is returned when a registration field is absent.
	ErrMissingFields = errors.New("all fields required")
	// ErrMissingCredentials is returned when login email or password is absent.
	ErrMissingCredentials = errors.New("email and password required")
	// ErrInvalidEmail is returned when the email does not look like local@domain.tld.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when the password is shorter than 6 characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrDuplicateUser is returned when the email is already registered.
	ErrDuplicateUser = errors.New("username or email already exists")
	// ErrInvalidCredentials is returned for unknown email or wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingTitle is returned when a task is created without a title.
	ErrMissingTitle = errors.New("title is required")
	// ErrInvalidStatus is returned for a status outside the fixed enumeration.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidPriority is returned for a priority outside the fixed enumeration.
	ErrInvalidPriority = errors.New("invalid task priority")
	// ErrTaskNotFound is returned when no task matches both id and owner.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNoSigningSecret is returned when the token signing secret is not configured.
	ErrNoSigningSecret = errors.New("server configuration error")
)

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HTTPError pairs a domain error with the status it surfaces as.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors
// collapse to an opaque 500 so internals never leak to the caller.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrMissingTitle),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrDuplicateUser):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrTaskNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoSigningSecret):
		return NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
