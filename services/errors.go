package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ValidationError is a 400 carrying one message per problem.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, "; ") }

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func Forbidden(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

// AuthenticationError is a 401 unless Status says otherwise.
type AuthenticationError struct {
	Message string
	Status  int
}

func (e *AuthenticationError) Error() string { return e.Message }

func Unauthenticated(message string) *AuthenticationError {
	return &AuthenticationError{Message: message, Status: http.StatusUnauthorized}
}

var errNotOwner = Forbidden("You do not have permission to modify this resource")

// StatusOf maps an error to its HTTP status. Unknown errors are 500.
func StatusOf(err error) int {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		authz      *AuthorizationError
		authn      *AuthenticationError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &authz):
		return http.StatusForbidden
	case errors.As(err, &authn):
		if authn.Status != 0 {
			return authn.Status
		}
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// notFoundOr converts gorm.ErrRecordNotFound into a NotFoundError.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Message: message}
	}
	return err
}

// duplicateOr converts a unique-constraint violation into a ValidationError.
func duplicateOr(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidationError(message)
	}
	return err
}
