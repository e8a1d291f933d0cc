package errors

import (
	"errors"
	"fmt"
)

// Common error types for the web client
var (
	// Remote API classification
	ErrTransport       = errors.New("transport error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrRequestFailed   = errors.New("request failed")

	// Input caught before a request is made
	ErrValidation = errors.New("validation error")

	// Session errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token expired")

	// Token store errors
	ErrTokenNotFound = errors.New("token not found")
	ErrSealedToken   = errors.New("sealed token could not be opened")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single errors import
func New(text string) error {
	return errors.New(text)
}
