package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/makita-adocao/makita-web/internal/errors"
)

// Kind classifies a failed API call
type Kind int

const (
	KindTransport Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindRequestFailed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRequestFailed:
		return "request_failed"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return apperrors.ErrTransport
	case KindUnauthenticated:
		return apperrors.ErrUnauthenticated
	case KindForbidden:
		return apperrors.ErrForbidden
	case KindNotFound:
		return apperrors.ErrNotFound
	default:
		return apperrors.ErrRequestFailed
	}
}

var defaultMessages = map[Kind]string{
	KindTransport:       "Could not reach the adoption service. Try again later.",
	KindUnauthenticated: "Session expired. Please sign in again.",
	KindForbidden:       "You are not allowed to perform this action.",
	KindNotFound:        "Not found.",
	KindRequestFailed:   "The request could not be completed.",
}

// Error is returned by every Client call that fails. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the matching internal/errors sentinel so callers can use errors.Is
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the classification of err, or 0 when err did not come from the client
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// classify maps a response to nil (2xx) or a classified *Error.
// It is the only place status codes are interpreted.
func classify(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	kind := KindRequestFailed
	switch status {
	case 401:
		kind = KindUnauthenticated
	case 403:
		kind = KindForbidden
	case 404:
		kind = KindNotFound
	}

	msg := serverMessage(body)
	if msg == "" {
		msg = defaultMessages[kind]
	}
	return &Error{Kind: kind, Status: status, Message: msg}
}

func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if m := strings.TrimSpace(eb.Message); m != "" {
		return m
	}
	return strings.TrimSpace(eb.Error)
}

func transportError(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: defaultMessages[KindTransport],
		Err:     fmt.Errorf("[apiclient] %w", err),
	}
}
