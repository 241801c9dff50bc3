package apiclient

import (
	"errors"
	"net/http"
)

// DefaultFallback is shown when a call site did not provide its own message.
const DefaultFallback = "Не удалось выполнить запрос к серверу"

var ErrNotFound = errors.New("not found")

// ErrorKind classifies how a request failed.
type ErrorKind int

const (
	// KindTransport means the request never produced an HTTP response.
	KindTransport ErrorKind = iota + 1
	// KindStatus means a non-2xx response carried a structured error envelope.
	KindStatus
	// KindMalformed means the response body could not be decoded.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	}

	return "unknown"
}

// Error is the single error type surfaced by Client. Message is always
// user-facing: either the server's envelope message or the call-site fallback.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers use errors.Is(err, ErrNotFound) for 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Message returns the user-facing text of err, or fallback when err did not
// come from the client.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	if fallback == "" {
		return DefaultFallback
	}

	return fallback
}
