package domain

import "errors"

var (
	ErrEmptyTodoText = errors.New("todo text is empty")
	ErrEmptyRoomName = errors.New("room name is empty")
	ErrNoOpenRoom    = errors.New("no room is currently open")
	ErrTodoNotFound  = errors.New("todo not found in the open room")
)

// FetchError is the single error kind for REST failures: any non-2xx response
// or transport-level failure. It carries a human-readable message only; the
// upstream status code is deliberately not preserved.
type FetchError struct {
	Message string
	cause   error
}

func NewFetchError(message string, cause error) *FetchError {
	return &FetchError{Message: message, cause: cause}
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.cause }

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
