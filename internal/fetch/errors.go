package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrIO covers transport failures and responses other than 200.
	ErrIO = errors.New("io error")
	// ErrFormat is returned when a response body cannot be decoded.
	ErrFormat = errors.New("format error")
)

// StatusError is returned for any response status other than 200.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d", e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrIO
}
