// Package apperr holds the error kinds every domain package wraps, so the
// HTTP layer can map failures to status codes without knowing each
// package's sentinels.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrPermission = errors.New("permission denied")
)

type Error struct {
	kind error
	msg  string
}

// New returns an error that matches both itself and kind under errors.Is.
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

func Validation(format string, args ...interface{}) error {
	return New(ErrValidation, fmt.Sprintf(format, args...))
}

// Kind reports which of the known kinds err belongs to, or nil.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrPermission} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
