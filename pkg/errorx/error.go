package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string

	cause error
}

func New(code Code, format string, args ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is the same as New but keeps err reachable through errors.Is and errors.As.
func Wrap(code Code, err error, format string, args ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an Error with the same code.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Code == e.Code
}

// Cause returns the wrapped error, or nil.
func (e Error) Cause() error {
	return e.cause
}

// CodeOf returns the code of err if it is an Error, otherwise Unknown.Code.
func CodeOf(err error) Code {
	var errx Error
	if errors.As(err, &errx) {
		return errx.Code
	}

	return Unknown.Code
}
