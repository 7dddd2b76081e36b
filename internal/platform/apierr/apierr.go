package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, "not_found", fmt.Errorf("%s not found", what))
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}
