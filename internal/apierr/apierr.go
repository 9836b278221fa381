package apierr

import (
	"errors"
	"fmt"
)

// Machine-readable codes the front end branches on.
const (
	CodeValidation   = "validation_error"
	CodeIPLimit      = "ip_limit"
	CodeEmailLimit   = "email_limit"
	CodeMonthlyLimit = "monthly_limit"
	CodeUpstream     = "upstream_error"
	CodeParse        = "parse_error"
	CodePersistence  = "persistence_error"
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

// As unwraps err into an *Error, or nil when it is not one.
func As(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
