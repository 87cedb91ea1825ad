package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeAlreadyExists   ErrorCode = "ALREADY_EXISTS"
	CodeFailedPrecond   ErrorCode = "FAILED_PRECONDITION"
	CodeUnavailable     ErrorCode = "UNAVAILABLE"
	CodeRejected        ErrorCode = "REJECTED"
	CodeCanceled        ErrorCode = "CANCELED"
	CodeInternal        ErrorCode = "INTERNAL"
)

// Sentinel errors surfaced by the server-creation workflow. All are
// recoverable; the user may retry the workflow.
var (
	ErrEmptyName        = errors.New("server name must not be empty")
	ErrDuplicateName    = errors.New("server name already in use")
	ErrNoServerDetected = errors.New("Cannot detect server in selected location!")
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
		}
	}
	return E(code, op, "", err)
}

// CodeFrom resolves the error code for an error, mapping workflow sentinels
// to stable codes the host shell can dispatch on.
func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrEmptyName):
		return CodeInvalidArgument, true
	case errors.Is(err, ErrDuplicateName):
		return CodeAlreadyExists, true
	case errors.Is(err, ErrNoServerDetected):
		return CodeFailedPrecond, true
	default:
		return "", false
	}
}
