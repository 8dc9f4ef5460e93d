package apperrors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeInvalidInput       ErrorCode = "INVALID_INPUT"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	CodeInternal           ErrorCode = "INTERNAL"
)

// AppError carries a taxonomy code and a message that is safe to show to
// participants. Err is the underlying cause and is only ever logged.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// UserMessage is what the chat layer displays for err. Persistence and
// internal failures never leak their cause.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return RetryLaterMessage
	}
	switch appErr.Code {
	case CodeDatabaseError, CodeInternal:
		return RetryLaterMessage
	default:
		return appErr.Message
	}
}

const RetryLaterMessage = "Something went wrong on our side. Please try again later."
