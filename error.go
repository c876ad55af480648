package pageport

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	EUNSUPPORTED = "unsupported"
	EBUDGET      = "budget_exceeded"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("pageport error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// BudgetExceededError is returned when the budget gate rejects an export.
// It carries the full validation report so callers can present every violation.
type BudgetExceededError struct {
	Report *BudgetReport
}

func (e *BudgetExceededError) Error() string {
	n := 0
	if e.Report != nil {
		n = len(e.Report.Violations)
	}
	return fmt.Sprintf("pageport error: code=%s message=%d budget violation(s) without override", EBUDGET, n)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var be *BudgetExceededError
	if errors.As(err, &be) {
		return EBUDGET
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var be *BudgetExceededError
	if errors.As(err, &be) {
		return "export exceeds budget"
	}
	return "Internal error"
}
