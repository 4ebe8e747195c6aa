package domain

import "fmt"

// Error is a domain precondition violation. It carries a message meant for
// the end user and causes the surrounding transaction to abort without being
// logged as a system failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a domain error with a machine-readable code and a
// user-facing message
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a domain error with a formatted user-facing message
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsDomainError reports whether err is a domain precondition violation
func IsDomainError(err error) bool {
	_, ok := err.(*Error)
	return ok
}

// Common error codes
const (
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeMissingField        = "MISSING_FIELD"
	CodeDuplicate           = "DUPLICATE"
	CodeNotFound            = "NOT_FOUND"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
)
