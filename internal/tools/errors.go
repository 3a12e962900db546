package tools

import "fmt"

// Error codes surfaced to callers in the result's error.code field.
const (
	CodeUnknownTool    = "unknown_tool"
	CodeInvalidRequest = "invalid_request"
	CodeInvalidCommand = "invalid_command"
	CodeNotAuthorized  = "not_authorized"
	CodeSSHError       = "ssh_error"
	CodeInternalError  = "internal_error"
)

// Error is a tool-level failure with a taxonomy code. It maps onto the
// error object of the wire result.
type Error struct {
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalidRequest(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func invalidCommand(err error) *Error {
	return &Error{Code: CodeInvalidCommand, Message: err.Error()}
}

func sshError(err error) *Error {
	return &Error{Code: CodeSSHError, Message: err.Error()}
}
