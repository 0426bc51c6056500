// Package errors provides structured error handling for the relnotes CLI.
// A CLIError carries a category (which selects the exit code), a message,
// and remediation steps printed under "To fix this:".
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory int

const (
	// Argument errors are caused by invalid or missing command arguments.
	Argument ErrorCategory = iota
	// Configuration errors are caused by invalid or missing configuration.
	Configuration
	// Prerequisite errors mean the repository is not in a releasable state:
	// missing tags, missing releases, no checkout.
	Prerequisite
	// Runtime errors occur during command execution.
	Runtime
	// Remote errors are failures reported by GitHub or Linear.
	Remote
)

var categoryNames = map[ErrorCategory]string{
	Argument:      "Argument Error",
	Configuration: "Configuration Error",
	Prerequisite:  "Prerequisite Error",
	Runtime:       "Runtime Error",
	Remote:        "Remote API Error",
}

func (c ErrorCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Error"
}

// CLIError is a structured error with category and remediation guidance.
type CLIError struct {
	Category    ErrorCategory
	Message     string
	Remediation []string
	// Usage shows the correct command syntax for argument errors.
	Usage string
	// Err is the underlying cause, if any.
	Err error
}

func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the cause so errors.Is sees through a CLIError.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// New creates a CLIError without an underlying cause.
func New(category ErrorCategory, message string, remediation ...string) *CLIError {
	return &CLIError{Category: category, Message: message, Remediation: remediation}
}

// NewArgumentError creates an argument error.
func NewArgumentError(message string, remediation ...string) *CLIError {
	return New(Argument, message, remediation...)
}

// NewArgumentErrorWithUsage creates an argument error that shows usage.
func NewArgumentErrorWithUsage(message, usage string, remediation ...string) *CLIError {
	e := New(Argument, message, remediation...)
	e.Usage = usage
	return e
}

// Wrap attaches a category and remediation to err. The message is
// "message: err", or err's own text when message is empty. Wrap returns nil
// for a nil err.
func Wrap(err error, category ErrorCategory, message string, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	text := err.Error()
	if message != "" {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	return &CLIError{
		Category:    category,
		Message:     text,
		Remediation: remediation,
		Err:         err,
	}
}

// AsCLIError returns the first CLIError in err's chain, or nil.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if stderrors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}
