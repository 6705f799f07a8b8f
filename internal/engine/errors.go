package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while a controller is running.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Mode is the mode involved, if any.
	Mode string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownMode indicates a switch to a mode the table does not
	// define, or a switch back when there is no previous mode.
	ErrCodeUnknownMode RuntimeErrorCode = "UNKNOWN_MODE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Mode != "" {
		return fmt.Sprintf("%s: %s (mode=%s)", e.Code, e.Message, e.Mode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownMode returns true if the error is an unknown mode error.
// Uses errors.As to handle wrapped errors.
func IsUnknownMode(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownMode
	}
	return false
}

// NewUnknownModeError creates a RuntimeError for a missing mode.
func NewUnknownModeError(mode string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownMode,
		Message: "mode is not defined",
		Mode:    mode,
	}
}

// ConfigError describes a binding rejected or flagged while building modes.
//
// Codes:
//
//	E201 unknown command name (binding dropped)
//	E202 invalid command parameter (binding dropped)
//	E203 SwitchMode targets an undefined mode (binding dropped)
//	E204 duplicate toggle+trigger pair in a mode (later binding dropped)
//	E205 binding without a trigger key (binding dropped)
//	E206 initial mode is not defined
//	E207 mode declared twice (later declaration ignored)
//	E210 recoverable parameter problem (binding kept, warning only)
type ConfigError struct {
	Code         string
	Mode         string
	BindingIndex int
	Message      string

	// Warning marks problems that did not drop the binding.
	Warning bool

	Err error
}

// Config error codes.
const (
	ErrUnknownCommand = "E201"
	ErrInvalidParam   = "E202"
	ErrUnknownTarget  = "E203"
	ErrDuplicateKey   = "E204"
	ErrMissingTrigger = "E205"
	ErrUnknownInitial = "E206"
	ErrDuplicateMode  = "E207"
	ErrParamWarning   = "E210"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	loc := e.Mode
	if e.BindingIndex >= 0 {
		loc = fmt.Sprintf("%s binding %d", e.Mode, e.BindingIndex)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, loc, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, loc, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is a ConfigError with the given code.
// An empty code matches any ConfigError.
func IsConfigError(err error, code string) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return code == "" || ce.Code == code
	}
	return false
}

// HasFatal reports whether errs contains anything other than warnings.
func HasFatal(errs []error) bool {
	for _, err := range errs {
		var ce *ConfigError
		if errors.As(err, &ce) && ce.Warning {
			continue
		}
		return true
	}
	return false
}
