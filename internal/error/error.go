// internal/error/error.go

package error

import (
	"errors"
	"fmt"
	"strings"
)

type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

type ErrorType int

const (
	ConfigError ErrorType = iota
	ConnectionError
	FramingError
	UsageError
	FileError
	ValidationError
)

func (t ErrorType) String() string {
	switch t {
	case ConfigError:
		return "config"
	case ConnectionError:
		return "connection"
	case FramingError:
		return "framing"
	case UsageError:
		return "usage"
	case FileError:
		return "file"
	case ValidationError:
		return "validation"
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Newf builds an AppError without a wrapped cause.
func Newf(errType ErrorType, format string, args ...any) *AppError {
	return &AppError{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsType reports whether any AppError in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Err
	}
	return false
}

// TclError is an application level failure reported by the remote interpreter.
// Result holds the vendor text verbatim.
type TclError struct {
	Command string
	Result  string
}

func (e *TclError) Error() string {
	if e.Command == "" {
		return "TclError: " + e.Result
	}
	return fmt.Sprintf("TclError: %s: %s", e.Command, e.Result)
}

// AsTclError returns the TclError in err's chain, if any.
func AsTclError(err error) (*TclError, bool) {
	var tclErr *TclError
	if errors.As(err, &tclErr) {
		return tclErr, true
	}
	return nil, false
}

// StreamWarningsError carries the warning list produced by a port write.
type StreamWarningsError struct {
	Port     string
	Warnings []string
}

func (e *StreamWarningsError) Error() string {
	return fmt.Sprintf("port %s stream warnings: %s", e.Port, strings.Join(e.Warnings, "; "))
}
