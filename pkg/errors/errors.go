package errors

import (
	stderrors "errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrorType represents different types of parsing errors
type ErrorType int

const (
	ErrorTypeMalformedChunkedBody ErrorType = iota + 1
	ErrorTypeContentDecode
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeMalformedChunkedBody:
		return "MalformedChunkedBody"
	case ErrorTypeContentDecode:
		return "ContentDecodeError"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// Error represents a structured HTTP parsing error
type Error struct {
	Type    ErrorType
	Message string
	Context string
	Raw     []byte
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reqresp: %s: %s (context: %s): %v", e.Type, e.Message, e.Context, e.Cause)
	}
	return fmt.Sprintf("reqresp: %s: %s (context: %s)", e.Type, e.Message, e.Context)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Format prints the cause's stack trace with %+v
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.Cause != nil {
			fmt.Fprintf(s, "%s\n%+v", e.Error(), e.Cause)
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// NewError creates a new Error
func NewError(errType ErrorType, message, context string, raw []byte) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: context,
		Raw:     raw,
		Cause:   pkgerrors.New(message),
	}
}

// Wrap creates a new Error carrying cause
func Wrap(cause error, errType ErrorType, message, context string, raw []byte) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: context,
		Raw:     raw,
		Cause:   pkgerrors.WithStack(cause),
	}
}

// Sentinels for errors.Is checks; only Type is compared.
var (
	ErrMalformedChunkedBody = &Error{Type: ErrorTypeMalformedChunkedBody}
	ErrContentDecode        = &Error{Type: ErrorTypeContentDecode}
)

// IsParseError checks if an error is a parsing error
func IsParseError(err error) bool {
	var e *Error
	return stderrors.As(err, &e)
}

// IsMalformedChunkedBody reports whether err came from the transfer decoder
func IsMalformedChunkedBody(err error) bool {
	return stderrors.Is(err, ErrMalformedChunkedBody)
}

// IsContentDecodeError reports whether err came from the content decoder
func IsContentDecodeError(err error) bool {
	return stderrors.Is(err, ErrContentDecode)
}
