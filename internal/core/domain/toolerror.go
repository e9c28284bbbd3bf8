package domain

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a tool failure. The orchestrator only sees text,
// so the kind decides which message a caller renders.
type ErrorKind int

// Error kinds returned by the retrieval tools.
const (
	// KindBackend is a transport, query or malformed-response failure.
	KindBackend ErrorKind = iota

	// KindConfiguration means required settings are absent.
	KindConfiguration

	// KindNotInitialized means the tool's backend never became ready.
	KindNotInitialized

	// KindValidation means a required input field is empty or invalid.
	KindValidation

	// KindNotFound means the request was well formed but nothing matched.
	KindNotFound

	// KindEmptyContent means a record matched but its payload is empty.
	KindEmptyContent
)

// String returns the string representation.
func (k ErrorKind) String() string {
	switch k {
	case KindBackend:
		return "backend"
	case KindConfiguration:
		return "configuration"
	case KindNotInitialized:
		return "not_initialized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindEmptyContent:
		return "empty_content"
	default:
		return "unknown"
	}
}

// sentinel maps a kind onto the matching domain sentinel error.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrNotConfigured
	case KindNotInitialized:
		return ErrNotInitialized
	case KindValidation:
		return ErrInvalidInput
	case KindNotFound:
		return ErrNotFound
	case KindEmptyContent:
		return ErrEmptyContent
	default:
		return ErrBackend
	}
}

// ToolError is the discriminated failure returned by the retrieval tools.
// It matches its kind's sentinel with errors.Is and unwraps to the cause.
type ToolError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Op names the operation, e.g. "document lookup".
	Op string

	// Field is the offending input field for validation errors.
	Field string

	// Err is the underlying cause, may be nil.
	Err error
}

// NewToolError creates a ToolError.
func NewToolError(kind ErrorKind, op string, err error) *ToolError {
	return &ToolError{Kind: kind, Op: op, Err: err}
}

// NewValidationError creates a validation ToolError for an input field.
func NewValidationError(op, field string) *ToolError {
	return &ToolError{
		Kind:  KindValidation,
		Op:    op,
		Field: field,
		Err:   fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, field),
	}
}

// Error implements error.
func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the cause and the kind sentinel to errors.Is/As.
func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Err, e.Kind.sentinel()}
}

// Cause returns a "<Type>: <message>" description of the underlying error,
// preferring a backend-reported message when the cause carries one.
func (e *ToolError) Cause() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	if msg, ok := BackendMessage(e.Err); ok {
		return msg
	}
	return fmt.Sprintf("%T: %s", rootCause(e.Err), e.Err.Error())
}

// rootCause follows single-error Unwrap chains to the innermost error so the
// reported type is the concrete failure rather than a wrapping *fmt.wrapError.
func rootCause(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		next := u.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
}
