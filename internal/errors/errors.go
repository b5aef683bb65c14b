package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the engine.
// Mapping these to transport-level failures (HTTP statuses etc) is a
// caller concern, not this package's.
var (
	ErrNotFound           = new(ErrCodeNotFound, "resource not found")
	ErrValidation         = new(ErrCodeValidation, "validation error")
	ErrConfiguration      = new(ErrCodeConfiguration, "invalid billing configuration")
	ErrExpressionSyntax   = new(ErrCodeExpressionSyntax, "expression syntax error")
	ErrExpressionSemantic = new(ErrCodeExpressionSemantic, "expression evaluation error")
	ErrSystem             = new(ErrCodeSystemError, "system error")
)

const (
	ErrCodeNotFound           = "not_found"
	ErrCodeValidation         = "validation_error"
	ErrCodeConfiguration      = "configuration_error"
	ErrCodeExpressionSyntax   = "expression_syntax_error"
	ErrCodeExpressionSemantic = "expression_semantic_error"
	ErrCodeSystemError        = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// new creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConfiguration checks if an error is a billing configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsExpressionSyntax checks if an error is an expression parse error
func IsExpressionSyntax(err error) bool {
	return errors.Is(err, ErrExpressionSyntax)
}

// IsExpressionSemantic checks if an error is an expression evaluation error
func IsExpressionSemantic(err error) bool {
	return errors.Is(err, ErrExpressionSemantic)
}

// IsSystem checks if an error is a system error
func IsSystem(err error) bool {
	return errors.Is(err, ErrSystem)
}
