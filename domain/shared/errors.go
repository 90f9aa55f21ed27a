/*
Package shared holds the building blocks common to every subdomain: the entity
base model, domain events and their dispatcher, the specification query object,
the repository and unit-of-work contracts, the cache-policy registry and the
audit model.

Error design:
  - sentinel errors support errors.Is() checks without string matching
  - DomainError carries a machine-readable code plus formatting parameters, so
    an outer layer can translate it; the message here is a developer fallback
  - the stack is captured at creation and formatted lazily, only when logged
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrNotFound marks the absence of an expected entity.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a resource conflict such as a unique-constraint hit.
	ErrConflict = errors.New("conflict")

	// ErrConcurrencyConflict marks a persist that failed because the entity's
	// version token was stale. The caller must reload and retry the use case;
	// the unit of work never retries on its own.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrInvalidInput marks failed input validation.
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError is a business-rule violation raised by aggregate or domain
// service logic. It is collected into notifications at the use-case boundary
// and never crosses it as an error.
type DomainError struct {
	// Err is the underlying sentinel, for errors.Is().
	Err error

	// Code is the machine-readable rule identifier, e.g. "orders.itemAlreadyExists".
	Code string

	// Params are the values to interpolate into a translated message.
	Params []any

	// Message is a developer-readable fallback description.
	Message string

	stack []uintptr
}

func (e *DomainError) Error() string {
	if len(e.Params) > 0 {
		return fmt.Sprintf("%s: %s %v", e.Code, e.Message, e.Params)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack formats the captured stack on demand.
func (e *DomainError) Stack() []string {
	return formatStack(e.stack)
}

// NewRuleError creates a business-rule violation with a machine-readable code.
func NewRuleError(code, message string, params ...any) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    code,
		Message: message,
		Params:  params,
		stack:   captureStack(3),
	}
}

// NewNotFoundError creates a "not found" domain error for the named entity.
func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    entity + ".notFound",
		Message: entity + " not found",
		stack:   captureStack(3),
	}
}

func captureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

func formatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}
