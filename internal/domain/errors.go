package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrMalformedMarkup = errors.New("malformed markup")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotRepository   = errors.New("not a git repository")
)

// Violation kinds reported by the article validator.
const (
	ViolationType       = "type"
	ViolationRequired   = "required"
	ViolationEnum       = "enum"
	ViolationExtraField = "additionalProperties"
	ViolationPattern    = "pattern"
	ViolationFormat     = "format"
	ViolationStructure  = "structure"
)

// Violation is a single schema failure located by a JSON pointer.
type Violation struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s", path, v.Message)
}

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates an article (or request) failed validation.
	// Violations lists every failure found, not just the first.
	ValidationError struct {
		Message    string
		Violations []Violation
	}

	// MarkupError indicates editor markup could not be turned into a node tree.
	MarkupError struct {
		Message string
		Err     error
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusUnprocessableEntity }
func (e *MarkupError) StatusCode() int       { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *MarkupError) Is(target error) bool       { return target == ErrMalformedMarkup }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// Error renders the message followed by one line per violation.
func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = ErrValidation.Error()
	}
	if len(e.Violations) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for _, v := range e.Violations {
		b.WriteString("\n- ")
		b.WriteString(v.String())
	}
	return b.String()
}

func (e *MarkupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *MarkupError) Unwrap() error { return e.Err }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (article, workspace)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
