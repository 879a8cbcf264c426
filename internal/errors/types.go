// Package errors defines the structured error type shared by the rendering
// pipeline, the post scanner and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeSecurity ErrorType = "security"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeRender   ErrorType = "render"
	ErrorTypeNotFound ErrorType = "not_found"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeInvalidSelector  = "ERR_INVALID_SELECTOR"
	ErrCodeSourceDirMissing = "ERR_SOURCE_DIR_MISSING"
	ErrCodeInvalidConfig    = "ERR_INVALID_CONFIG"
	ErrCodePathEscape       = "ERR_PATH_ESCAPE"
	ErrCodeSnippetRead      = "ERR_SNIPPET_READ"
	ErrCodePostRead         = "ERR_POST_READ"
	ErrCodeRewrite          = "ERR_REWRITE"
	ErrCodeMarkdown         = "ERR_MARKDOWN"
	ErrCodePostNotFound     = "ERR_POST_NOT_FOUND"
	ErrCodeInternal         = "ERR_INTERNAL"
)

// OpaqueError is a structured error type with context.
type OpaqueError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
	Path    string
}

// Error implements the error interface.
func (e *OpaqueError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *OpaqueError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an OpaqueError of the same type and code.
func (e *OpaqueError) Is(target error) bool {
	var t *OpaqueError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds a context value to the error.
func (e *OpaqueError) WithContext(key string, value interface{}) *OpaqueError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath sets the file the error refers to.
func (e *OpaqueError) WithPath(path string) *OpaqueError {
	e.Path = path

	return e
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *OpaqueError {
	return &OpaqueError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *OpaqueError {
	return &OpaqueError{
		Type:    ErrorTypeSecurity,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *OpaqueError {
	return &OpaqueError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewRenderError creates an error raised while producing HTML.
func NewRenderError(code, message string, cause error) *OpaqueError {
	return &OpaqueError{
		Type:    ErrorTypeRender,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(code, message string) *OpaqueError {
	return &OpaqueError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *OpaqueError {
	return &OpaqueError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasErrorType checks if any OpaqueError in the chain has the given type.
func HasErrorType(err error, errType ErrorType) bool {
	var oe *OpaqueError
	for err != nil {
		if errors.As(err, &oe) {
			if oe.Type == errType {
				return true
			}
			err = oe.Cause
			continue
		}
		return false
	}

	return false
}

// HasErrorCode checks if any OpaqueError in the chain has the given code.
func HasErrorCode(err error, code string) bool {
	var oe *OpaqueError
	for err != nil {
		if errors.As(err, &oe) {
			if oe.Code == code {
				return true
			}
			err = oe.Cause
			continue
		}
		return false
	}

	return false
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	return HasErrorType(err, ErrorTypeSecurity)
}

// IsConfigError checks if an error comes from bad configuration.
func IsConfigError(err error) bool {
	return HasErrorType(err, ErrorTypeConfig)
}

// IsNotFound checks if an error reports a missing resource.
func IsNotFound(err error) bool {
	return HasErrorType(err, ErrorTypeNotFound)
}

// HTTPStatus maps an error to the status the server responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsSecurityError(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
