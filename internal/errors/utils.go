package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating an OpaqueError if
// the input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *OpaqueError {
	if err == nil {
		return nil
	}

	// Keep the inner error's context and path on the new outer error
	var oe *OpaqueError
	if errors.As(err, &oe) {
		return &OpaqueError{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   oe,
			Context: oe.Context,
			Path:    oe.Path,
		}
	}

	return &OpaqueError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error.
func WrapIO(err error, code, message string) *OpaqueError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, code, message string) *OpaqueError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// WrapRender wraps an error as a render error.
func WrapRender(err error, code, message string) *OpaqueError {
	return Wrap(err, ErrorTypeRender, code, message)
}

// GetErrorContext extracts the context map merged along the chain, outer
// values winning.
func GetErrorContext(err error) map[string]interface{} {
	ctx := make(map[string]interface{})

	var oe *OpaqueError
	for err != nil && errors.As(err, &oe) {
		for k, v := range oe.Context {
			if _, ok := ctx[k]; !ok {
				ctx[k] = v
			}
		}
		if oe.Path != "" {
			if _, ok := ctx["path"]; !ok {
				ctx["path"] = oe.Path
			}
		}
		err = oe.Cause
	}

	return ctx
}

// ExtractCause returns the innermost error in the chain.
func ExtractCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// FormatError renders err for a log line or CLI message.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var oe *OpaqueError
	if errors.As(err, &oe) {
		return fmt.Sprintf("%s error: %s", oe.Type, oe.Error())
	}

	return err.Error()
}
