package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool = errors.New("external tool error")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrTimeout      = errors.New("timeout")
	ErrTransient    = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later HTTP status classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a pipeline error onto the status code the API should return.
// Validation failures are the client's fault; an unknown id is indistinguishable
// from an expired one on purpose, so both are a plain 404.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrNotFound):
		return 404
	default:
		return 500
	}
}

// ClientMessage returns the message safe to surface to API clients. Dependency
// failures keep their diagnostics server-side and come back opaque.
func ClientMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return trimMarker(err.Error())
	case errors.Is(err, ErrTimeout):
		return "audio processing timed out"
	case errors.Is(err, ErrExternalTool):
		return "audio processing failed"
	default:
		return "internal error"
	}
}

func trimMarker(message string) string {
	if idx := strings.Index(message, ": "); idx >= 0 {
		return message[idx+2:]
	}
	return message
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
