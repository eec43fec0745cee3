package utils

import (
	"context"
	"errors"
	"net"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrValidation       = errors.New("invalid or disallowed URL")        // Malformed, oversized, or private/loopback target
	ErrBlockedHost      = errors.New("blocked host")                     // Private/loopback address reached via redirect or robots denial
	ErrTimeout          = errors.New("fetch timed out")                  // Per-fetch or target deadline elapsed
	ErrNetwork          = errors.New("network error")                    // DNS/connection failures after retries
	ErrTooLarge         = errors.New("response body too large")          // Body cap exceeded mid-read
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrTLS              = errors.New("TLS verification failed")          // Both verified and fallback attempts failed
	ErrParse            = errors.New("parsing error")                    // Wraps HTML/URL parsing errors
	ErrUnsupportedType  = errors.New("unsupported content type")         // Binary/media response, nothing to extract
	ErrRetryFailed      = errors.New("request failed after all retries") // Wraps the last underlying error
	ErrClientHTTPError  = errors.New("client HTTP error (4xx)")
	ErrServerHTTPError  = errors.New("server HTTP error (5xx)")
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
	ErrRequestCreation  = errors.New("failed to create HTTP request")
)

// CategorizeError maps an error to the report-level error kind string.
// Kinds mirror the engine's failure taxonomy and are stable output contract.
func CategorizeError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrBlockedHost), errors.Is(err, ErrRobotsDisallowed):
		return "blocked_host"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.Is(err, ErrTLS):
		return "tls_error"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_content"
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, ErrClientHTTPError), errors.Is(err, ErrServerHTTPError):
		return "network_error"
	case errors.Is(err, ErrRetryFailed), errors.Is(err, ErrNetwork), errors.Is(err, ErrRequestCreation):
		return "network_error"
	}

	// Fallback checks for unwrapped transport errors
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "timeout"
	case strings.Contains(msg, "tls"), strings.Contains(msg, "certificate"):
		return "tls_error"
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "reset by peer"),
		strings.Contains(msg, "broken pipe"):
		return "network_error"
	}

	return "network_error"
}

// IsTransient reports whether an error is worth retrying at the fetch level:
// network-level failures that are plausibly temporary. Validation, policy and
// context errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrBlockedHost) ||
		errors.Is(err, ErrTooManyRedirects) || errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrTLS) || errors.Is(err, ErrClientHTTPError) {
		return false
	}
	if errors.Is(err, ErrServerHTTPError) || errors.Is(err, ErrNetwork) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "reset by peer") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "eof")
}
