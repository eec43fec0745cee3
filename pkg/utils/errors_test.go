package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", fmt.Errorf("%w: bad url", ErrValidation), "validation_error"},
		{"blocked host", fmt.Errorf("%w: 10.0.0.1", ErrBlockedHost), "blocked_host"},
		{"robots", fmt.Errorf("%w: /private", ErrRobotsDisallowed), "blocked_host"},
		{"too large", ErrTooLarge, "too_large"},
		{"redirects", ErrTooManyRedirects, "too_many_redirects"},
		{"tls", fmt.Errorf("%w: handshake", ErrTLS), "tls_error"},
		{"parse", ErrParse, "parse_error"},
		{"unsupported", ErrUnsupportedType, "unsupported_content"},
		{"timeout sentinel", ErrTimeout, "timeout"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"cancelled", context.Canceled, "timeout"},
		{"4xx", fmt.Errorf("%w: status 404", ErrClientHTTPError), "network_error"},
		{"retries exhausted", fmt.Errorf("%w: %w", ErrRetryFailed, ErrServerHTTPError), "network_error"},
		{"raw tls message", errors.New("x509: certificate signed by unknown authority"), "tls_error"},
		{"raw refused", errors.New("dial tcp: connection refused"), "network_error"},
		{"unknown", errors.New("something odd"), "network_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", fmt.Errorf("%w: status 503", ErrServerHTTPError), true},
		{"network", fmt.Errorf("%w: dial", ErrNetwork), true},
		{"refused", errors.New("dial tcp 1.2.3.4:80: connection refused"), true},
		{"client error", fmt.Errorf("%w: status 404", ErrClientHTTPError), false},
		{"validation", ErrValidation, false},
		{"blocked", ErrBlockedHost, false},
		{"too large", ErrTooLarge, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
