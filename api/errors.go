package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the machine-readable classification of a platform error. Every
// error crossing the package boundary carries exactly one Kind so that
// callers can branch without string matching.
type Kind string

const (
	// KindSchema marks build-time failures: duplicate registrations,
	// intersection violations, reserved characters in field names.
	// These abort startup.
	KindSchema Kind = "SchemaError"

	// KindValidation marks call-time parameter failures: bad or missing
	// values, unknown providers, unknown keywords.
	KindValidation Kind = "ValidationError"

	// KindUnauthorized marks missing or rejected credentials.
	KindUnauthorized Kind = "UnauthorizedError"

	// KindRateLimit marks provider throttling.
	KindRateLimit Kind = "RateLimitError"

	// KindEmptyData marks a provider that successfully answered with
	// nothing matching the query. The executor converts this into a
	// warning plus empty results unless strict mode was requested.
	KindEmptyData Kind = "EmptyDataError"

	// KindProvider marks any other provider-side failure: transport,
	// parsing, unexpected payload shape.
	KindProvider Kind = "ProviderError"

	// KindTimeout marks a call that exceeded its deadline.
	KindTimeout Kind = "Timeout"

	// KindCancelled marks a call cancelled through its context.
	KindCancelled Kind = "Cancelled"
)

// Error is the single error type returned across the platform boundary.
// It keeps the failure classification, a human message, and optional
// context: the provider involved, the field path inside the parameters,
// and the wrapped cause chain.
type Error struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Provider string `json:"provider,omitempty"`
	Path     string `json:"path,omitempty"`
	Cause    error  `json:"-"`
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Provider != "" {
		sb.WriteString(" [")
		sb.WriteString(e.Provider)
		sb.WriteString("]")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Path != "" {
		sb.WriteString(" (at ")
		sb.WriteString(e.Path)
		sb.WriteString(")")
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports kind equality so errors.Is works against sentinel kinds:
//
//	errors.Is(err, &api.Error{Kind: api.KindTimeout})
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == "" || other.Kind == e.Kind
}

// IsKind reports whether err (or anything in its chain) is a platform
// error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == kind
}

// AsError extracts the platform error from err's chain, or wraps err as a
// ProviderError when it carries no classification of its own.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: KindProvider, Message: err.Error(), Cause: err}
}

// SchemaErrorf builds a build-time schema error.
func SchemaErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Message: fmt.Sprintf(format, args...)}
}

// ValidationErrorf builds a call-time validation error. path is the field
// path inside the parameter map; it may be empty when the failure is not
// attributable to a single field.
func ValidationErrorf(path, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Unauthorizedf builds a credentials error attributed to a provider.
func Unauthorizedf(provider, format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// RateLimitf builds a throttling error attributed to a provider.
func RateLimitf(provider, format string, args ...any) *Error {
	return &Error{Kind: KindRateLimit, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// EmptyDataf signals that a provider returned nothing for the query.
func EmptyDataf(provider, format string, args ...any) *Error {
	return &Error{Kind: KindEmptyData, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// ProviderErrorf wraps a provider-side failure, preserving the cause.
func ProviderErrorf(provider string, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindProvider, Provider: provider, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// TimeoutError builds a deadline error for a provider call.
func TimeoutError(provider string, cause error) *Error {
	return &Error{Kind: KindTimeout, Provider: provider, Message: "call exceeded its deadline", Cause: cause}
}

// CancelledError builds a cancellation error for a provider call.
func CancelledError(provider string, cause error) *Error {
	return &Error{Kind: KindCancelled, Provider: provider, Message: "call was cancelled", Cause: cause}
}

// TranslateStatus maps a transport-level HTTP status to the platform
// taxonomy: 401/403 become UnauthorizedError, 429 becomes RateLimitError,
// anything else a ProviderError preserving the cause.
func TranslateStatus(provider string, status int, cause error) *Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Kind: KindUnauthorized, Provider: provider, Message: fmt.Sprintf("provider rejected credentials (status %d)", status), Cause: cause}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimit, Provider: provider, Message: "provider throttled the call", Cause: cause}
	default:
		return &Error{Kind: KindProvider, Provider: provider, Message: fmt.Sprintf("provider call failed (status %d)", status), Cause: cause}
	}
}
