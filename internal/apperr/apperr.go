// Package apperr defines the application error taxonomy shared by the store,
// the remote backend, and the source collaborators.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error
type Kind int

const (
	// KindUnknown wraps an unclassified cause, preserving its message
	KindUnknown Kind = iota
	// KindPermissionDenied means the user must grant access in settings
	KindPermissionDenied
	// KindNetworkUnavailable is a transient transport failure
	KindNetworkUnavailable
	// KindBackend is a remote-side fault, retryable at user discretion
	KindBackend
	// KindDataCorruption means data failed to parse as the expected shape
	KindDataCorruption
)

// Error is a classified application error
type Error struct {
	Kind    Kind
	Service string // service name for permission errors ("Photos", "Calendar", ...)
	Detail  string
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindPermissionDenied:
		return fmt.Sprintf("permission denied: %s", e.Service)
	case KindNetworkUnavailable:
		return "network unavailable"
	case KindBackend:
		return fmt.Sprintf("backend error: %s", e.Detail)
	case KindDataCorruption:
		return "data corruption"
	default:
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return e.Detail
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// PermissionDenied builds a permission error naming the gated service
func PermissionDenied(service string) *Error {
	return &Error{Kind: KindPermissionDenied, Service: service}
}

// NetworkUnavailable builds a transient transport error
func NetworkUnavailable(cause error) *Error {
	return &Error{Kind: KindNetworkUnavailable, Cause: cause}
}

// Backend builds a remote-side fault
func Backend(detail string, cause error) *Error {
	return &Error{Kind: KindBackend, Detail: detail, Cause: cause}
}

// DataCorruption builds a parse-failure error
func DataCorruption(cause error) *Error {
	return &Error{Kind: KindDataCorruption, Cause: cause}
}

// Unknown wraps an unclassified cause
func Unknown(cause error) *Error {
	return &Error{Kind: KindUnknown, Cause: cause}
}

// KindOf extracts the kind from any error in the chain. Unclassified errors
// report KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsPermissionDenied reports whether the chain contains a permission error
func IsPermissionDenied(err error) bool {
	return KindOf(err) == KindPermissionDenied
}

// Retryable reports whether retrying the operation may help
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetworkUnavailable, KindBackend:
		return true
	default:
		return false
	}
}

// ShowsSettingsLink reports whether the UI should offer a settings deep-link
func ShowsSettingsLink(err error) bool {
	return KindOf(err) == KindPermissionDenied
}

// RecoverySuggestion returns the user-facing remediation hint
func RecoverySuggestion(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "Please try again."
	}
	switch appErr.Kind {
	case KindPermissionDenied:
		return fmt.Sprintf("Please grant access to %s in settings to use this feature.", appErr.Service)
	case KindNetworkUnavailable:
		return "Please check your internet connection and try again."
	case KindBackend:
		return "Please try again later."
	case KindDataCorruption:
		return "Your data may be corrupted. Please contact support if this issue persists."
	default:
		return "Please try again."
	}
}
