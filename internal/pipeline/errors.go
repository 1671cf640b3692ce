// Package pipeline orchestrates theme extraction from images and websites.
package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a pipeline failure for callers.
type Kind string

const (
	// KindInvalidInput covers malformed URLs, non-image data, and
	// oversized payloads. Never retryable.
	KindInvalidInput Kind = "invalid_input"

	// KindSecurityBlocked covers SSRF and DNS-rebinding rejections and
	// disallowed schemes, hosts, or addresses. Never retryable.
	KindSecurityBlocked Kind = "security_blocked"

	// KindTimeout covers DNS, navigation, or render-capture deadlines.
	// Caller-retryable.
	KindTimeout Kind = "timeout"

	// KindExtractionFailed means decode or clustering produced no usable
	// signal. Caller-retryable.
	KindExtractionFailed Kind = "extraction_failed"

	// KindRateLimited means the request quota was exceeded; carries a
	// retry-after duration.
	KindRateLimited Kind = "rate_limited"
)

// Error is the typed failure returned by the pipeline.
type Error struct {
	Kind       Kind
	Reason     string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the request.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindExtractionFailed, KindRateLimited:
		return true
	}
	return false
}

// KindOf extracts the pipeline failure kind from an error chain, or ""
// when the error did not originate from the pipeline.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func invalidInput(reason string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason, Err: err}
}

func securityBlocked(reason string, err error) *Error {
	return &Error{Kind: KindSecurityBlocked, Reason: reason, Err: err}
}

func timeoutErr(reason string, err error) *Error {
	return &Error{Kind: KindTimeout, Reason: reason, Err: err}
}

func extractionFailed(reason string, err error) *Error {
	return &Error{Kind: KindExtractionFailed, Reason: reason, Err: err}
}

func rateLimited(retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Reason:     "request quota exceeded",
		RetryAfter: retryAfter,
	}
}
