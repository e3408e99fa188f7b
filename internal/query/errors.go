package query

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies lookup failures.
type ErrorKind int

const (
	// KindCancelled marks a lookup abandoned because a newer query superseded
	// it. Never surfaced to callers; the coordinator absorbs it.
	KindCancelled ErrorKind = iota

	// KindUpstream marks a backend failure: bad status, malformed payload,
	// or any other error the backend could not recover from.
	KindUpstream

	// KindTimeout marks a lookup that hit the backend's internal deadline.
	// Displayed like KindUpstream.
	KindTimeout
)

// String returns the kind's wire/log name.
func (k ErrorKind) String() string {
	switch k {
	case KindCancelled:
		return "cancelled"
	case KindUpstream:
		return "upstream"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("errorkind(%d)", int(k))
	}
}

// LookupError is the failure type backends report to the coordinator.
type LookupError struct {
	Kind ErrorKind
	Msg  string
	Err  error // wrapped cause, may be nil
}

// Error implements error.
func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lookup %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("lookup %s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped cause.
func (e *LookupError) Unwrap() error { return e.Err }

// Cancelledf builds a KindCancelled error.
func Cancelledf(format string, args ...any) *LookupError {
	return &LookupError{Kind: KindCancelled, Msg: fmt.Sprintf(format, args...)}
}

// Upstreamf builds a KindUpstream error wrapping err.
func Upstreamf(err error, format string, args ...any) *LookupError {
	return &LookupError{Kind: KindUpstream, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Timeoutf builds a KindTimeout error wrapping err.
func Timeoutf(err error, format string, args ...any) *LookupError {
	return &LookupError{Kind: KindTimeout, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Classify maps an arbitrary backend error onto the lookup taxonomy.
// Context cancellation maps to KindCancelled, deadline expiry to KindTimeout,
// an existing *LookupError passes through, and anything else is upstream.
func Classify(err error) *LookupError {
	var lerr *LookupError
	if errors.As(err, &lerr) {
		return lerr
	}
	if errors.Is(err, context.Canceled) {
		return &LookupError{Kind: KindCancelled, Msg: "superseded", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &LookupError{Kind: KindTimeout, Msg: "deadline exceeded", Err: err}
	}
	return &LookupError{Kind: KindUpstream, Msg: "backend failure", Err: err}
}
