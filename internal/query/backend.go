// Package query implements the input-to-result pipeline behind every
// search-as-you-type surface in parley: a debounced, cancellable coordinator
// that drives an asynchronous lookup from rapidly changing user input, plus
// the pluggable backend seam and the selection cursor that rides on top of
// its result sets.
//
// The coordinator guarantees that observers only ever see results for the
// latest accepted input, regardless of how backend completions interleave.
package query

import (
	"context"
	"sync/atomic"
)

// Backend is a pluggable unit of lookup work. Given a query string it
// produces a ranked list of items or fails. Implementations must observe
// ctx cancellation promptly, return an empty slice (not an error) when
// nothing matches, and must be safe for concurrent calls.
type Backend[T any] interface {
	Lookup(ctx context.Context, query string) ([]T, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc[T any] func(ctx context.Context, query string) ([]T, error)

// Lookup implements Backend.
func (f BackendFunc[T]) Lookup(ctx context.Context, query string) ([]T, error) {
	return f(ctx, query)
}

type selected[T any] struct {
	backend   Backend[T]
	synthetic bool
}

// Selector holds the single active Backend for one lookup family and lets it
// be swapped atomically. Swapping never affects a lookup already dispatched
// to the previous backend; only subsequent dispatches see the new one.
//
// A Selector is shared by injection: every Coordinator that should follow the
// same backend toggle receives the same *Selector at construction.
type Selector[T any] struct {
	current atomic.Pointer[selected[T]]
}

// NewSelector creates a Selector with the given initial backend. synthetic
// marks the backend as the in-memory development implementation.
func NewSelector[T any](b Backend[T], synthetic bool) *Selector[T] {
	s := &Selector[T]{}
	s.current.Store(&selected[T]{backend: b, synthetic: synthetic})
	return s
}

// Current returns the active backend.
func (s *Selector[T]) Current() Backend[T] {
	return s.current.Load().backend
}

// Swap replaces the active backend. In-flight lookups keep the backend they
// were dispatched to.
func (s *Selector[T]) Swap(b Backend[T], synthetic bool) {
	s.current.Store(&selected[T]{backend: b, synthetic: synthetic})
}

// UsingSynthetic reports whether the active backend is the synthetic one.
func (s *Selector[T]) UsingSynthetic() bool {
	return s.current.Load().synthetic
}
