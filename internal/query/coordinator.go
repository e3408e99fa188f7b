package query

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Phase is the coordinator's observable state.
type Phase int

const (
	PhaseIdle       Phase = iota // no query; input empty or cleared
	PhaseTooShort                // input below the minimum length gate
	PhaseDebouncing              // input accepted, waiting out the debounce window
	PhaseLoading                 // lookup dispatched, awaiting completion
	PhaseSettled                 // lookup completed; Items holds the result set
	PhaseFailed                  // lookup failed; Err holds the classified error
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTooShort:
		return "too_short"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseLoading:
		return "loading"
	case PhaseSettled:
		return "settled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the coordinator's state, emitted to the
// notify callback on every transition and returned by Snapshot().
type Snapshot[T any] struct {
	Phase      Phase
	Text       string // raw input as last typed
	Generation uint64 // generation of the query the snapshot reflects
	Items      []T    // valid in PhaseSettled; may be empty
	Err        *LookupError
}

// Options configures a Coordinator.
type Options struct {
	// MinChars is the minimum trimmed input length before a lookup is
	// considered. Shorter input lands in PhaseTooShort without any delay.
	MinChars int

	// DebounceDelay is how long input must stay unchanged before a lookup
	// dispatches.
	DebounceDelay time.Duration

	// MaxResults caps the installed result set. Zero means no cap.
	MaxResults int

	// Logger receives discard/dispatch debug lines. Defaults to slog.Default.
	Logger *slog.Logger
}

const (
	defaultMinChars      = 2
	defaultDebounceDelay = 300 * time.Millisecond
)

// Coordinator converts a stream of raw input events into at most one active
// backend lookup at a time. Every dispatch is tagged with a monotonically
// increasing generation; completions carrying a generation other than the
// current one are discarded, so an earlier slow lookup can never overwrite a
// later result.
//
// All state lives behind one mutex; the notify callback runs with that mutex
// held and must not call back into the coordinator.
type Coordinator[T any] struct {
	mu       sync.Mutex
	opts     Options
	backends *Selector[T]
	notify   func(Snapshot[T])
	logger   *slog.Logger

	phase     Phase
	text      string
	items     []T
	lookupErr *LookupError

	// generation tags the current query; bumped on every dispatch and on
	// every cancellation path so late completions always fail the check,
	// whether or not the backend honored its context.
	generation uint64

	// debounceID invalidates debounce timers that fire after being
	// superseded; timer callbacks carry the id they were armed with.
	debounceID uint64
	timer      *time.Timer

	cancelInflight context.CancelFunc
	disposed       bool
}

// New creates a Coordinator over the given backend selector. notify may be
// nil; otherwise it is invoked on every state transition.
func New[T any](backends *Selector[T], opts Options, notify func(Snapshot[T])) *Coordinator[T] {
	if opts.MinChars <= 0 {
		opts.MinChars = defaultMinChars
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = defaultDebounceDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator[T]{
		opts:     opts,
		backends: backends,
		notify:   notify,
		logger:   logger,
		phase:    PhaseIdle,
	}
}

// OnInput feeds the coordinator one input-text event. Safe to call at any
// rate; bursts within the debounce window collapse into a single lookup for
// the last text. Below-gate input transitions immediately (no debounce) and
// cancels outstanding work.
func (c *Coordinator[T]) OnInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}

	c.stopTimer()
	trimmed := strings.TrimSpace(text)

	switch {
	case trimmed == "":
		c.abandonInflight()
		c.text = ""
		c.phase = PhaseIdle
		c.items = nil
		c.lookupErr = nil

	case utf8.RuneCountInString(trimmed) < c.opts.MinChars:
		c.abandonInflight()
		c.text = text
		c.phase = PhaseTooShort
		c.items = nil
		c.lookupErr = nil

	default:
		c.text = text
		c.phase = PhaseDebouncing
		c.debounceID++
		id := c.debounceID
		c.timer = time.AfterFunc(c.opts.DebounceDelay, func() { c.debounceElapsed(id) })
	}

	c.publishLocked()
}

// Clear cancels outstanding work and resets to PhaseIdle. Idempotent, and
// safe after Dispose.
func (c *Coordinator[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimer()
	c.abandonInflight()
	c.text = ""
	c.phase = PhaseIdle
	c.items = nil
	c.lookupErr = nil

	if c.disposed {
		return
	}
	c.publishLocked()
}

// Dispose clears the coordinator and permanently detaches it from its timer
// and backend. Further calls to any method are no-ops. Idempotent.
func (c *Coordinator[T]) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.stopTimer()
	c.abandonInflight()
	c.text = ""
	c.phase = PhaseIdle
	c.items = nil
	c.lookupErr = nil
	c.disposed = true
}

// Snapshot returns the current state.
func (c *Coordinator[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// debounceElapsed is the timer callback: it dispatches the lookup if the
// timer that fired is still the latest one.
func (c *Coordinator[T]) debounceElapsed(id uint64) {
	c.mu.Lock()
	if c.disposed || id != c.debounceID {
		c.mu.Unlock()
		return
	}

	c.abandonInflight()
	gen := c.generation
	text := strings.TrimSpace(c.text)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelInflight = cancel
	c.phase = PhaseLoading
	c.items = nil
	c.lookupErr = nil

	// Backend resolved at dispatch time: swapping the selector affects
	// future dispatches only.
	backend := c.backends.Current()

	c.logger.Debug("dispatching lookup", "generation", gen, "text", text)
	c.publishLocked()
	c.mu.Unlock()

	go func() {
		items, err := backend.Lookup(ctx, text)
		c.settle(gen, items, err)
	}()
}

// settle applies a lookup completion. The generation check is unconditional:
// it runs on the happy path too, because a fast new keystroke may dispatch
// generation N+1 before generation N's response arrives.
func (c *Coordinator[T]) settle(gen uint64, items []T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed || gen != c.generation {
		c.logger.Debug("discarding stale lookup result",
			"generation", gen, "current", c.generation, "disposed", c.disposed)
		return
	}
	c.cancelInflight = nil

	if err != nil {
		lerr := Classify(err)
		if lerr.Kind == KindCancelled {
			// Cancellation never reaches observers.
			c.logger.Debug("absorbing cancelled lookup", "generation", gen)
			return
		}
		c.phase = PhaseFailed
		c.items = nil
		c.lookupErr = lerr
		c.publishLocked()
		return
	}

	if c.opts.MaxResults > 0 && len(items) > c.opts.MaxResults {
		items = items[:c.opts.MaxResults]
	}
	c.phase = PhaseSettled
	c.items = items
	c.lookupErr = nil
	c.publishLocked()
}

// abandonInflight cancels the in-flight lookup, if any, and bumps the
// generation so a completion from a backend that ignores cancellation still
// fails the staleness check.
func (c *Coordinator[T]) abandonInflight() {
	if c.cancelInflight != nil {
		c.cancelInflight()
		c.cancelInflight = nil
	}
	c.generation++
}

func (c *Coordinator[T]) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.debounceID++
}

func (c *Coordinator[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Phase:      c.phase,
		Text:       c.text,
		Generation: c.generation,
		Items:      c.items,
		Err:        c.lookupErr,
	}
}

func (c *Coordinator[T]) publishLocked() {
	if c.notify != nil {
		c.notify(c.snapshotLocked())
	}
}
