package query

// Cursor tracks which result, if any, is highlighted for keyboard
// navigation. It is independent of the coordinator's own state machine:
// every time a new result set is installed the cursor resets to its
// configured default, even when the new set happens to contain the same
// items.
//
// A default of NoSelection suits search-style lists that require an explicit
// down-arrow to engage; a default of 0 suits suggestion boxes that highlight
// the top item automatically.
type Cursor[T any] struct {
	items        []T
	index        int
	defaultIndex int
}

// NoSelection is the cursor index meaning nothing is highlighted.
const NoSelection = -1

// NewCursor creates a cursor with the given reset default. Any defaultIndex
// below zero behaves as NoSelection.
func NewCursor[T any](defaultIndex int) *Cursor[T] {
	if defaultIndex < 0 {
		defaultIndex = NoSelection
	}
	c := &Cursor[T]{defaultIndex: defaultIndex}
	c.SetItems(nil)
	return c
}

// SetItems installs a new result set and resets the highlight to the
// configured default, clamped to the set's bounds.
func (c *Cursor[T]) SetItems(items []T) {
	c.items = items
	switch {
	case len(items) == 0:
		c.index = NoSelection
	case c.defaultIndex >= len(items):
		c.index = len(items) - 1
	default:
		c.index = c.defaultIndex
	}
}

// MoveNext advances the highlight, wrapping past the end. From NoSelection
// it engages at the first item. No-op on an empty set.
func (c *Cursor[T]) MoveNext() {
	if len(c.items) == 0 {
		return
	}
	if c.index == NoSelection {
		c.index = 0
		return
	}
	c.index = (c.index + 1) % len(c.items)
}

// MovePrevious moves the highlight back, wrapping past the start. From
// NoSelection it engages at the last item. No-op on an empty set.
func (c *Cursor[T]) MovePrevious() {
	if len(c.items) == 0 {
		return
	}
	if c.index == NoSelection {
		c.index = len(c.items) - 1
		return
	}
	c.index = (c.index - 1 + len(c.items)) % len(c.items)
}

// JumpFirst highlights the first item. No-op on an empty set.
func (c *Cursor[T]) JumpFirst() {
	if len(c.items) == 0 {
		return
	}
	c.index = 0
}

// JumpLast highlights the last item. No-op on an empty set.
func (c *Cursor[T]) JumpLast() {
	if len(c.items) == 0 {
		return
	}
	c.index = len(c.items) - 1
}

// Current returns the highlighted item, if any.
func (c *Cursor[T]) Current() (T, bool) {
	if c.index == NoSelection || c.index >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[c.index], true
}

// Index returns the highlighted index, or NoSelection.
func (c *Cursor[T]) Index() int { return c.index }

// Len returns the size of the current result set.
func (c *Cursor[T]) Len() int { return len(c.items) }
