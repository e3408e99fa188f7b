package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDebounce keeps timer-driven tests fast while leaving enough slack for
// slow CI machines.
const testDebounce = 25 * time.Millisecond

// fakeBackend records every lookup and answers via a configurable respond
// function. The default echoes the query back as a single item.
type fakeBackend struct {
	mu      sync.Mutex
	queries []string

	respond func(ctx context.Context, query string) ([]string, error)
}

func (b *fakeBackend) Lookup(ctx context.Context, query string) ([]string, error) {
	b.mu.Lock()
	b.queries = append(b.queries, query)
	b.mu.Unlock()
	if b.respond != nil {
		return b.respond(ctx, query)
	}
	return []string{query}, nil
}

func (b *fakeBackend) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

// delayed returns a respond function that waits d before answering, bailing
// out early on context cancellation.
func delayed(d time.Duration, items []string, err error) func(context.Context, string) ([]string, error) {
	return func(ctx context.Context, _ string) ([]string, error) {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return items, err
	}
}

func newTestCoordinator(b Backend[string], opts Options) (*Coordinator[string], chan Snapshot[string]) {
	snaps := make(chan Snapshot[string], 128)
	if opts.MinChars == 0 {
		opts.MinChars = 2
	}
	if opts.DebounceDelay == 0 {
		opts.DebounceDelay = testDebounce
	}
	sel := NewSelector[string](b, true)
	c := New(sel, opts, func(s Snapshot[string]) { snaps <- s })
	return c, snaps
}

func waitPhase(t *testing.T, snaps <-chan Snapshot[string], want Phase) Snapshot[string] {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-snaps:
			if s.Phase == want {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %s", want)
		}
	}
}

// assertNoPhase drains snapshots for the given window and fails if the
// unwanted phase shows up.
func assertNoPhase(t *testing.T, snaps <-chan Snapshot[string], unwanted Phase, window time.Duration) {
	t.Helper()
	timeout := time.After(window)
	for {
		select {
		case s := <-snaps:
			if s.Phase == unwanted {
				t.Fatalf("unexpected transition to phase %s", unwanted)
			}
		case <-timeout:
			return
		}
	}
}

func TestInitialSnapshotIsIdle(t *testing.T) {
	c, _ := newTestCoordinator(&fakeBackend{}, Options{})
	snap := c.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Empty(t, snap.Items)
	assert.Nil(t, snap.Err)
}

func TestGate_BelowMinCharsNeverCallsBackend(t *testing.T) {
	b := &fakeBackend{}
	c, snaps := newTestCoordinator(b, Options{MinChars: 2})

	c.OnInput("a")
	snap := waitPhase(t, snaps, PhaseTooShort)
	assert.Equal(t, "a", snap.Text)

	// Hammer the gate; none of these may reach the backend, even after the
	// debounce window has long passed.
	for i := 0; i < 20; i++ {
		c.OnInput("a")
	}
	time.Sleep(4 * testDebounce)
	assert.Empty(t, b.calls())
	assert.Equal(t, PhaseTooShort, c.Snapshot().Phase)
}

func TestGate_WhitespaceOnlyIsIdle(t *testing.T) {
	b := &fakeBackend{}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("   ")
	snap := waitPhase(t, snaps, PhaseIdle)
	assert.Empty(t, snap.Text)

	time.Sleep(3 * testDebounce)
	assert.Empty(t, b.calls())
}

func TestDebounce_BurstCollapsesToLastText(t *testing.T) {
	b := &fakeBackend{}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("se")
	c.OnInput("sea")
	c.OnInput("search")

	snap := waitPhase(t, snaps, PhaseSettled)
	assert.Equal(t, []string{"search"}, snap.Items)
	assert.Equal(t, []string{"search"}, b.calls(), "exactly one call, for the last burst text")
}

func TestDebounce_NoCallBeforeWindowElapses(t *testing.T) {
	b := &fakeBackend{}
	c, _ := newTestCoordinator(b, Options{DebounceDelay: 100 * time.Millisecond})

	c.OnInput("query")
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, b.calls())
	assert.Equal(t, PhaseDebouncing, c.Snapshot().Phase)
}

func TestStaleness_SlowEarlierResponseNeverOverwrites(t *testing.T) {
	b := &fakeBackend{}
	b.respond = func(ctx context.Context, q string) ([]string, error) {
		d := 10 * time.Millisecond
		if q == "cat" {
			d = 250 * time.Millisecond
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			// Ignore cancellation on purpose: the generation check alone
			// must keep the late result out.
		}
		return []string{q}, nil
	}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("cat")
	waitPhase(t, snaps, PhaseLoading)

	c.OnInput("catalog")
	snap := waitPhase(t, snaps, PhaseSettled)
	assert.Equal(t, []string{"catalog"}, snap.Items)

	// Let "cat"'s late response arrive; the installed result must not change.
	time.Sleep(300 * time.Millisecond)
	final := c.Snapshot()
	assert.Equal(t, PhaseSettled, final.Phase)
	assert.Equal(t, []string{"catalog"}, final.Items)
	assert.Equal(t, []string{"cat", "catalog"}, b.calls())
}

func TestStaleness_BurstOfAcceptedQueriesSettlesOnce(t *testing.T) {
	b := &fakeBackend{}
	b.respond = delayed(50*time.Millisecond, []string{"x"}, nil)
	c, snaps := newTestCoordinator(b, Options{})

	// Each input passes the gate; the next one supersedes the previous
	// dispatch before its response lands.
	for _, q := range []string{"aa", "ab", "ac", "ad"} {
		c.OnInput(q)
		waitPhase(t, snaps, PhaseLoading)
	}

	settled := 0
	timeout := time.After(time.Second)
	for settled == 0 {
		select {
		case s := <-snaps:
			if s.Phase == PhaseSettled {
				settled++
			}
		case <-timeout:
			t.Fatal("no settle observed")
		}
	}
	assertNoPhase(t, snaps, PhaseSettled, 200*time.Millisecond)
	assert.Equal(t, 1, settled)
}

func TestClear_DuringFlightSuppressesLateResult(t *testing.T) {
	b := &fakeBackend{}
	b.respond = delayed(100*time.Millisecond, []string{"dog"}, nil)
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("dog")
	waitPhase(t, snaps, PhaseLoading)

	c.Clear()
	require.Equal(t, PhaseIdle, c.Snapshot().Phase)

	// The in-flight request resolves later; nothing may pop in.
	assertNoPhase(t, snaps, PhaseSettled, 200*time.Millisecond)
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
}

func TestClear_Idempotent(t *testing.T) {
	c, _ := newTestCoordinator(&fakeBackend{}, Options{})
	for i := 0; i < 5; i++ {
		c.Clear()
	}
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
}

func TestFailure_UpstreamSurfacesOnce(t *testing.T) {
	b := &fakeBackend{}
	b.respond = func(context.Context, string) ([]string, error) {
		return nil, Upstreamf(errors.New("boom"), "status 500")
	}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("zzz")
	snap := waitPhase(t, snaps, PhaseFailed)
	require.NotNil(t, snap.Err)
	assert.Equal(t, KindUpstream, snap.Err.Kind)
	assert.Nil(t, snap.Items)
}

func TestFailure_NewInputClearsFailedState(t *testing.T) {
	b := &fakeBackend{}
	fail := true
	b.respond = func(context.Context, string) ([]string, error) {
		if fail {
			return nil, Upstreamf(nil, "bad gateway")
		}
		return []string{"ok"}, nil
	}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("zzz")
	waitPhase(t, snaps, PhaseFailed)

	fail = false
	c.OnInput("zzzq")
	snap := waitPhase(t, snaps, PhaseDebouncing)
	assert.Nil(t, snap.Err, "typing transitions out of Failed immediately")

	snap = waitPhase(t, snaps, PhaseSettled)
	assert.Equal(t, []string{"ok"}, snap.Items)
}

func TestCancelled_NeverSurfaces(t *testing.T) {
	b := &fakeBackend{}
	b.respond = func(ctx context.Context, _ string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("first")
	waitPhase(t, snaps, PhaseLoading)

	// Dropping below the gate cancels the in-flight lookup; the resulting
	// context.Canceled completion must be absorbed, not shown as Failed.
	c.OnInput("f")
	waitPhase(t, snaps, PhaseTooShort)
	assertNoPhase(t, snaps, PhaseFailed, 100*time.Millisecond)
}

func TestTimeout_SurfacesAsFailed(t *testing.T) {
	b := &fakeBackend{}
	b.respond = func(context.Context, string) ([]string, error) {
		return nil, Timeoutf(context.DeadlineExceeded, "lookup deadline")
	}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("slow")
	snap := waitPhase(t, snaps, PhaseFailed)
	require.NotNil(t, snap.Err)
	assert.Equal(t, KindTimeout, snap.Err.Kind)
}

func TestSettled_EmptyResultIsNotAnError(t *testing.T) {
	b := &fakeBackend{}
	b.respond = func(context.Context, string) ([]string, error) {
		return []string{}, nil
	}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("nomatch")
	snap := waitPhase(t, snaps, PhaseSettled)
	assert.Empty(t, snap.Items)
	assert.Nil(t, snap.Err)
}

func TestSettled_MaxResultsCapsItems(t *testing.T) {
	b := &fakeBackend{}
	b.respond = func(context.Context, string) ([]string, error) {
		return []string{"a", "b", "c", "d", "e"}, nil
	}
	c, snaps := newTestCoordinator(b, Options{MaxResults: 3})

	c.OnInput("many")
	snap := waitPhase(t, snaps, PhaseSettled)
	assert.Equal(t, []string{"a", "b", "c"}, snap.Items)
}

func TestIdenticalConsecutiveQueriesRedispatch(t *testing.T) {
	b := &fakeBackend{}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("same")
	waitPhase(t, snaps, PhaseSettled)
	c.OnInput("same")
	waitPhase(t, snaps, PhaseSettled)

	assert.Equal(t, []string{"same", "same"}, b.calls())
}

func TestDispose_IdempotentAndTerminal(t *testing.T) {
	b := &fakeBackend{}
	b.respond = delayed(50*time.Millisecond, []string{"late"}, nil)
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("pending")
	waitPhase(t, snaps, PhaseLoading)

	c.Dispose()
	c.Dispose()
	c.Clear() // safe after dispose

	c.OnInput("ignored")
	time.Sleep(3 * testDebounce)
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.Equal(t, []string{"pending"}, b.calls())
}

func TestSelector_SwapAffectsSubsequentDispatchesOnly(t *testing.T) {
	slow := &fakeBackend{}
	release := make(chan struct{})
	slow.respond = func(ctx context.Context, q string) ([]string, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []string{"slow:" + q}, nil
	}
	fast := &fakeBackend{}
	fast.respond = func(_ context.Context, q string) ([]string, error) {
		return []string{"fast:" + q}, nil
	}

	snaps := make(chan Snapshot[string], 128)
	sel := NewSelector[string](Backend[string](slow), true)
	c := New(sel, Options{MinChars: 2, DebounceDelay: testDebounce},
		func(s Snapshot[string]) { snaps <- s })

	c.OnInput("one")
	waitPhase(t, snaps, PhaseLoading)

	// Swap mid-flight: the dispatched lookup stays with the old backend.
	sel.Swap(Backend[string](fast), false)
	assert.False(t, sel.UsingSynthetic())
	close(release)
	snap := waitPhase(t, snaps, PhaseSettled)
	assert.Equal(t, []string{"slow:one"}, snap.Items)

	c.OnInput("two")
	snap = waitPhase(t, snaps, PhaseSettled)
	assert.Equal(t, []string{"fast:two"}, snap.Items)
	assert.Equal(t, []string{"two"}, fast.calls(), "fast backend saw only the second query")
}

func TestGenerationIsMonotonic(t *testing.T) {
	b := &fakeBackend{}
	c, snaps := newTestCoordinator(b, Options{})

	c.OnInput("aa")
	first := waitPhase(t, snaps, PhaseSettled)
	c.OnInput("bb")
	second := waitPhase(t, snaps, PhaseSettled)
	assert.Greater(t, second.Generation, first.Generation)
}
