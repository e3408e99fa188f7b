package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/query"
	"github.com/parleychat/parley/internal/search"
	"github.com/parleychat/parley/internal/storage"
	"github.com/parleychat/parley/internal/suggest"
)

const testDebounce = 25 * time.Millisecond

func newTestModel(t *testing.T) *Model {
	t.Helper()

	searchBackend := search.NewSynthetic([]search.Entry{
		{MessageID: "m1", ChatID: "c1", Sender: "alice", Body: "deploy the staging build", SentAtMs: 1000},
		{MessageID: "m2", ChatID: "c1", Sender: "bob", Body: "lunch at noon?", SentAtMs: 2000},
	}, 0, 0)
	suggestBackend := suggest.NewSynthetic([]string{
		"good morning!",
		"good night",
	}, 0, 0)

	m := New(Options{
		Chat:            storage.Chat{ChatID: "c1", Title: "test chat"},
		Sender:          "me",
		SearchBackends:  query.NewSelector[search.Result](searchBackend, true),
		SuggestBackends: query.NewSelector[suggest.Suggestion](suggestBackend, true),
		SearchOptions:   query.Options{MinChars: 2, DebounceDelay: testDebounce},
		SuggestOptions:  query.Options{MinChars: 3, DebounceDelay: testDebounce},
	})
	t.Cleanup(m.dispose)
	return m
}

// pump feeds coordinator events into Update until the wanted predicate holds.
func pump(t *testing.T, m *Model, want func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !want() {
		select {
		case msg := <-m.events:
			m.Update(msg)
		case <-deadline:
			t.Fatal("timed out waiting for coordinator event")
		}
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestTypingDrivesSuggestions(t *testing.T) {
	m := newTestModel(t)

	typeText(m, "good")
	assert.Equal(t, "good", m.input.Value())

	pump(t, m, func() bool { return m.suggestSnap.Phase == query.PhaseSettled })
	require.Len(t, m.suggestSnap.Items, 2)

	// First suggestion auto-highlighted.
	cur, ok := m.suggestCursor.Current()
	require.True(t, ok)
	assert.Equal(t, "good morning!", cur.Text)
}

func TestTabAcceptsSuggestion(t *testing.T) {
	m := newTestModel(t)

	typeText(m, "good")
	pump(t, m, func() bool { return m.suggestSnap.Phase == query.PhaseSettled })

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "good night", m.input.Value())

	// Accepting clears the box.
	pump(t, m, func() bool { return m.suggestSnap.Phase == query.PhaseIdle })
	assert.Equal(t, 0, m.suggestCursor.Len())
}

func TestShortInputNeverSuggests(t *testing.T) {
	m := newTestModel(t)

	typeText(m, "go")
	pump(t, m, func() bool { return m.suggestSnap.Phase == query.PhaseTooShort })
	assert.Empty(t, m.suggestSnap.Items)
}

func TestSearchOverlayLifecycle(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Equal(t, modeSearch, m.mode)

	typeText(m, "deploy")
	pump(t, m, func() bool { return m.searchSnap.Phase == query.PhaseSettled })
	require.Len(t, m.searchSnap.Items, 1)
	assert.Equal(t, "m1", m.searchSnap.Items[0].MessageID)

	// Nothing highlighted until the user moves.
	_, ok := m.searchCursor.Current()
	assert.False(t, ok)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	r, ok := m.searchCursor.Current()
	require.True(t, ok)
	assert.Equal(t, "m1", r.MessageID)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeCompose, m.mode)
	assert.Empty(t, m.searchInput.Value())
	pump(t, m, func() bool { return m.searchSnap.Phase == query.PhaseIdle })
}

func TestSlashOpensSearchOnlyWhenEmpty(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	assert.Equal(t, modeSearch, m.mode)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	typeText(m, "a/b")
	assert.Equal(t, modeCompose, m.mode)
	assert.Equal(t, "a/b", m.input.Value())
}

func TestSearchHomeEndJumps(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	m.Update(searchSnapMsg(query.Snapshot[search.Result]{
		Phase: query.PhaseSettled,
		Items: []search.Result{{MessageID: "m1"}, {MessageID: "m2"}},
	}))
	require.Len(t, m.searchSnap.Items, 2)

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 1, m.searchCursor.Index())
	m.Update(tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, m.searchCursor.Index())
}

func TestOfflineSendAppendsLocally(t *testing.T) {
	m := newTestModel(t)

	typeText(m, "hello there")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, m.messages, 1)
	assert.Equal(t, "hello there", m.messages[0].Body)
	assert.Equal(t, "me", m.messages[0].Sender)
	assert.Empty(t, m.input.Value())
}

func TestEmptyEnterIsNoop(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.messages)
}

func TestViewRendersStates(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Contains(t, m.View(), "test chat")
	assert.Contains(t, m.View(), "No messages yet")

	typeText(m, "good")
	pump(t, m, func() bool { return m.suggestSnap.Phase == query.PhaseSettled })
	assert.Contains(t, m.View(), "good morning!")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Contains(t, m.View(), "Type to search")
}

func TestSnapshotResetsSelection(t *testing.T) {
	m := newTestModel(t)

	typeText(m, "good")
	pump(t, m, func() bool { return m.suggestSnap.Phase == query.PhaseSettled })
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.suggestCursor.Index())

	// A fresh result set snaps the highlight back to the default.
	m.Update(suggestSnapMsg(query.Snapshot[suggest.Suggestion]{
		Phase: query.PhaseSettled,
		Items: []suggest.Suggestion{{Text: "good evening"}, {Text: "good day"}},
	}))
	assert.Equal(t, 0, m.suggestCursor.Index())
}
