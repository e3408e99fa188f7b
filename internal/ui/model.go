// Package ui implements the parley chat TUI: a message view with an input
// line, a debounced suggestion box under the input, and a search overlay.
// Both the suggestion box and the overlay are driven by query coordinators;
// the model only renders their snapshots.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleychat/parley/internal/client"
	"github.com/parleychat/parley/internal/query"
	"github.com/parleychat/parley/internal/search"
	"github.com/parleychat/parley/internal/storage"
	"github.com/parleychat/parley/internal/suggest"
)

// sendTimeout bounds one message round trip to the daemon.
const sendTimeout = 10 * time.Second

type mode int

const (
	modeCompose mode = iota // typing a message, suggestion box active
	modeSearch              // search overlay open
)

// searchSnapMsg carries a search coordinator snapshot into Update.
type searchSnapMsg query.Snapshot[search.Result]

// suggestSnapMsg carries a suggest coordinator snapshot into Update.
type suggestSnapMsg query.Snapshot[suggest.Suggestion]

// historyLoadedMsg is sent once the chat's messages are fetched.
type historyLoadedMsg struct {
	messages []storage.Message
	err      error
}

// sendDoneMsg is sent when a message send round trip completes.
type sendDoneMsg struct {
	message storage.Message
	reply   *storage.Message
	err     error
}

// Options configures New.
type Options struct {
	Chat   storage.Chat
	Sender string

	// API is the daemon client. Nil means offline mode: messages stay
	// local and lookups run against whatever backends are selected.
	API *client.Client

	SearchBackends  *query.Selector[search.Result]
	SuggestBackends *query.Selector[suggest.Suggestion]
	SearchOptions   query.Options
	SuggestOptions  query.Options
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	chat     storage.Chat
	sender   string
	api      *client.Client
	messages []storage.Message
	status   string
	sending  bool

	mode        mode
	input       textinput.Model
	searchInput textinput.Model

	// events carries coordinator snapshots from timer goroutines into the
	// Bubble Tea loop. Notify must not block while the coordinator holds
	// its lock, so the channel is buffered generously.
	events chan tea.Msg

	searchCoord   *query.Coordinator[search.Result]
	suggestCoord  *query.Coordinator[suggest.Suggestion]
	searchCursor  *query.Cursor[search.Result]
	suggestCursor *query.Cursor[suggest.Suggestion]
	searchSnap    query.Snapshot[search.Result]
	suggestSnap   query.Snapshot[suggest.Suggestion]

	width  int
	height int
}

// New creates the chat model and its two coordinators.
func New(opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Prompt = "> "
	input.Focus()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search messages"
	searchInput.Prompt = "/ "

	m := &Model{
		chat:        opts.Chat,
		sender:      opts.Sender,
		api:         opts.API,
		mode:        modeCompose,
		input:       input,
		searchInput: searchInput,
		events:      make(chan tea.Msg, 64),

		// The overlay starts with nothing highlighted; the suggestion box
		// auto-highlights its first entry so Tab always has a target.
		searchCursor:  query.NewCursor[search.Result](query.NoSelection),
		suggestCursor: query.NewCursor[suggest.Suggestion](0),
	}

	m.searchCoord = query.New(opts.SearchBackends, opts.SearchOptions, func(s query.Snapshot[search.Result]) {
		select {
		case m.events <- searchSnapMsg(s):
		default:
		}
	})
	m.suggestCoord = query.New(opts.SuggestBackends, opts.SuggestOptions, func(s query.Snapshot[suggest.Suggestion]) {
		select {
		case m.events <- suggestSnapMsg(s):
		default:
		}
	})

	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitEvent()}
	if m.api != nil {
		cmds = append(cmds, m.loadHistory())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case searchSnapMsg:
		m.searchSnap = query.Snapshot[search.Result](msg)
		m.searchCursor.SetItems(m.searchSnap.Items)
		return m, m.waitEvent()

	case suggestSnapMsg:
		m.suggestSnap = query.Snapshot[suggest.Suggestion](msg)
		m.suggestCursor.SetItems(m.suggestSnap.Items)
		return m, m.waitEvent()

	case historyLoadedMsg:
		if msg.err != nil {
			m.status = "history: " + msg.err.Error()
			return m, nil
		}
		m.messages = msg.messages
		return m, nil

	case sendDoneMsg:
		m.sending = false
		if msg.err != nil {
			m.status = "send failed: " + msg.err.Error()
			return m, nil
		}
		m.messages = append(m.messages, msg.message)
		if msg.reply != nil {
			m.messages = append(m.messages, *msg.reply)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.dispose()
		return m, tea.Quit
	}
	if m.mode == modeSearch {
		return m.handleSearchKey(msg)
	}
	return m.handleComposeKey(msg)
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlF:
		return m.openSearch()

	case tea.KeyEsc:
		m.suggestCoord.Clear()
		return m, nil

	case tea.KeyUp:
		m.suggestCursor.MovePrevious()
		return m, nil

	case tea.KeyDown:
		m.suggestCursor.MoveNext()
		return m, nil

	case tea.KeyTab:
		if s, ok := m.suggestCursor.Current(); ok {
			m.input.SetValue(s.Text)
			m.input.CursorEnd()
			m.suggestCoord.Clear()
		}
		return m, nil

	case tea.KeyEnter:
		return m, m.sendCurrent()
	}

	// A slash on an empty input opens the search overlay, like the web
	// client's quick-search shortcut. Anywhere else it is just a character.
	if msg.Type == tea.KeyRunes && string(msg.Runes) == "/" && m.input.Value() == "" {
		return m.openSearch()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.suggestCoord.OnInput(m.input.Value())
	return m, cmd
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeSearch()
		return m, nil

	case tea.KeyUp:
		m.searchCursor.MovePrevious()
		return m, nil

	case tea.KeyDown:
		m.searchCursor.MoveNext()
		return m, nil

	case tea.KeyHome:
		m.searchCursor.JumpFirst()
		return m, nil

	case tea.KeyEnd:
		m.searchCursor.JumpLast()
		return m, nil

	case tea.KeyEnter:
		if r, ok := m.searchCursor.Current(); ok {
			m.status = "found: " + r.Snippet
		}
		m.closeSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchCoord.OnInput(m.searchInput.Value())
	return m, cmd
}

func (m *Model) openSearch() (tea.Model, tea.Cmd) {
	m.mode = modeSearch
	m.input.Blur()
	m.searchInput.Focus()
	return m, nil
}

func (m *Model) closeSearch() {
	m.searchCoord.Clear()
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.mode = modeCompose
	m.input.Focus()
}

func (m *Model) sendCurrent() tea.Cmd {
	body := m.input.Value()
	if body == "" || m.sending {
		return nil
	}
	m.input.SetValue("")
	m.suggestCoord.Clear()
	m.status = ""

	if m.api == nil {
		m.messages = append(m.messages, storage.Message{
			ChatID: m.chat.ChatID,
			Sender: m.sender,
			Body:   body,
			SentMs: time.Now().UnixMilli(),
		})
		return nil
	}

	m.sending = true
	api, chatID, sender := m.api, m.chat.ChatID, m.sender
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		res, err := api.SendMessage(ctx, chatID, sender, body)
		if err != nil {
			return sendDoneMsg{err: err}
		}
		return sendDoneMsg{message: res.Message, reply: res.Reply}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	api, chatID := m.api, m.chat.ChatID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		msgs, err := api.ListMessages(ctx, chatID)
		return historyLoadedMsg{messages: msgs, err: err}
	}
}

func (m *Model) waitEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m *Model) dispose() {
	m.searchCoord.Dispose()
	m.suggestCoord.Dispose()
}
