package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/parleychat/parley/internal/query"
	"github.com/parleychat/parley/internal/suggest"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	senderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	personaStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	title := m.chat.Title
	if m.chat.Persona != "" {
		title += " [" + m.chat.Persona + "]"
	}
	b.WriteString(headerStyle.Render(" " + title + " "))
	b.WriteRune('\n')

	if m.mode == modeSearch {
		b.WriteString(m.viewSearch())
		return b.String()
	}

	b.WriteString(m.viewMessages())
	b.WriteRune('\n')
	b.WriteString(m.input.View())
	b.WriteRune('\n')
	b.WriteString(m.viewSuggestions())
	if m.status != "" {
		b.WriteRune('\n')
		b.WriteString(dimStyle.Render(m.status))
	}
	return b.String()
}

func (m *Model) viewMessages() string {
	if len(m.messages) == 0 {
		return dimStyle.Render("No messages yet. Ctrl+F searches, Tab accepts a suggestion.")
	}

	rows := m.listHeight()
	msgs := m.messages
	if len(msgs) > rows {
		msgs = msgs[len(msgs)-rows:]
	}

	var b strings.Builder
	for i, msg := range msgs {
		style := senderStyle
		if msg.Sender != m.sender {
			style = personaStyle
		}
		prefix := msg.Sender + ": "
		body := m.fit(msg.Body, runewidth.StringWidth(prefix))
		b.WriteString(style.Render(msg.Sender+":") + " " + body)
		if i < len(msgs)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m *Model) viewSuggestions() string {
	switch m.suggestSnap.Phase {
	case query.PhaseLoading, query.PhaseDebouncing:
		return dimStyle.Render("…")
	case query.PhaseFailed:
		return errorStyle.Render("suggestions unavailable")
	case query.PhaseSettled:
	default:
		return ""
	}
	if len(m.suggestSnap.Items) == 0 {
		return ""
	}

	var b strings.Builder
	for i, s := range m.suggestSnap.Items {
		marker := "  "
		style := normalStyle
		if i == m.suggestCursor.Index() {
			marker = "> "
			style = selectedStyle
		}
		tag := sourceTag(s)
		text := m.fit(s.Text, len(marker)+runewidth.StringWidth(tag)+1)
		b.WriteString(style.Render(marker+text) + " " + sourceStyle.Render(tag))
		if i < len(m.suggestSnap.Items)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m *Model) viewSearch() string {
	var b strings.Builder
	b.WriteString(m.searchInput.View())
	b.WriteRune('\n')

	switch m.searchSnap.Phase {
	case query.PhaseIdle:
		b.WriteString(dimStyle.Render("Type to search message history"))
	case query.PhaseTooShort:
		b.WriteString(dimStyle.Render("Keep typing…"))
	case query.PhaseDebouncing, query.PhaseLoading:
		b.WriteString(dimStyle.Render("Searching…"))
	case query.PhaseFailed:
		msg := "search failed"
		if m.searchSnap.Err != nil {
			msg = fmt.Sprintf("search failed: %s", m.searchSnap.Err)
		}
		b.WriteString(errorStyle.Render(msg))
	case query.PhaseSettled:
		if len(m.searchSnap.Items) == 0 {
			b.WriteString(dimStyle.Render("No matches"))
			break
		}
		for i, r := range m.searchSnap.Items {
			marker := "  "
			style := normalStyle
			if i == m.searchCursor.Index() {
				marker = "> "
				style = selectedStyle
			}
			when := time.UnixMilli(r.SentAtMs).Format("Jan 2 15:04")
			snippet := m.fit(r.Snippet, len(marker)+len(when)+1)
			b.WriteString(style.Render(marker+snippet) + " " + sourceStyle.Render(when))
			if i < len(m.searchSnap.Items)-1 {
				b.WriteRune('\n')
			}
		}
	}
	return b.String()
}

func sourceTag(s suggest.Suggestion) string {
	switch s.Source {
	case suggest.SourceAI:
		return "(ai)"
	case suggest.SourceHistory:
		return "(history)"
	default:
		return ""
	}
}

// fit truncates text to the terminal width minus reserved columns. Runs on
// raw text, before styling, so ANSI codes never skew the width count.
func (m *Model) fit(text string, reserved int) string {
	if m.width <= 0 {
		return text
	}
	budget := m.width - reserved
	if budget < 4 {
		budget = 4
	}
	return runewidth.Truncate(text, budget, "…")
}

func (m *Model) listHeight() int {
	// header, input, status, and up to five suggestion rows
	const chrome = 8
	h := m.height - chrome
	if h < 1 {
		h = 12
	}
	return h
}
