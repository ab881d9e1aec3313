package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

type entriesLoadedMsg struct {
	entries []ledger.JournalEntry
	err     error
}

// entryStatusRequestMsg asks the app to review or void an entry.
type entryStatusRequestMsg struct {
	id     string
	status ledger.EntryStatus
}

type entryStatusChangedMsg struct {
	entry *ledger.JournalEntry
	err   error
}

type entryListModel struct {
	entries []ledger.JournalEntry
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *entryListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		entries, err := c.ListEntries(context.Background(), ledger.EntryFilter{})
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func (m entryListModel) update(msg tea.Msg) (entryListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		m.loading = false
		m.entries = msg.entries
		m.err = msg.err
		if m.cursor >= len(m.entries) {
			m.cursor = 0
		}

	case entryStatusChangedMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Review):
			return m, m.requestStatus(ledger.EntryReviewed)
		case key.Matches(msg, keys.Void):
			return m, m.requestStatus(ledger.EntryVoided)
		}
	}
	return m, nil
}

func (m *entryListModel) requestStatus(status ledger.EntryStatus) tea.Cmd {
	id := m.selectedID()
	if id == "" {
		return nil
	}
	return func() tea.Msg { return entryStatusRequestMsg{id: id, status: status} }
}

func (m *entryListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.entries) {
		return m.entries[m.cursor].ID
	}
	return ""
}

func (m *entryListModel) view() string {
	if m.loading {
		return "Loading journal..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.entries) == 0 {
		return dimStyle.Render("No journal entries. Press 't' to post one.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Pólizas"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-7s %-10s %-8s %-9s %-13s %-32s %14s", "NUMBER", "DATE", "TYPE", "STATUS", "RECONC.", "CONCEPT", "AMOUNT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.entries) && i < start+maxRows; i++ {
		e := m.entries[i]
		line := fmt.Sprintf("  %-7s %-10s %-8s %-9s %-13s %-32s %14s",
			e.Number, e.Date, e.Type, e.Status, e.Reconciliation, truncate(e.Concept, 32), e.Amount().Format())
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(entryStatusStyle(e.Status).Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d entries", len(m.entries)))
	return b.String()
}
