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

// Business days shown in the upcoming panel.
const upcomingWindow = 10

type taxLoadedMsg struct {
	upcoming []ledger.TaxEvent
	year     []ledger.TaxEvent
	err      error
}

type taxFiledMsg struct {
	event *ledger.TaxEvent
	err   error
}

type taxModel struct {
	upcoming []ledger.TaxEvent
	events   []ledger.TaxEvent
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func (m *taxModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		upcoming, err := c.UpcomingTaxEvents(ctx, upcomingWindow)
		if err != nil {
			return taxLoadedMsg{err: err}
		}
		year, err := c.TaxEvents(ctx, 0)
		return taxLoadedMsg{upcoming: upcoming, year: year, err: err}
	}
}

func (m taxModel) update(msg tea.Msg, c *client.Client) (taxModel, tea.Cmd) {
	switch msg := msg.(type) {
	case taxLoadedMsg:
		m.loading = false
		m.upcoming = msg.upcoming
		m.events = msg.year
		m.err = msg.err
		if m.cursor >= len(m.events) {
			m.cursor = 0
		}

	case taxFiledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.init(c)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.events)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Filed):
			if m.cursor >= len(m.events) || m.events[m.cursor].Status == ledger.TaxFiled {
				return m, nil
			}
			id := m.events[m.cursor].ID
			return m, func() tea.Msg {
				ev, err := c.MarkTaxEventFiled(context.Background(), id)
				return taxFiledMsg{event: ev, err: err}
			}
		}
	}
	return m, nil
}

func (m *taxModel) view() string {
	if m.loading {
		return "Loading tax calendar..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Calendario fiscal"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("  Next %d business days", upcomingWindow)))
	b.WriteString("\n")
	if len(m.upcoming) == 0 {
		b.WriteString(dimStyle.Render("  Nothing due.") + "\n")
	}
	for _, ev := range m.upcoming {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  %-10s %s", ev.DueDate, ev.Name)) + "\n")
	}
	b.WriteString("\n")

	header := fmt.Sprintf("  %-16s %-10s %-8s %-44s", "ID", "DUE", "STATUS", "NAME")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 8 - len(m.upcoming)
	if maxRows < 1 {
		maxRows = 10
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	for i := start; i < len(m.events) && i < start+maxRows; i++ {
		ev := m.events[i]
		line := fmt.Sprintf("  %-16s %-10s %-8s %-44s", ev.ID, ev.DueDate, ev.Status, truncate(ev.Name, 44))
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case ev.Status == ledger.TaxFiled:
			b.WriteString(dimStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}
