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

type accountsLoadedMsg struct {
	accounts []ledger.Account
	err      error
}

// accountToggleMsg asks the app to flip an account between Active and
// Inactive.
type accountToggleMsg struct {
	id     string
	status ledger.AccountStatus
}

type accountStatusChangedMsg struct {
	account *ledger.Account
	err     error
}

type accountListModel struct {
	accounts []ledger.Account
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func (m *accountListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		accounts, err := c.ListAccounts(context.Background(), ledger.AccountFilter{})
		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

func (m accountListModel) update(msg tea.Msg) (accountListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		m.loading = false
		m.accounts = msg.accounts
		m.err = msg.err
		if m.cursor >= len(m.accounts) {
			m.cursor = 0
		}

	case accountStatusChangedMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.accounts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if a := m.selected(); a != nil {
				next := ledger.AccountInactive
				if a.Status == ledger.AccountInactive {
					next = ledger.AccountActive
				}
				id := a.ID
				return m, func() tea.Msg { return accountToggleMsg{id: id, status: next} }
			}
		}
	}
	return m, nil
}

func (m *accountListModel) selected() *ledger.Account {
	if m.cursor >= 0 && m.cursor < len(m.accounts) {
		return &m.accounts[m.cursor]
	}
	return nil
}

func (m *accountListModel) selectedID() string {
	if a := m.selected(); a != nil {
		return a.ID
	}
	return ""
}

func (m *accountListModel) view() string {
	if m.loading {
		return "Loading accounts..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.accounts) == 0 {
		return dimStyle.Render("No accounts found. Press 'n' to create one.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Catálogo de cuentas"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-10s %-34s %-10s %-7s %-8s %16s", "CODE", "NAME", "TYPE", "NATURE", "STATUS", "BALANCE")
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

	for i := start; i < len(m.accounts) && i < start+maxRows; i++ {
		a := m.accounts[i]
		name := strings.Repeat(" ", max(a.Level-1, 0)) + a.Name
		line := fmt.Sprintf("  %-10s %-34s %-10s %-7s %-8s %16s",
			a.Code, truncate(name, 34), a.Type, a.Nature, a.Status, a.Balance.Format())
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case a.Status == ledger.AccountInactive:
			b.WriteString(dimStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d accounts", len(m.accounts)))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}
