package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

type accountDetailLoadedMsg struct {
	account  *ledger.Account
	children []ledger.Account
	err      error
}

type accountDetailModel struct {
	account  *ledger.Account
	children []ledger.Account
	loading  bool
	err      error
	width    int
}

func (m *accountDetailModel) init(c *client.Client, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		acct, err := c.GetAccount(context.Background(), id)
		if err != nil {
			return accountDetailLoadedMsg{err: err}
		}
		children, err := c.ListAccounts(context.Background(), ledger.AccountFilter{ParentID: id})
		return accountDetailLoadedMsg{account: acct, children: children, err: err}
	}
}

func (m accountDetailModel) update(msg tea.Msg) (accountDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountDetailLoadedMsg:
		m.loading = false
		m.account = msg.account
		m.children = msg.children
		m.err = msg.err
	}
	return m, nil
}

func (m *accountDetailModel) view() string {
	if m.loading {
		return "Loading account..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.account == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Cuenta %s %s", m.account.Code, m.account.Name)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("ID:"), m.account.ID))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), m.account.Type))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Nature:"), m.account.Nature))
	b.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Level:"), m.account.Level))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), m.account.Status))

	bal := m.account.Balance.FormatMXN()
	// A balance against the account's nature usually means a posting error.
	if m.account.Balance < 0 {
		bal = errorStyle.Render(bal + " (against nature)")
	}
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Balance:"), bal))
	b.WriteString("\n")

	if len(m.children) == 0 {
		b.WriteString(dimStyle.Render("  No sub-accounts."))
	} else {
		header := fmt.Sprintf("  %-10s %-34s %16s", "CODE", "SUB-ACCOUNT", "BALANCE")
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")

		var total ledger.Amount
		for _, c := range m.children {
			total += c.Balance
			line := fmt.Sprintf("  %-10s %-34s %16s", c.Code, truncate(c.Name, 34), c.Balance.Format())
			if m.account.Nature == ledger.NatureDebit {
				b.WriteString(debitStyle.Render(line))
			} else {
				b.WriteString(creditStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("  %-45s %16s\n", "Total", total.Format()))
	}

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}
