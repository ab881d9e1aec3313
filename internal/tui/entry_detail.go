package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

type entryDetailLoadedMsg struct {
	entry    *ledger.JournalEntry
	accounts map[string]ledger.Account
	err      error
}

type entryDetailModel struct {
	entry    *ledger.JournalEntry
	accounts map[string]ledger.Account
	loading  bool
	err      error
	width    int
}

func (m *entryDetailModel) init(c *client.Client, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		e, err := c.GetEntry(context.Background(), id)
		if err != nil {
			return entryDetailLoadedMsg{err: err}
		}
		accounts, err := c.ListAccounts(context.Background(), ledger.AccountFilter{})
		byID := make(map[string]ledger.Account, len(accounts))
		for _, a := range accounts {
			byID[a.ID] = a
		}
		return entryDetailLoadedMsg{entry: e, accounts: byID, err: err}
	}
}

func (m entryDetailModel) update(msg tea.Msg) (entryDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entryDetailLoadedMsg:
		m.loading = false
		m.entry = msg.entry
		m.accounts = msg.accounts
		m.err = msg.err
	}
	return m, nil
}

func (m *entryDetailModel) view() string {
	if m.loading {
		return "Loading entry..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.entry == nil {
		return ""
	}

	var b strings.Builder
	e := m.entry

	b.WriteString(titleStyle.Render(fmt.Sprintf("Póliza %s", e.Number)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Concept:"), e.Concept))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Date:"), e.Date))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), e.Type))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), entryStatusStyle(e.Status).Render(string(e.Status))))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Reconciliation:"), e.Reconciliation))
	if e.Reference != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Reference:"), e.Reference))
	}
	b.WriteString("\n")

	header := fmt.Sprintf("  %-10s %-30s %15s %15s", "CODE", "ACCOUNT", "DEBIT", "CREDIT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, l := range e.Lines {
		code, name := "?", l.AccountID
		if a, ok := m.accounts[l.AccountID]; ok {
			code, name = a.Code, a.Name
		}
		debit, credit := "", ""
		if l.Debit != 0 {
			debit = l.Debit.Format()
		}
		if l.Credit != 0 {
			credit = l.Credit.Format()
		}
		line := fmt.Sprintf("  %-10s %-30s %15s %15s", code, truncate(name, 30), debit, credit)
		if l.Debit != 0 {
			b.WriteString(debitStyle.Render(line))
		} else {
			b.WriteString(creditStyle.Render(line))
		}
		b.WriteString("\n")
	}
	debit, credit := e.Totals()
	b.WriteString(fmt.Sprintf("  %-41s %15s %15s\n", "", debit.Format(), credit.Format()))

	b.WriteString("\n" + dimStyle.Render("  r:review  v:void  ESC to go back"))
	return b.String()
}
