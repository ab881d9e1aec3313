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

type bankLoadedMsg struct {
	txns []ledger.BankTransaction
	err  error
}

type candidatesLoadedMsg struct {
	txnID   string
	entries []ledger.JournalEntry
	err     error
}

type matchedMsg struct {
	result *ledger.MatchResult
	err    error
}

// bankModel lists bank movements. Enter on an unreconciled movement opens
// the entries that could match it; enter again reconciles the pair.
type bankModel struct {
	txns    []ledger.BankTransaction
	cursor  int
	loading bool
	err     error
	width   int
	height  int

	// Candidate picker; active when matching is true.
	matching   bool
	txnID      string
	candidates []ledger.JournalEntry
	candCursor int
	statusMsg  string
}

func (m *bankModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	m.matching = false
	return func() tea.Msg {
		txns, err := c.ListBankTransactions(context.Background(), ledger.BankFilter{})
		return bankLoadedMsg{txns: txns, err: err}
	}
}

func (m bankModel) update(msg tea.Msg, c *client.Client) (bankModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bankLoadedMsg:
		m.loading = false
		m.txns = msg.txns
		m.err = msg.err
		if m.cursor >= len(m.txns) {
			m.cursor = 0
		}

	case candidatesLoadedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.matching = true
		m.txnID = msg.txnID
		m.candidates = msg.entries
		m.candCursor = 0

	case matchedMsg:
		m.matching = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		r := msg.result
		if r.Status == ledger.Reconciled {
			m.statusMsg = fmt.Sprintf("Reconciled %s with entry %s", r.TransactionID, r.JournalEntryID)
		} else {
			m.statusMsg = fmt.Sprintf("Mismatch: difference %s", r.Difference.Format())
		}
		return m, m.init(c)

	case tea.KeyMsg:
		if m.matching {
			return m.updateCandidates(msg, c)
		}
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.txns)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if m.cursor >= len(m.txns) {
				return m, nil
			}
			txn := m.txns[m.cursor]
			if txn.Status == ledger.Reconciled {
				m.statusMsg = "Already reconciled"
				return m, nil
			}
			m.statusMsg = ""
			id := txn.ID
			return m, func() tea.Msg {
				entries, err := c.Candidates(context.Background(), id)
				return candidatesLoadedMsg{txnID: id, entries: entries, err: err}
			}
		}
	}
	return m, nil
}

func (m bankModel) updateCandidates(msg tea.KeyMsg, c *client.Client) (bankModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.matching = false
	case key.Matches(msg, keys.Up):
		if m.candCursor > 0 {
			m.candCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.candCursor < len(m.candidates)-1 {
			m.candCursor++
		}
	case key.Matches(msg, keys.Enter):
		if m.candCursor >= len(m.candidates) {
			return m, nil
		}
		txnID, entryID := m.txnID, m.candidates[m.candCursor].ID
		return m, func() tea.Msg {
			res, err := c.Match(context.Background(), txnID, entryID)
			return matchedMsg{result: res, err: err}
		}
	}
	return m, nil
}

func (m *bankModel) view() string {
	if m.loading {
		return "Loading bank movements..."
	}
	if m.matching {
		return m.candidatesView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Conciliación bancaria"))
	b.WriteString("\n")

	if len(m.txns) == 0 {
		b.WriteString(dimStyle.Render("No bank movements. Import a statement with 'libromayor bank import'."))
	} else {
		header := fmt.Sprintf("  %-10s %-32s %-6s %14s %-12s %-12s", "DATE", "DESCRIPTION", "DIR", "AMOUNT", "STATUS", "REFERENCE")
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
		for i := start; i < len(m.txns) && i < start+maxRows; i++ {
			t := m.txns[i]
			line := fmt.Sprintf("  %-10s %-32s %-6s %14s %-12s %-12s",
				t.Date, truncate(t.Description, 32), t.Direction, t.Amount.Format(), t.Status, truncate(t.Reference, 12))
			switch {
			case i == m.cursor:
				b.WriteString(selectedStyle.Render("> " + line[2:]))
			case t.Status == ledger.Mismatch:
				b.WriteString(warnStyle.Render(line))
			case t.Status == ledger.Reconciled:
				b.WriteString(dimStyle.Render(line))
			default:
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n  " + m.statusMsg)
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()))
	}
	return b.String()
}

func (m *bankModel) candidatesView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Candidate entries for " + m.txnID))
	b.WriteString("\n")

	if len(m.candidates) == 0 {
		b.WriteString(dimStyle.Render("  No reviewed entries with a matching amount."))
		b.WriteString("\n\n" + dimStyle.Render("  ESC to go back"))
		return b.String()
	}

	header := fmt.Sprintf("  %-8s %-10s %-36s %14s", "NUMBER", "DATE", "CONCEPT", "AMOUNT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	for i, e := range m.candidates {
		line := fmt.Sprintf("  %-8s %-10s %-36s %14s", e.Number, e.Date, truncate(e.Concept, 36), e.Amount().Format())
		if i == m.candCursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + dimStyle.Render("  enter to match, ESC to go back"))
	return b.String()
}
