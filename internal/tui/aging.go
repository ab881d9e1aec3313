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

type agingLoadedMsg struct {
	kind ledger.ItemKind
	rep  *ledger.AgingReport
	err  error
}

// markPaidRequestMsg asks the app to settle an item in full.
type markPaidRequestMsg struct {
	kind ledger.ItemKind
	id   string
}

type itemPaidMsg struct {
	item *ledger.OpenItem
	err  error
}

// agingModel lists the open items of one kind, bucketed as of today.
type agingModel struct {
	kind    ledger.ItemKind
	rep     *ledger.AgingReport
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func newAging(kind ledger.ItemKind) agingModel {
	return agingModel{kind: kind}
}

func (m *agingModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	kind := m.kind
	return func() tea.Msg {
		rep, err := c.AgingReport(context.Background(), ledger.AgingFilter{Kind: kind})
		return agingLoadedMsg{kind: kind, rep: rep, err: err}
	}
}

func (m agingModel) update(msg tea.Msg) (agingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case agingLoadedMsg:
		if msg.kind != m.kind {
			return m, nil
		}
		m.loading = false
		m.rep = msg.rep
		m.err = msg.err
		if m.cursor >= len(m.rows()) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.MarkPaid):
			if row := m.selected(); row != nil && row.Bucket != ledger.BucketClosed {
				req := markPaidRequestMsg{kind: m.kind, id: row.ID}
				return m, func() tea.Msg { return req }
			}
		}
	}
	return m, nil
}

func (m *agingModel) rows() []ledger.AgingRow {
	if m.rep == nil {
		return nil
	}
	return m.rep.Rows
}

func (m *agingModel) selected() *ledger.AgingRow {
	rows := m.rows()
	if m.cursor >= 0 && m.cursor < len(rows) {
		return &rows[m.cursor]
	}
	return nil
}

func (m *agingModel) title() string {
	if m.kind == ledger.Payable {
		return "Cuentas por pagar"
	}
	return "Cuentas por cobrar"
}

func (m *agingModel) view() string {
	if m.loading {
		return "Loading " + string(m.kind) + "s..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	rows := m.rows()
	if len(rows) == 0 {
		return dimStyle.Render("No " + string(m.kind) + "s yet.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s al %s", m.title(), m.rep.AsOf)))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-12s %-14s %-10s %5s %14s %14s %-13s %-8s",
		"REFERENCE", "PARTY", "DUE", "DAYS", "TOTAL", "OUTSTANDING", "STATUS", "BUCKET")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 8
	if maxRows < 1 {
		maxRows = 10
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(rows) && i < start+maxRows; i++ {
		r := rows[i]
		ref := r.Reference
		if ref == "" {
			ref = r.ID
		}
		line := fmt.Sprintf("  %-12s %-14s %-10s %5d %14s %14s %-13s %-8s",
			truncate(ref, 12), truncate(r.PartyID, 14), r.DueDate, r.DaysUntilDue,
			r.TotalAmount.Format(), r.Outstanding.Format(), r.Status, r.Bucket)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(bucketStyle(r.Bucket).Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, bucket := range []ledger.AgingBucket{ledger.BucketOverdue, ledger.BucketDueSoon, ledger.BucketPending} {
		b.WriteString(bucketStyle(bucket).Render(fmt.Sprintf("  %-8s %14s", bucket, m.rep.Totals[bucket].Format())))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("  %-8s %14s\n", "Total", m.rep.TotalOutstanding.Format()))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Due soon means within %d days", m.rep.ThresholdDays)))
	return b.String()
}
