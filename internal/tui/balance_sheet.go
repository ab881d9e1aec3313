package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

type balanceSheetLoadedMsg struct {
	bs  *ledger.BalanceSheet
	err error
}

type balanceSheetModel struct {
	bs      *ledger.BalanceSheet
	loading bool
	err     error
	width   int
	height  int
}

func (m *balanceSheetModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		bs, err := c.BalanceSheet(context.Background())
		return balanceSheetLoadedMsg{bs: bs, err: err}
	}
}

func (m balanceSheetModel) update(msg tea.Msg) (balanceSheetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case balanceSheetLoadedMsg:
		m.loading = false
		m.bs = msg.bs
		m.err = msg.err
	}
	return m, nil
}

func (m *balanceSheetModel) view() string {
	if m.loading {
		return "Loading balance sheet..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.bs == nil {
		return dimStyle.Render("No data available.")
	}

	var b strings.Builder
	w := m.width
	if w < 60 {
		w = 80
	}

	// Flexible name column: indent(4) + code(10) + gaps(2) + amount(16) = 32
	nameW := min(max(w-32, 10), 40)
	totalLabelW := nameW + 11

	b.WriteString(titleStyle.Render(centerStr("BALANCE GENERAL", w)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(centerStr("Generated "+m.bs.GeneratedAt.Format("2006-01-02 15:04"), w)))
	b.WriteString("\n\n")

	renderSection := func(title string, lines []ledger.BalanceSheetLine, total ledger.Amount) {
		b.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render(title)))
		if len(lines) == 0 {
			b.WriteString(dimStyle.Render("    (sin saldo)") + "\n\n")
			return
		}
		for _, l := range lines {
			b.WriteString(fmt.Sprintf("    %-10s %-*s %16s\n",
				l.Code, nameW, truncate(l.AccountName, nameW), formatSigned(l.Balance)))
		}
		b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("─", w-8)))
		b.WriteString(fmt.Sprintf("    %-*s %16s\n", totalLabelW, "Total "+title, formatSigned(total)))
		b.WriteString("\n")
	}

	renderSection("Activo", m.bs.Assets, m.bs.TotalAssets)
	renderSection("Pasivo", m.bs.Liabilities, m.bs.TotalLiabilities)
	renderSection("Capital", m.bs.Equity, m.bs.TotalEquity)

	b.WriteString(fmt.Sprintf("    %-*s %16s\n", totalLabelW, "Resultado del ejercicio", formatSigned(m.bs.NetIncome)))
	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("═", w-8)))
	b.WriteString(fmt.Sprintf("    %-*s %16s\n",
		totalLabelW, "Pasivo + Capital", formatSigned(m.bs.TotalLiabilities+m.bs.TotalEquity+m.bs.NetIncome)))

	b.WriteString("\n")
	if m.bs.Balanced {
		b.WriteString(successStyle.Render("    [CUADRA]"))
	} else {
		b.WriteString(errorStyle.Render("    [NO CUADRA]"))
	}

	return b.String()
}

// formatSigned renders negative amounts in parentheses.
func formatSigned(a ledger.Amount) string {
	if a < 0 {
		return "(" + a.Abs().Format() + ")"
	}
	return a.Format()
}

func centerStr(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
