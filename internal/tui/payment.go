package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

type paymentRecordedMsg struct {
	result *books.PaymentResult
	err    error
}

const (
	payFieldAmount = iota
	payFieldDate
	payFieldNotes
	payFieldCount
)

// paymentModel records one payment against an open item. The idempotency
// key is fixed when the form opens, so resubmitting after a timeout cannot
// apply the payment twice.
type paymentModel struct {
	kind   ledger.ItemKind
	item   ledger.OpenItem
	key    string
	inputs [payFieldCount]textinput.Model
	focus  int

	submitting bool
	err        error
	done       bool
	cancelled  bool
	statusMsg  string
	width      int
}

func newPayment(kind ledger.ItemKind, item ledger.OpenItem) paymentModel {
	amount := textinput.New()
	amount.Placeholder = item.Outstanding.Format()
	amount.CharLimit = 20
	amount.Focus()

	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD (blank for today)"
	date.CharLimit = 10

	notes := textinput.New()
	notes.Placeholder = "e.g. Transferencia SPEI"
	notes.CharLimit = 120

	return paymentModel{
		kind:   kind,
		item:   item,
		key:    uuid.NewString(),
		inputs: [payFieldCount]textinput.Model{amount, date, notes},
	}
}

func (m paymentModel) request() (books.PaymentRequest, error) {
	req := books.PaymentRequest{
		Notes:          strings.TrimSpace(m.inputs[payFieldNotes].Value()),
		IdempotencyKey: m.key,
	}

	raw := strings.TrimSpace(m.inputs[payFieldAmount].Value())
	if raw == "" {
		req.Amount = m.item.Outstanding
	} else {
		amt, err := ledger.ParseAmount(raw)
		if err != nil {
			return req, fmt.Errorf("invalid amount: %v", err)
		}
		req.Amount = amt
	}
	if !req.Amount.IsPositive() {
		return req, fmt.Errorf("amount must be positive")
	}

	if raw := strings.TrimSpace(m.inputs[payFieldDate].Value()); raw != "" {
		d, err := ledger.ParseDate(raw)
		if err != nil {
			return req, fmt.Errorf("invalid date: %v", err)
		}
		req.Date = d
	}
	return req, nil
}

func (m paymentModel) update(msg tea.Msg, c *client.Client) (paymentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case paymentRecordedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.done = true
		res := msg.result
		m.statusMsg = fmt.Sprintf("Applied %s, outstanding %s (%s)",
			res.Applied.Format(), res.Item.Outstanding.Format(), res.Item.Status)
		if res.Replayed {
			m.statusMsg += " [already recorded]"
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Escape):
			m.cancelled = true
			return m, nil
		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
			m.setFocus((m.focus + 1) % payFieldCount)
			return m, nil
		case key.Matches(msg, keys.ShiftTab), key.Matches(msg, keys.Up):
			m.setFocus((m.focus - 1 + payFieldCount) % payFieldCount)
			return m, nil
		case key.Matches(msg, keys.Enter):
			if m.focus < payFieldCount-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			req, err := m.request()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.submitting = true
			kind, id := m.kind, m.item.ID
			return m, func() tea.Msg {
				res, err := c.RecordPayment(context.Background(), kind, id, req)
				return paymentRecordedMsg{result: res, err: err}
			}
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *paymentModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m *paymentModel) view() string {
	var b strings.Builder

	title := "Registrar cobro"
	if m.kind == ledger.Payable {
		title = "Registrar pago"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	var summary strings.Builder
	ref := m.item.Reference
	if ref == "" {
		ref = m.item.ID
	}
	summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Reference:"), ref))
	summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Party:"), m.item.PartyID))
	summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Due:"), m.item.DueDate))
	summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Total:"), m.item.TotalAmount.Format()))
	summary.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Outstanding:"), m.item.Outstanding.Format()))
	b.WriteString(boxStyle.Render(summary.String()))
	b.WriteString("\n\n")

	labels := [payFieldCount]string{"Amount", "Date", "Notes"}
	for i, in := range m.inputs {
		label := fmt.Sprintf("  %-8s", labels[i])
		if i == m.focus {
			label = selectedStyle.Render(label)
		}
		b.WriteString(label + " " + in.View() + "\n")
	}

	if m.submitting {
		b.WriteString("\n  Recording...\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("  enter on last field to submit, blank amount pays in full, ESC to cancel"))
	return b.String()
}
