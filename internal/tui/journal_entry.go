package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

type jeStep int

const (
	jeStepConcept jeStep = iota
	jeStepType
	jeStepLineAccount
	jeStepLineSide
	jeStepLineAmount
	jeStepMore
	jeStepConfirm
)

var entryTypes = []ledger.EntryType{ledger.EntryIncome, ledger.EntryExpense, ledger.EntryDiary}

type entryLine struct {
	account ledger.Account
	isDebit bool
	amount  ledger.Amount
}

type accountsForJEMsg struct {
	accounts []ledger.Account
	err      error
}

type entryCreatedMsg struct {
	entry *ledger.JournalEntry
	err   error
}

type journalEntryModel struct {
	step    jeStep
	concept textinput.Model
	typeIdx int
	lines   []entryLine

	// Current line being built
	accountInput textinput.Model
	amountInput  textinput.Model
	account      ledger.Account
	isDebit      bool
	moreCursor   int // 0 = add another, 1 = done
	review       bool

	// Active accounts for lookup by code
	accounts []ledger.Account

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newJournalEntry() journalEntryModel {
	conceptInput := textinput.New()
	conceptInput.Placeholder = "e.g. Venta de mostrador"
	conceptInput.CharLimit = 120
	conceptInput.Focus()

	acctInput := textinput.New()
	acctInput.Placeholder = "e.g. 102.01"
	acctInput.CharLimit = 20

	amtInput := textinput.New()
	amtInput.Placeholder = "e.g. 1,160.00"
	amtInput.CharLimit = 20

	return journalEntryModel{
		step:         jeStepConcept,
		concept:      conceptInput,
		accountInput: acctInput,
		amountInput:  amtInput,
		isDebit:      true,
	}
}

func (m *journalEntryModel) loadAccounts(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		accounts, err := c.ListAccounts(context.Background(), ledger.AccountFilter{Status: ledger.AccountActive})
		return accountsForJEMsg{accounts: accounts, err: err}
	}
}

func (m journalEntryModel) update(msg tea.Msg, c *client.Client) (journalEntryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsForJEMsg:
		m.accounts = msg.accounts
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case entryCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = jeStepConfirm
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Entry %s posted as %s", msg.entry.Number, msg.entry.Status)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}

		switch m.step {
		case jeStepConcept:
			return m.updateConcept(msg)
		case jeStepType:
			return m.updateType(msg)
		case jeStepLineAccount:
			return m.updateLineAccount(msg)
		case jeStepLineSide:
			return m.updateLineSide(msg)
		case jeStepLineAmount:
			return m.updateLineAmount(msg)
		case jeStepMore:
			return m.updateMore(msg)
		case jeStepConfirm:
			return m.updateConfirm(msg, c)
		}
	}
	return m, nil
}

func (m journalEntryModel) updateConcept(msg tea.KeyMsg) (journalEntryModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		if strings.TrimSpace(m.concept.Value()) == "" {
			m.err = fmt.Errorf("concept is required")
			return m, nil
		}
		m.err = nil
		m.concept.Blur()
		m.step = jeStepType
		return m, nil
	}
	var cmd tea.Cmd
	m.concept, cmd = m.concept.Update(msg)
	return m, cmd
}

func (m journalEntryModel) updateType(msg tea.KeyMsg) (journalEntryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.typeIdx > 0 {
			m.typeIdx--
		}
	case key.Matches(msg, keys.Down):
		if m.typeIdx < len(entryTypes)-1 {
			m.typeIdx++
		}
	case key.Matches(msg, keys.Enter):
		m.step = jeStepLineAccount
		m.accountInput.SetValue("")
		m.accountInput.Focus()
	}
	return m, nil
}

func (m journalEntryModel) lookup(code string) (ledger.Account, bool) {
	for _, a := range m.accounts {
		if a.Code == code {
			return a, true
		}
	}
	return ledger.Account{}, false
}

func (m journalEntryModel) updateLineAccount(msg tea.KeyMsg) (journalEntryModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		code := strings.TrimSpace(m.accountInput.Value())
		acct, ok := m.lookup(code)
		if !ok {
			m.err = fmt.Errorf("no active account with code %q", code)
			return m, nil
		}
		m.account = acct
		m.err = nil
		m.step = jeStepLineSide
		m.isDebit = acct.Nature == ledger.NatureDebit
		return m, nil
	}
	var cmd tea.Cmd
	m.accountInput, cmd = m.accountInput.Update(msg)
	return m, cmd
}

func (m journalEntryModel) updateLineSide(msg tea.KeyMsg) (journalEntryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		m.isDebit = !m.isDebit
	case key.Matches(msg, keys.Enter):
		m.err = nil
		m.step = jeStepLineAmount
		m.amountInput.SetValue("")
		m.amountInput.Focus()
	}
	return m, nil
}

func (m journalEntryModel) updateLineAmount(msg tea.KeyMsg) (journalEntryModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		amt, err := ledger.ParseAmount(m.amountInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid amount: %v", err)
			return m, nil
		}
		if !amt.IsPositive() {
			m.err = fmt.Errorf("amount must be positive")
			return m, nil
		}
		m.lines = append(m.lines, entryLine{account: m.account, isDebit: m.isDebit, amount: amt})
		m.err = nil
		m.moreCursor = 0
		m.step = jeStepMore
		return m, nil
	}
	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	return m, cmd
}

func (m journalEntryModel) updateMore(msg tea.KeyMsg) (journalEntryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		m.moreCursor = 1 - m.moreCursor
	case key.Matches(msg, keys.Enter):
		if m.moreCursor == 0 {
			m.step = jeStepLineAccount
			m.accountInput.SetValue("")
			m.accountInput.Focus()
			m.err = nil
			return m, nil
		}
		if len(m.lines) < 2 {
			m.err = fmt.Errorf("need at least 2 lines")
			m.moreCursor = 0
			return m, nil
		}
		if !m.isBalanced() {
			m.err = fmt.Errorf("debits and credits do not match")
			m.moreCursor = 0
			return m, nil
		}
		m.err = nil
		m.step = jeStepConfirm
	}
	return m, nil
}

func (m journalEntryModel) buildEntry() *ledger.JournalEntry {
	e := &ledger.JournalEntry{
		Concept: strings.TrimSpace(m.concept.Value()),
		Type:    entryTypes[m.typeIdx],
	}
	if m.review {
		e.Status = ledger.EntryReviewed
	}
	for _, l := range m.lines {
		line := ledger.JournalEntryLine{AccountID: l.account.ID}
		if l.isDebit {
			line.Debit = l.amount
		} else {
			line.Credit = l.amount
		}
		e.Lines = append(e.Lines, line)
	}
	return e
}

func (m journalEntryModel) updateConfirm(msg tea.KeyMsg, c *client.Client) (journalEntryModel, tea.Cmd) {
	switch msg.String() {
	case "r", "R":
		m.review = !m.review
	case "y", "Y", "enter":
		e := m.buildEntry()
		return m, func() tea.Msg {
			created, err := c.CreateEntry(context.Background(), e)
			return entryCreatedMsg{entry: created, err: err}
		}
	case "n", "N":
		m.cancelled = true
	}
	return m, nil
}

func (m *journalEntryModel) totals() (debit, credit ledger.Amount) {
	for _, l := range m.lines {
		if l.isDebit {
			debit += l.amount
		} else {
			credit += l.amount
		}
	}
	return debit, credit
}

func (m *journalEntryModel) isBalanced() bool {
	debit, credit := m.totals()
	return debit == credit
}

func (m *journalEntryModel) balanceSummary() string {
	if len(m.lines) == 0 {
		return ""
	}
	debit, credit := m.totals()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  Debe:  %14s\n", debit.Format()))
	b.WriteString(fmt.Sprintf("  Haber: %14s\n", credit.Format()))

	switch {
	case debit == credit:
		b.WriteString(successStyle.Render("  BALANCED"))
	case debit > credit:
		b.WriteString(errorStyle.Render("  UNBALANCED: over-debited " + (debit - credit).Format()))
	default:
		b.WriteString(errorStyle.Render("  UNBALANCED: over-credited " + (credit - debit).Format()))
	}
	return b.String()
}

func (m *journalEntryModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Nueva póliza"))
	b.WriteString("\n\n")

	if len(m.lines) > 0 {
		b.WriteString(dimStyle.Render("  Lines so far:") + "\n")
		header := fmt.Sprintf("    %-4s %-10s %-28s %14s", "SIDE", "CODE", "ACCOUNT", "AMOUNT")
		b.WriteString(dimStyle.Render(header) + "\n")
		for _, l := range m.lines {
			side := "D"
			style := debitStyle
			if !l.isDebit {
				side = "C"
				style = creditStyle
			}
			b.WriteString(style.Render(fmt.Sprintf("    %-4s %-10s %-28s %14s", side, l.account.Code, truncate(l.account.Name, 28), l.amount.Format())) + "\n")
		}
		b.WriteString("\n")
		b.WriteString(m.balanceSummary())
		b.WriteString("\n\n")
	}

	switch m.step {
	case jeStepConcept:
		b.WriteString("  Concept:\n\n")
		b.WriteString("  " + m.concept.View() + "\n")

	case jeStepType:
		b.WriteString(fmt.Sprintf("  %s\n", m.concept.Value()))
		b.WriteString("  Entry type:\n\n")
		for i, t := range entryTypes {
			label := fmt.Sprintf("%-8s (%s###)", t, ledger.NumberPrefix(t))
			if i == m.typeIdx {
				b.WriteString(selectedStyle.Render("  > "+label) + "\n")
			} else {
				b.WriteString("    " + label + "\n")
			}
		}

	case jeStepLineAccount:
		b.WriteString(fmt.Sprintf("  Line #%d: account code\n\n", len(m.lines)+1))
		b.WriteString("  " + m.accountInput.View() + "\n")

		if len(m.accounts) > 0 {
			b.WriteString("\n" + dimStyle.Render("  Matching accounts:") + "\n")
			prefix := strings.TrimSpace(m.accountInput.Value())
			shown := 0
			for _, a := range m.accounts {
				if !strings.HasPrefix(a.Code, prefix) {
					continue
				}
				b.WriteString(dimStyle.Render(fmt.Sprintf("    %-10s %s", a.Code, truncate(a.Name, 40))) + "\n")
				shown++
				if shown == 12 {
					break
				}
			}
		}

	case jeStepLineSide:
		b.WriteString(fmt.Sprintf("  Account: %s %s\n", m.account.Code, m.account.Name))
		b.WriteString("  Side:\n\n")
		if m.isDebit {
			b.WriteString(selectedStyle.Render("  > Debe (cargo)") + "\n")
			b.WriteString("    Haber (abono)\n")
		} else {
			b.WriteString("    Debe (cargo)\n")
			b.WriteString(selectedStyle.Render("  > Haber (abono)") + "\n")
		}

	case jeStepLineAmount:
		side := "Debe"
		if !m.isDebit {
			side = "Haber"
		}
		b.WriteString(fmt.Sprintf("  Account: %s | %s\n", m.account.Code, side))
		b.WriteString("  Amount:\n\n")
		b.WriteString("  " + m.amountInput.View() + "\n")

	case jeStepMore:
		options := []string{"Add another line", "Done, review and post"}
		if len(m.lines) < 2 {
			options[1] = "Done (need at least 2 lines)"
		} else if !m.isBalanced() {
			options[1] = "Done (lines must balance first)"
		}

		b.WriteString("  What next?\n\n")
		for i, opt := range options {
			if i == m.moreCursor {
				b.WriteString(selectedStyle.Render("  > "+opt) + "\n")
			} else {
				b.WriteString(fmt.Sprintf("    %s\n", opt))
			}
		}

	case jeStepConfirm:
		var summary strings.Builder
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Concept:"), m.concept.Value()))
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), entryTypes[m.typeIdx]))
		status := ledger.EntryDraft
		if m.review {
			status = ledger.EntryReviewed
		}
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), status))
		debit, credit := m.totals()
		summary.WriteString(fmt.Sprintf("%s %s / %s", labelStyle.Render("Totals:"), debit.Format(), credit.Format()))

		b.WriteString(boxStyle.Render(summary.String()))
		b.WriteString("\n\n")
		b.WriteString("  Post this entry? (y/n, r: toggle reviewed)\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  ESC to cancel"))
	return b.String()
}
