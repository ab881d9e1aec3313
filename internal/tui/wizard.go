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

type wizardStep int

const (
	stepType wizardStep = iota
	stepCode
	stepName
	stepParent
	stepConfirm
)

type accountCreatedMsg struct {
	account *ledger.Account
	err     error
}

type wizardModel struct {
	step       wizardStep
	typeCursor int
	code       textinput.Model
	name       textinput.Model
	parent     textinput.Model

	// accounts resolves the parent code typed by the user.
	accounts []ledger.Account

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newWizard(accounts []ledger.Account) wizardModel {
	codeInput := textinput.New()
	codeInput.Placeholder = "e.g. 102.03"
	codeInput.CharLimit = 20

	nameInput := textinput.New()
	nameInput.Placeholder = "e.g. Bancos nacionales Banorte"
	nameInput.CharLimit = 80

	parentInput := textinput.New()
	parentInput.Placeholder = "e.g. 102 (empty for a top-level account)"
	parentInput.CharLimit = 20

	return wizardModel{
		step:     stepType,
		code:     codeInput,
		name:     nameInput,
		parent:   parentInput,
		accounts: accounts,
	}
}

func (m wizardModel) accountType() ledger.AccountType {
	return ledger.AllAccountTypes[m.typeCursor]
}

func (m wizardModel) parentAccount() *ledger.Account {
	code := strings.TrimSpace(m.parent.Value())
	if code == "" {
		return nil
	}
	for i := range m.accounts {
		if m.accounts[i].Code == code {
			return &m.accounts[i]
		}
	}
	return nil
}

func (m wizardModel) update(msg tea.Msg, c *client.Client) (wizardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Account %s %s created", msg.account.Code, msg.account.Name)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}
		switch m.step {
		case stepType:
			switch {
			case key.Matches(msg, keys.Up):
				if m.typeCursor > 0 {
					m.typeCursor--
				}
			case key.Matches(msg, keys.Down):
				if m.typeCursor < len(ledger.AllAccountTypes)-1 {
					m.typeCursor++
				}
			case key.Matches(msg, keys.Enter):
				m.step = stepCode
				m.code.Focus()
			}
			return m, nil

		case stepCode:
			if key.Matches(msg, keys.Enter) {
				if !ledger.ValidAccountCode(strings.TrimSpace(m.code.Value())) {
					m.err = fmt.Errorf("code must be numeric, optionally dotted (e.g. 102.03)")
					return m, nil
				}
				m.err = nil
				m.code.Blur()
				m.step = stepName
				m.name.Focus()
				return m, nil
			}
			var cmd tea.Cmd
			m.code, cmd = m.code.Update(msg)
			return m, cmd

		case stepName:
			if key.Matches(msg, keys.Enter) {
				if strings.TrimSpace(m.name.Value()) == "" {
					m.err = fmt.Errorf("name is required")
					return m, nil
				}
				m.err = nil
				m.name.Blur()
				m.step = stepParent
				m.parent.Focus()
				return m, nil
			}
			var cmd tea.Cmd
			m.name, cmd = m.name.Update(msg)
			return m, cmd

		case stepParent:
			if key.Matches(msg, keys.Enter) {
				if strings.TrimSpace(m.parent.Value()) != "" && m.parentAccount() == nil {
					m.err = fmt.Errorf("no account with code %s", m.parent.Value())
					return m, nil
				}
				m.err = nil
				m.parent.Blur()
				m.step = stepConfirm
				return m, nil
			}
			var cmd tea.Cmd
			m.parent, cmd = m.parent.Update(msg)
			return m, cmd

		case stepConfirm:
			switch msg.String() {
			case "y", "Y", "enter":
				req := client.NewAccount{
					Code:  strings.TrimSpace(m.code.Value()),
					Name:  strings.TrimSpace(m.name.Value()),
					Type:  m.accountType(),
					Level: 1,
				}
				if p := m.parentAccount(); p != nil {
					req.ParentID = p.ID
					req.Level = p.Level + 1
				}
				return m, func() tea.Msg {
					acct, err := c.CreateAccount(context.Background(), req)
					return accountCreatedMsg{account: acct, err: err}
				}
			case "n", "N":
				m.cancelled = true
			}
		}
	}
	return m, nil
}

func (m *wizardModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Nueva cuenta"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Step %d of 5", int(m.step)+1)))
	b.WriteString("\n\n")

	switch m.step {
	case stepType:
		b.WriteString("  Account type:\n\n")
		for i, t := range ledger.AllAccountTypes {
			label := fmt.Sprintf("%-10s (nature %s)", t, ledger.NormalNature(t))
			if i == m.typeCursor {
				b.WriteString(selectedStyle.Render("  > "+label) + "\n")
			} else {
				b.WriteString("    " + label + "\n")
			}
		}

	case stepCode:
		b.WriteString(fmt.Sprintf("  Type: %s\n", m.accountType()))
		b.WriteString("  Account code:\n\n")
		b.WriteString("  " + m.code.View() + "\n")

	case stepName:
		b.WriteString(fmt.Sprintf("  %s | %s\n", m.accountType(), m.code.Value()))
		b.WriteString("  Account name:\n\n")
		b.WriteString("  " + m.name.View() + "\n")

	case stepParent:
		b.WriteString(fmt.Sprintf("  %s | %s %s\n", m.accountType(), m.code.Value(), m.name.Value()))
		b.WriteString("  Parent account code:\n\n")
		b.WriteString("  " + m.parent.View() + "\n")

	case stepConfirm:
		var summary strings.Builder
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Code:"), m.code.Value()))
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:"), m.name.Value()))
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), m.accountType()))
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Nature:"), ledger.NormalNature(m.accountType())))
		parent := "(none)"
		if p := m.parentAccount(); p != nil {
			parent = p.Code + " " + p.Name
		}
		summary.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Parent:"), parent))
		b.WriteString(boxStyle.Render(summary.String()))
		b.WriteString("\n\n  Create this account? (y/n)\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  ESC to cancel"))
	return b.String()
}
