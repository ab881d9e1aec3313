package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

type mode int

const (
	modeAccountList mode = iota
	modeAccountDetail
	modeJournal
	modeEntryDetail
	modeReceivables
	modePayables
	modeBank
	modeBalanceSheet
	modeTax
	modeWizard
	modeJournalEntry
	modePayment
)

var tabModes = []mode{modeAccountList, modeJournal, modeReceivables, modePayables, modeBank, modeBalanceSheet, modeTax}

func tabLabel(m mode) string {
	switch m {
	case modeAccountList:
		return "Cuentas"
	case modeJournal:
		return "Pólizas"
	case modeReceivables:
		return "CxC"
	case modePayables:
		return "CxP"
	case modeBank:
		return "Bancos"
	case modeBalanceSheet:
		return "Balance"
	case modeTax:
		return "SAT"
	default:
		return ""
	}
}

type App struct {
	client        *client.Client
	mode          mode
	tabIndex      int
	width, height int
	err           error
	statusMsg     string

	accountList   accountListModel
	accountDetail accountDetailModel
	entryList     entryListModel
	entryDetail   entryDetailModel
	receivables   agingModel
	payables      agingModel
	bank          bankModel
	balanceSheet  balanceSheetModel
	tax           taxModel
	wizard        wizardModel
	journalEntry  journalEntryModel
	payment       paymentModel

	// Tab to return to when the payment form closes.
	paymentReturn mode
}

func NewApp(c *client.Client) *App {
	return &App{
		client:      c,
		mode:        modeAccountList,
		receivables: newAging(ledger.Receivable),
		payables:    newAging(ledger.Payable),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.accountList.init(a.client),
		a.entryList.init(a.client),
		a.receivables.init(a.client),
		a.payables.init(a.client),
		a.bank.init(a.client),
		a.balanceSheet.init(a.client),
		a.tax.init(a.client),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		a.resize(msg.Width, msg.Height)
		return a, nil
	}

	// Loaded data goes to its sub-model whatever the active mode is, since
	// Init fires every load at once.
	switch typedMsg := msg.(type) {
	case accountsLoadedMsg:
		var cmd tea.Cmd
		a.accountList, cmd = a.accountList.update(msg)
		return a, cmd
	case entriesLoadedMsg:
		var cmd tea.Cmd
		a.entryList, cmd = a.entryList.update(msg)
		return a, cmd
	case agingLoadedMsg:
		a.receivables, _ = a.receivables.update(msg)
		a.payables, _ = a.payables.update(msg)
		return a, nil
	case bankLoadedMsg:
		var cmd tea.Cmd
		a.bank, cmd = a.bank.update(msg, a.client)
		return a, cmd
	case balanceSheetLoadedMsg:
		var cmd tea.Cmd
		a.balanceSheet, cmd = a.balanceSheet.update(msg)
		return a, cmd
	case taxLoadedMsg:
		var cmd tea.Cmd
		a.tax, cmd = a.tax.update(msg, a.client)
		return a, cmd
	case accountDetailLoadedMsg:
		var cmd tea.Cmd
		a.accountDetail, cmd = a.accountDetail.update(msg)
		return a, cmd
	case entryDetailLoadedMsg:
		var cmd tea.Cmd
		a.entryDetail, cmd = a.entryDetail.update(msg)
		return a, cmd

	case accountToggleMsg:
		id, status := typedMsg.id, typedMsg.status
		return a, func() tea.Msg {
			acct, err := a.client.SetAccountStatus(context.Background(), id, status)
			return accountStatusChangedMsg{account: acct, err: err}
		}
	case accountStatusChangedMsg:
		a.accountList, _ = a.accountList.update(msg)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = "Account " + typedMsg.account.Code + " is now " + string(typedMsg.account.Status)
		return a, a.accountList.init(a.client)

	case entryStatusRequestMsg:
		id, status := typedMsg.id, typedMsg.status
		return a, func() tea.Msg {
			e, err := a.client.SetEntryStatus(context.Background(), id, status)
			return entryStatusChangedMsg{entry: e, err: err}
		}
	case entryStatusChangedMsg:
		if typedMsg.err != nil {
			a.entryList, _ = a.entryList.update(msg)
			a.err = typedMsg.err
			return a, nil
		}
		a.err = nil
		a.statusMsg = "Entry " + typedMsg.entry.Number + " is now " + string(typedMsg.entry.Status)
		cmds := []tea.Cmd{
			a.entryList.init(a.client),
			a.accountList.init(a.client),
			a.balanceSheet.init(a.client),
		}
		if a.mode == modeEntryDetail {
			cmds = append(cmds, a.entryDetail.init(a.client, typedMsg.entry.ID))
		}
		return a, tea.Batch(cmds...)

	case markPaidRequestMsg:
		kind, id := typedMsg.kind, typedMsg.id
		return a, func() tea.Msg {
			item, err := a.client.MarkAsPaid(context.Background(), kind, id)
			return itemPaidMsg{item: item, err: err}
		}
	case itemPaidMsg:
		if typedMsg.err != nil {
			a.err = typedMsg.err
			return a, nil
		}
		a.err = nil
		a.statusMsg = "Item " + typedMsg.item.ID + " marked as paid"
		return a, a.refreshItems(typedMsg.item.Kind)
	}

	// Modal modes take every message.
	switch a.mode {
	case modeWizard:
		var cmd tea.Cmd
		a.wizard, cmd = a.wizard.update(msg, a.client)
		if a.wizard.done {
			a.mode = modeAccountList
			a.statusMsg = a.wizard.statusMsg
			return a, a.accountList.init(a.client)
		}
		if a.wizard.cancelled {
			a.mode = modeAccountList
			a.statusMsg = "Account creation cancelled"
		}
		return a, cmd

	case modeJournalEntry:
		var cmd tea.Cmd
		a.journalEntry, cmd = a.journalEntry.update(msg, a.client)
		if a.journalEntry.done {
			a.mode = modeJournal
			a.statusMsg = a.journalEntry.statusMsg
			return a, tea.Batch(
				a.entryList.init(a.client),
				a.accountList.init(a.client),
				a.balanceSheet.init(a.client),
			)
		}
		if a.journalEntry.cancelled {
			a.mode = modeJournal
			a.statusMsg = "Entry cancelled"
		}
		return a, cmd

	case modePayment:
		var cmd tea.Cmd
		a.payment, cmd = a.payment.update(msg, a.client)
		if a.payment.done {
			a.mode = a.paymentReturn
			a.statusMsg = a.payment.statusMsg
			return a, a.refreshItems(a.payment.kind)
		}
		if a.payment.cancelled {
			a.mode = a.paymentReturn
			a.statusMsg = "Payment cancelled"
		}
		return a, cmd
	}

	// The candidate picker owns esc and enter.
	if a.mode == modeBank && a.bank.matching {
		var cmd tea.Cmd
		a.bank, cmd = a.bank.update(msg, a.client)
		return a, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			return a, a.switchTab(a.tabIndex + 1)

		case key.Matches(msg, keys.ShiftTab):
			return a, a.switchTab(a.tabIndex - 1)

		case key.Matches(msg, keys.Refresh):
			a.err = nil
			return a, a.refreshTab()

		case key.Matches(msg, keys.Escape):
			switch a.mode {
			case modeAccountDetail:
				a.mode = modeAccountList
			case modeEntryDetail:
				a.mode = modeJournal
			}
			return a, nil

		case key.Matches(msg, keys.New):
			if a.mode == modeAccountList {
				a.mode = modeWizard
				a.wizard = newWizard(a.accountList.accounts)
				return a, nil
			}

		case key.Matches(msg, keys.NewEntry):
			if a.mode == modeJournal {
				a.mode = modeJournalEntry
				a.journalEntry = newJournalEntry()
				return a, a.journalEntry.loadAccounts(a.client)
			}

		case key.Matches(msg, keys.Pay):
			if m := a.activeAging(); m != nil {
				if row := m.selected(); row != nil && row.Bucket != ledger.BucketClosed {
					a.paymentReturn = a.mode
					a.payment = newPayment(m.kind, row.OpenItem)
					a.mode = modePayment
				}
				return a, nil
			}

		case key.Matches(msg, keys.Review), key.Matches(msg, keys.Void):
			if a.mode == modeEntryDetail && a.entryDetail.entry != nil {
				status := ledger.EntryReviewed
				if key.Matches(msg, keys.Void) {
					status = ledger.EntryVoided
				}
				req := entryStatusRequestMsg{id: a.entryDetail.entry.ID, status: status}
				return a, func() tea.Msg { return req }
			}

		case key.Matches(msg, keys.Enter):
			switch a.mode {
			case modeAccountList:
				if id := a.accountList.selectedID(); id != "" {
					a.mode = modeAccountDetail
					return a, a.accountDetail.init(a.client, id)
				}
				return a, nil
			case modeJournal:
				if id := a.entryList.selectedID(); id != "" {
					a.mode = modeEntryDetail
					return a, a.entryDetail.init(a.client, id)
				}
				return a, nil
			}
		}
	}

	// Delegate to the active sub-model.
	var cmd tea.Cmd
	switch a.mode {
	case modeAccountList:
		a.accountList, cmd = a.accountList.update(msg)
	case modeAccountDetail:
		a.accountDetail, cmd = a.accountDetail.update(msg)
	case modeJournal:
		a.entryList, cmd = a.entryList.update(msg)
	case modeEntryDetail:
		a.entryDetail, cmd = a.entryDetail.update(msg)
	case modeReceivables:
		a.receivables, cmd = a.receivables.update(msg)
	case modePayables:
		a.payables, cmd = a.payables.update(msg)
	case modeBank:
		a.bank, cmd = a.bank.update(msg, a.client)
	case modeBalanceSheet:
		a.balanceSheet, cmd = a.balanceSheet.update(msg)
	case modeTax:
		a.tax, cmd = a.tax.update(msg, a.client)
	}
	return a, cmd
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	body := h - 6
	a.accountList.width, a.accountList.height = w, body
	a.entryList.width, a.entryList.height = w, body
	a.receivables.width, a.receivables.height = w, body
	a.payables.width, a.payables.height = w, body
	a.bank.width, a.bank.height = w, body
	a.balanceSheet.width, a.balanceSheet.height = w, body
	a.tax.width, a.tax.height = w, body
	a.accountDetail.width = w
	a.entryDetail.width = w
	a.wizard.width = w
	a.journalEntry.width = w
	a.payment.width = w
}

func (a *App) switchTab(i int) tea.Cmd {
	a.tabIndex = (i + len(tabModes)) % len(tabModes)
	a.mode = tabModes[a.tabIndex]
	a.statusMsg = ""
	a.err = nil
	return a.refreshTab()
}

func (a *App) activeAging() *agingModel {
	switch a.mode {
	case modeReceivables:
		return &a.receivables
	case modePayables:
		return &a.payables
	}
	return nil
}

// refreshItems reloads the views a settled item affects.
func (a *App) refreshItems(kind ledger.ItemKind) tea.Cmd {
	items := a.receivables.init(a.client)
	if kind == ledger.Payable {
		items = a.payables.init(a.client)
	}
	return tea.Batch(items, a.accountList.init(a.client), a.balanceSheet.init(a.client))
}

func (a *App) refreshTab() tea.Cmd {
	switch a.mode {
	case modeAccountList:
		return a.accountList.init(a.client)
	case modeJournal:
		return a.entryList.init(a.client)
	case modeReceivables:
		return a.receivables.init(a.client)
	case modePayables:
		return a.payables.init(a.client)
	case modeBank:
		return a.bank.init(a.client)
	case modeBalanceSheet:
		return a.balanceSheet.init(a.client)
	case modeTax:
		return a.tax.init(a.client)
	}
	return nil
}

func (a *App) helpText() string {
	switch a.mode {
	case modeAccountList:
		return "tab:switch  enter:detail  n:new account  x:activate/deactivate  q:quit"
	case modeJournal:
		return "tab:switch  enter:detail  t:new entry  r:review  v:void  q:quit"
	case modeEntryDetail:
		return "esc:back  r:review  v:void"
	case modeReceivables, modePayables:
		return "tab:switch  p:record payment  m:mark paid  ctrl+r:refresh  q:quit"
	case modeBank:
		return "tab:switch  enter:find matching entries  ctrl+r:refresh  q:quit"
	case modeTax:
		return "tab:switch  f:mark filed  ctrl+r:refresh  q:quit"
	case modeWizard, modeJournalEntry, modePayment:
		return "esc:cancel"
	default:
		return "tab:switch  esc:back  ctrl+r:refresh  q:quit"
	}
}

func (a *App) View() string {
	modal := a.mode == modeWizard || a.mode == modeJournalEntry || a.mode == modePayment

	tabs := ""
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex && !modal {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}

	var content string
	switch a.mode {
	case modeAccountList:
		content = a.accountList.view()
	case modeAccountDetail:
		content = a.accountDetail.view()
	case modeJournal:
		content = a.entryList.view()
	case modeEntryDetail:
		content = a.entryDetail.view()
	case modeReceivables:
		content = a.receivables.view()
	case modePayables:
		content = a.payables.view()
	case modeBank:
		content = a.bank.view()
	case modeBalanceSheet:
		content = a.balanceSheet.view()
	case modeTax:
		content = a.tax.view()
	case modeWizard:
		content = a.wizard.view()
	case modeJournalEntry:
		content = a.journalEntry.view()
	case modePayment:
		content = a.payment.view()
	}

	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		content,
		"",
		status,
		dimStyle.Render(a.helpText()),
	)
}
