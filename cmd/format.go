package cmd

import (
	"fmt"
	"strings"

	"github.com/simonvc/libromayor/internal/ledger"
)

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-2]) + ".."
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// optDate parses a flag value, leaving the zero date for "".
func optDate(flag, s string) (ledger.Date, error) {
	if s == "" {
		return ledger.Date{}, nil
	}
	d, err := ledger.ParseDate(s)
	if err != nil {
		return ledger.Date{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

func optAmount(flag, s string) (ledger.Amount, error) {
	if s == "" {
		return 0, nil
	}
	a, err := ledger.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", flag, err)
	}
	return a, nil
}

func dateOrDash(d ledger.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

func printBalanceSheet(bs *ledger.BalanceSheet) {
	w := 60
	fmt.Println()
	fmt.Println(center("BALANCE GENERAL", w))
	fmt.Println(center(strings.Repeat("=", 20), w))
	fmt.Println()

	printSection("ACTIVO", bs.Assets, w)
	fmt.Printf("%*s%s\n", w-15, "", "─────────────")
	fmt.Printf("%-*s%15s\n", w-15, "Total activo", bs.TotalAssets.FormatMXN())
	fmt.Println()

	printSection("PASIVO", bs.Liabilities, w)
	fmt.Printf("%-*s%15s\n", w-15, "Total pasivo", bs.TotalLiabilities.FormatMXN())
	fmt.Println()

	printSection("CAPITAL", bs.Equity, w)
	fmt.Printf("  %-*s%15s\n", w-17, "Resultado del ejercicio", bs.NetIncome.FormatMXN())
	fmt.Printf("%-*s%15s\n", w-15, "Total capital", (bs.TotalEquity + bs.NetIncome).FormatMXN())
	fmt.Println()

	if bs.Balanced {
		fmt.Println("  [CUADRA]")
	} else {
		fmt.Println("  [NO CUADRA]")
	}
}

func printSection(title string, lines []ledger.BalanceSheetLine, w int) {
	fmt.Println(title)
	for _, l := range lines {
		label := fmt.Sprintf("%s %s", l.Code, l.AccountName)
		fmt.Printf("  %-*s%15s\n", w-17, truncate(label, w-18), l.Balance.FormatMXN())
	}
}

func printTrialBalance(tb *ledger.TrialBalance) {
	fmt.Println()
	fmt.Println(center("BALANZA DE COMPROBACION", 72))
	fmt.Println()
	fmt.Printf("%-10s %-30s %14s %14s\n", "CUENTA", "NOMBRE", "DEBE", "HABER")
	fmt.Printf("%-10s %-30s %14s %14s\n", "------", "------", "----", "-----")
	for _, l := range tb.Lines {
		debit, credit := "", ""
		if l.Debit != 0 {
			debit = l.Debit.Format()
		}
		if l.Credit != 0 {
			credit = l.Credit.Format()
		}
		fmt.Printf("%-10s %-30s %14s %14s\n", l.Code, truncate(l.AccountName, 30), debit, credit)
	}
	fmt.Printf("%-41s %14s %14s\n", "", "──────────────", "──────────────")
	fmt.Printf("%-41s %14s %14s\n", "TOTAL", tb.TotalDebit.Format(), tb.TotalCredit.Format())

	if tb.Balanced {
		fmt.Println("\n  [CUADRA]")
	} else {
		fmt.Println("\n  [NO CUADRA]")
	}
}

func printEntry(e *ledger.JournalEntry) {
	fmt.Printf("Entry:     %s (%s)\n", e.Number, e.ID)
	fmt.Printf("Date:      %s\n", e.Date)
	fmt.Printf("Type:      %s\n", e.Type)
	fmt.Printf("Status:    %s\n", e.Status)
	fmt.Printf("Concept:   %s\n", e.Concept)
	if e.Reference != "" {
		fmt.Printf("Reference: %s\n", e.Reference)
	}
	if e.ClientID != "" {
		fmt.Printf("Client:    %s\n", e.ClientID)
	}
	fmt.Printf("Reconc.:   %s\n", e.Reconciliation)
	fmt.Println("Lines:")
	for _, l := range e.Lines {
		debit, credit := "", ""
		if l.Debit != 0 {
			debit = l.Debit.Format()
		}
		if l.Credit != 0 {
			credit = l.Credit.Format()
		}
		fmt.Printf("  %-38s %14s %14s\n", l.AccountID, debit, credit)
	}
}

func printOpenItems(items []ledger.OpenItem) {
	if len(items) == 0 {
		fmt.Println("No items found.")
		return
	}
	fmt.Printf("%-38s %-38s %-10s %14s %14s %s\n", "ID", "PARTY", "DUE", "TOTAL", "OUTSTANDING", "STATUS")
	for _, it := range items {
		fmt.Printf("%-38s %-38s %-10s %14s %14s %s\n",
			it.ID, it.PartyID, it.DueDate, it.TotalAmount.Format(), it.Outstanding.Format(), it.Status)
	}
}
