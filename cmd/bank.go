package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonvc/libromayor/internal/ledger"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Bank movements and reconciliation",
}

var (
	bankDate        string
	bankDescription string
	bankAmount      string
	bankDirection   string
	bankReference   string
	bankFormat      string
	bankListStatus  string
)

var bankAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a bank movement",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := optDate("date", bankDate)
		if err != nil {
			return err
		}
		amount, err := ledger.ParseAmount(bankAmount)
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		txn, err := apiClient().AddBankTransaction(context.Background(), &ledger.BankTransaction{
			Date:        date,
			Description: bankDescription,
			Amount:      amount,
			Direction:   ledger.Direction(bankDirection),
			Reference:   bankReference,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Bank movement %s: %s %s\n", txn.ID, txn.Direction, txn.Amount.FormatMXN())
		return nil
	},
}

var bankImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a bank statement CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := apiClient().ImportBankStatement(context.Background(), bankFormat, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d movements (%d already present) as %s\n", res.Imported, res.Skipped, res.Format)
		return nil
	},
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bank movements",
	RunE: func(cmd *cobra.Command, args []string) error {
		txns, err := apiClient().ListBankTransactions(context.Background(), ledger.BankFilter{
			Status: ledger.ReconciliationStatus(bankListStatus),
		})
		if err != nil {
			return err
		}
		if len(txns) == 0 {
			fmt.Println("No bank movements found.")
			return nil
		}
		fmt.Printf("%-36s %-10s %-32s %-6s %14s %s\n", "ID", "DATE", "DESCRIPTION", "DIR", "AMOUNT", "STATUS")
		for _, t := range txns {
			fmt.Printf("%-36s %-10s %-32s %-6s %14s %s\n",
				t.ID, t.Date, truncate(t.Description, 32), t.Direction, t.Amount.Format(), t.Status)
		}
		return nil
	},
}

var bankCandidatesCmd = &cobra.Command{
	Use:   "candidates [transaction-id]",
	Short: "List income entries that could match a bank movement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := apiClient().Candidates(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No candidate entries.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%-36s %-7s %-10s %-34s %14s\n", e.ID, e.Number, e.Date, truncate(e.Concept, 34), e.CreditTotal().Format())
		}
		return nil
	},
}

var bankMatchCmd = &cobra.Command{
	Use:   "match [transaction-id] [entry-id]",
	Short: "Reconcile a bank movement with an income entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := apiClient().Match(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s: bank %s, entry %s", res.Status, res.TransactionAmount.FormatMXN(), res.EntryAmount.FormatMXN())
		if res.Difference != 0 {
			fmt.Printf(", difference %s", res.Difference.FormatMXN())
		}
		fmt.Println()
		return nil
	},
}

func init() {
	bankAddCmd.Flags().StringVar(&bankDate, "date", "", "Movement date (YYYY-MM-DD, default today)")
	bankAddCmd.Flags().StringVar(&bankDescription, "description", "", "Description")
	bankAddCmd.Flags().StringVar(&bankAmount, "amount", "", "Amount")
	bankAddCmd.Flags().StringVar(&bankDirection, "direction", "", "credit (deposit, default) or debit")
	bankAddCmd.Flags().StringVar(&bankReference, "reference", "", "Bank reference")
	bankAddCmd.MarkFlagRequired("amount")

	bankImportCmd.Flags().StringVar(&bankFormat, "format", "generic", "Statement layout (generic, bbva)")

	bankListCmd.Flags().StringVar(&bankListStatus, "status", "", "Filter by reconciliation status")

	bankCmd.AddCommand(bankAddCmd)
	bankCmd.AddCommand(bankImportCmd)
	bankCmd.AddCommand(bankListCmd)
	bankCmd.AddCommand(bankCandidatesCmd)
	bankCmd.AddCommand(bankMatchCmd)

	rootCmd.AddCommand(bankCmd)
}
