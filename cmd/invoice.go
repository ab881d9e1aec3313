package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/libromayor/internal/ledger"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"factura"},
	Short:   "Register and cancel invoices",
}

var (
	invID      string
	invClient  string
	invDate    string
	invAmount  string
	invUse     string
	invFile    string
	invListSAT string
)

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register an invoice, its income entry and its receivable",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := optDate("date", invDate)
		if err != nil {
			return err
		}
		amount, err := ledger.ParseAmount(invAmount)
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		inv, err := apiClient().CreateInvoice(context.Background(), &ledger.Invoice{
			ID:       invID,
			ClientID: invClient,
			Date:     date,
			Amount:   amount,
			CFDIUse:  invUse,
			FileName: invFile,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Invoice %s registered: %s\n", inv.ID, inv.Amount.FormatMXN())
		fmt.Printf("  entry:      %s\n", inv.JournalEntryID)
		fmt.Printf("  receivable: %s\n", inv.ReceivableID)
		return nil
	},
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		invoices, err := apiClient().ListInvoices(context.Background(), ledger.InvoiceFilter{
			ClientID:  invClient,
			SATStatus: ledger.SATStatus(invListSAT),
		})
		if err != nil {
			return err
		}
		if len(invoices) == 0 {
			fmt.Println("No invoices found.")
			return nil
		}
		fmt.Printf("%-36s %-10s %-36s %14s %-4s %s\n", "ID", "DATE", "CLIENT", "AMOUNT", "USE", "SAT")
		for _, inv := range invoices {
			fmt.Printf("%-36s %-10s %-36s %14s %-4s %s\n",
				inv.ID, inv.Date, inv.ClientID, inv.Amount.Format(), inv.CFDIUse, inv.SATStatus)
		}
		return nil
	},
}

var invoiceCancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel an invoice, voiding its entry and receivable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := apiClient().CancelInvoice(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Invoice %s is now %s\n", inv.ID, inv.SATStatus)
		return nil
	},
}

func init() {
	invoiceCreateCmd.Flags().StringVar(&invID, "id", "", "CFDI UUID (generated when empty)")
	invoiceCreateCmd.Flags().StringVar(&invClient, "client", "", "Client ID")
	invoiceCreateCmd.Flags().StringVar(&invDate, "date", "", "Invoice date (YYYY-MM-DD, default today)")
	invoiceCreateCmd.Flags().StringVar(&invAmount, "amount", "", "Total amount")
	invoiceCreateCmd.Flags().StringVar(&invUse, "use", "", "CFDI use (default G03)")
	invoiceCreateCmd.Flags().StringVar(&invFile, "file", "", "Source XML file name")
	invoiceCreateCmd.MarkFlagRequired("client")
	invoiceCreateCmd.MarkFlagRequired("amount")

	invoiceListCmd.Flags().StringVar(&invClient, "client", "", "Filter by client ID")
	invoiceListCmd.Flags().StringVar(&invListSAT, "sat-status", "", "Filter by SAT status")

	invoiceCmd.AddCommand(invoiceCreateCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceCancelCmd)

	rootCmd.AddCommand(invoiceCmd)
}
