package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/ledger"
)

// openItemCmds builds the list, pay and mark-paid subcommands shared by
// receivables and payables.
func openItemCmds(kind ledger.ItemKind) []*cobra.Command {
	var (
		party, from, to string
		amount, date    string
		notes, key      string
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List " + string(kind) + "s",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := optDate("from", from)
			if err != nil {
				return err
			}
			toDate, err := optDate("to", to)
			if err != nil {
				return err
			}
			items, err := apiClient().ListOpenItems(context.Background(), ledger.ItemFilter{
				Kind:    kind,
				PartyID: party,
				From:    fromDate,
				To:      toDate,
			})
			if err != nil {
				return err
			}
			printOpenItems(items)
			return nil
		},
	}
	list.Flags().StringVar(&party, "party", "", "Filter by client or supplier ID")
	list.Flags().StringVar(&from, "from", "", "Due on or after (YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "Due on or before (YYYY-MM-DD)")

	pay := &cobra.Command{
		Use:   "pay [id]",
		Short: "Record a payment; only the outstanding balance is applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := ledger.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			payDate, err := optDate("date", date)
			if err != nil {
				return err
			}
			res, err := apiClient().RecordPayment(context.Background(), kind, args[0], books.PaymentRequest{
				Amount:         amt,
				Date:           payDate,
				Notes:          notes,
				IdempotencyKey: key,
			})
			if err != nil {
				return err
			}
			if res.Replayed {
				fmt.Println("Payment already recorded with this key; nothing applied.")
			}
			fmt.Printf("Applied %s, outstanding %s (%s)\n",
				res.Applied.FormatMXN(), res.Item.Outstanding.FormatMXN(), res.Item.Status)
			return nil
		},
	}
	pay.Flags().StringVar(&amount, "amount", "", "Payment amount")
	pay.Flags().StringVar(&date, "date", "", "Payment date (YYYY-MM-DD, default today)")
	pay.Flags().StringVar(&notes, "notes", "", "Notes")
	pay.Flags().StringVar(&key, "key", "", "Idempotency key (generated when empty)")
	pay.MarkFlagRequired("amount")

	markPaid := &cobra.Command{
		Use:   "mark-paid [id]",
		Short: "Settle the whole outstanding balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := apiClient().MarkAsPaid(context.Background(), kind, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s %s is %s\n", item.Kind, item.ID, item.Status)
			return nil
		},
	}

	return []*cobra.Command{list, pay, markPaid}
}

var receivableCmd = &cobra.Command{
	Use:     "receivable",
	Aliases: []string{"cxc"},
	Short:   "Accounts receivable",
}

var payableCmd = &cobra.Command{
	Use:     "payable",
	Aliases: []string{"cxp"},
	Short:   "Accounts payable",
}

var (
	payableSupplier  string
	payableInvoice   string
	payableReference string
	payableIssue     string
	payableDue       string
	payableAmount    string
)

var payableCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a supplier bill",
	RunE: func(cmd *cobra.Command, args []string) error {
		issue, err := optDate("issue", payableIssue)
		if err != nil {
			return err
		}
		due, err := optDate("due", payableDue)
		if err != nil {
			return err
		}
		amount, err := ledger.ParseAmount(payableAmount)
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		item, err := apiClient().CreatePayable(context.Background(), &ledger.OpenItem{
			PartyID:     payableSupplier,
			InvoiceID:   payableInvoice,
			Reference:   payableReference,
			IssueDate:   issue,
			DueDate:     due,
			TotalAmount: amount,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Payable %s: %s due %s\n", item.ID, item.TotalAmount.FormatMXN(), item.DueDate)
		return nil
	},
}

func init() {
	receivableCmd.AddCommand(openItemCmds(ledger.Receivable)...)

	payableCreateCmd.Flags().StringVar(&payableSupplier, "supplier", "", "Supplier ID")
	payableCreateCmd.Flags().StringVar(&payableInvoice, "invoice", "", "Supplier invoice UUID")
	payableCreateCmd.Flags().StringVar(&payableReference, "reference", "", "Reference")
	payableCreateCmd.Flags().StringVar(&payableIssue, "issue", "", "Issue date (YYYY-MM-DD, default today)")
	payableCreateCmd.Flags().StringVar(&payableDue, "due", "", "Due date (default issue plus credit days)")
	payableCreateCmd.Flags().StringVar(&payableAmount, "amount", "", "Total amount")
	payableCreateCmd.MarkFlagRequired("supplier")
	payableCreateCmd.MarkFlagRequired("amount")

	payableCmd.AddCommand(payableCreateCmd)
	payableCmd.AddCommand(openItemCmds(ledger.Payable)...)

	rootCmd.AddCommand(receivableCmd)
	rootCmd.AddCommand(payableCmd)
}
