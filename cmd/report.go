package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/libromayor/internal/ledger"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Financial reports",
}

var balanceSheetCmd = &cobra.Command{
	Use:   "balance-sheet",
	Short: "Show the balance sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := apiClient().BalanceSheet(context.Background())
		if err != nil {
			return err
		}
		printBalanceSheet(bs)
		return nil
	},
}

var trialBalanceCmd = &cobra.Command{
	Use:   "trial",
	Short: "Show the trial balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		tb, err := apiClient().TrialBalance(context.Background())
		if err != nil {
			return err
		}
		printTrialBalance(tb)
		return nil
	},
}

var balanceCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Recompute balances from posted entries and report drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		check, err := apiClient().BalanceCheck(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Checked %d accounts\n", check.Checked)
		if check.Consistent {
			fmt.Println("  [CONSISTENT]")
			return nil
		}
		for _, d := range check.Drift {
			fmt.Printf("  %-10s stored %14s expected %14s\n", d.Code, d.Stored.Format(), d.Expected.Format())
		}
		return fmt.Errorf("%d accounts drifted", len(check.Drift))
	},
}

var (
	agingType  string
	agingParty string
	agingFrom  string
	agingTo    string
)

var agingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Receivable or payable aging by bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := optDate("from", agingFrom)
		if err != nil {
			return err
		}
		to, err := optDate("to", agingTo)
		if err != nil {
			return err
		}
		rep, err := apiClient().AgingReport(context.Background(), ledger.AgingFilter{
			Kind:    ledger.ItemKind(agingType),
			PartyID: agingParty,
			From:    from,
			To:      to,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Aging of %ss as of %s (due soon: %d days)\n\n", rep.Kind, rep.AsOf, rep.ThresholdDays)
		fmt.Printf("%-36s %-10s %6s %-8s %14s\n", "ID", "DUE", "DAYS", "BUCKET", "OUTSTANDING")
		for _, row := range rep.Rows {
			fmt.Printf("%-36s %-10s %6d %-8s %14s\n", row.ID, row.DueDate, row.DaysUntilDue, row.Bucket, row.Outstanding.Format())
		}
		fmt.Println()
		for _, b := range []ledger.AgingBucket{ledger.BucketOverdue, ledger.BucketDueSoon, ledger.BucketPending, ledger.BucketClosed} {
			fmt.Printf("  %-8s %14s\n", b, rep.Totals[b].Format())
		}
		fmt.Printf("  %-8s %14s\n", "OPEN", rep.TotalOutstanding.Format())
		return nil
	},
}

func init() {
	agingCmd.Flags().StringVar(&agingType, "type", string(ledger.Receivable), "receivable or payable")
	agingCmd.Flags().StringVar(&agingParty, "party", "", "Client or supplier ID")
	agingCmd.Flags().StringVar(&agingFrom, "from", "", "Due on or after (YYYY-MM-DD)")
	agingCmd.Flags().StringVar(&agingTo, "to", "", "Due on or before (YYYY-MM-DD)")

	reportCmd.AddCommand(balanceSheetCmd)
	reportCmd.AddCommand(trialBalanceCmd)
	reportCmd.AddCommand(balanceCheckCmd)
	reportCmd.AddCommand(agingCmd)

	rootCmd.AddCommand(reportCmd)
}
