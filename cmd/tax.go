package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/libromayor/internal/ledger"
)

var taxCmd = &cobra.Command{
	Use:     "tax",
	Aliases: []string{"sat"},
	Short:   "Monthly and annual tax deadlines",
}

var (
	taxYear     int
	taxDays     int
	taxGenerate bool
)

func printTaxEvents(events []ledger.TaxEvent) {
	if len(events) == 0 {
		fmt.Println("No tax events.")
		return
	}
	fmt.Printf("%-13s %-10s %-7s %-8s %s\n", "ID", "DUE", "PERIOD", "STATUS", "NAME")
	for _, e := range events {
		fmt.Printf("%-13s %-10s %-7s %-8s %s\n", e.ID, e.DueDate, e.Period, e.Status, e.Name)
	}
}

var taxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a year's tax events",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := apiClient()
		var (
			events []ledger.TaxEvent
			err    error
		)
		if taxGenerate {
			events, err = c.GenerateTaxYear(context.Background(), taxYear)
		} else {
			events, err = c.TaxEvents(context.Background(), taxYear)
		}
		if err != nil {
			return err
		}
		printTaxEvents(events)
		return nil
	},
}

var taxUpcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Pending deadlines within the next business days",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := apiClient().UpcomingTaxEvents(context.Background(), taxDays)
		if err != nil {
			return err
		}
		printTaxEvents(events)
		return nil
	},
}

var taxFiledCmd = &cobra.Command{
	Use:   "filed [id]",
	Short: "Mark a tax event as filed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := apiClient().MarkTaxEventFiled(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s is %s\n", ev.ID, ev.Status)
		return nil
	},
}

func init() {
	taxListCmd.Flags().IntVar(&taxYear, "year", 0, "Year (default current)")
	taxListCmd.Flags().BoolVar(&taxGenerate, "generate", false, "Regenerate the year's events first")
	taxUpcomingCmd.Flags().IntVar(&taxDays, "days", 10, "Business days ahead")

	taxCmd.AddCommand(taxListCmd)
	taxCmd.AddCommand(taxUpcomingCmd)
	taxCmd.AddCommand(taxFiledCmd)

	rootCmd.AddCommand(taxCmd)
}
