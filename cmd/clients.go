package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/libromayor/internal/ledger"
)

var clientCmd = &cobra.Command{
	Use:     "client",
	Aliases: []string{"cliente"},
	Short:   "Manage clients and suppliers",
}

// client create
var (
	clientName        string
	clientRFC         string
	clientEmail       string
	clientPhone       string
	clientAddress     string
	clientCreditLimit string
	clientCreditDays  int
	clientAccount     string
	clientNotes       string
)

var clientCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a client or supplier",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := optAmount("credit-limit", clientCreditLimit)
		if err != nil {
			return err
		}
		created, err := apiClient().CreateClient(context.Background(), &ledger.Client{
			Name:                clientName,
			RFC:                 clientRFC,
			Email:               clientEmail,
			Phone:               clientPhone,
			Address:             clientAddress,
			CreditLimit:         limit,
			CreditDays:          clientCreditDays,
			AssociatedAccountID: clientAccount,
			InternalNotes:       clientNotes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Client created: %s %s (%s, regime %s)\n", created.ID, created.Name, created.Type, created.TaxRegime)
		return nil
	},
}

var (
	clientListStatus string
	clientListQuery  string
)

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		clients, err := apiClient().ListClients(context.Background(), ledger.ClientFilter{
			Status: ledger.ClientStatus(clientListStatus),
			Search: clientListQuery,
		})
		if err != nil {
			return err
		}
		if len(clients) == 0 {
			fmt.Println("No clients found.")
			return nil
		}

		fmt.Printf("%-36s %-28s %-13s %5s %14s %14s\n", "ID", "NAME", "RFC", "DAYS", "LIMIT", "BALANCE")
		for _, c := range clients {
			fmt.Printf("%-36s %-28s %-13s %5d %14s %14s\n",
				c.ID, truncate(c.Name, 28), c.RFC, c.CreditDays, c.CreditLimit.Format(), c.Balance.Format())
		}
		return nil
	},
}

var clientGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get client details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient().GetClient(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:           %s\n", c.ID)
		fmt.Printf("Name:         %s\n", c.Name)
		fmt.Printf("RFC:          %s (%s)\n", c.RFC, c.Type)
		fmt.Printf("Tax regime:   %s\n", c.TaxRegime)
		fmt.Printf("Status:       %s\n", c.Status)
		fmt.Printf("Credit days:  %d\n", c.CreditDays)
		fmt.Printf("Credit limit: %s\n", c.CreditLimit.FormatMXN())
		fmt.Printf("Balance:      %s\n", c.Balance.FormatMXN())
		if c.Email != "" {
			fmt.Printf("Email:        %s\n", c.Email)
		}
		return nil
	},
}

var clientExposureCmd = &cobra.Command{
	Use:   "exposure [id]",
	Short: "Show open receivables against the credit limit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := apiClient().CreditExposure(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Exposure:     %s\n", exp.Exposure.FormatMXN())
		fmt.Printf("Credit limit: %s\n", exp.CreditLimit.FormatMXN())
		fmt.Printf("Available:    %s\n", exp.Available.FormatMXN())
		if exp.Exceeded {
			fmt.Println("  [LIMIT EXCEEDED]")
		}
		return nil
	},
}

var clientDelinquencyCmd = &cobra.Command{
	Use:   "delinquency [id]",
	Short: "Check whether a client is late paying",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := apiClient().Delinquency(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Last payment: %s\n", dateOrDash(d.LastPaymentDate))
		if d.DaysSincePayment < 0 {
			fmt.Println("Days since:   never paid")
		} else {
			fmt.Printf("Days since:   %d (credit days %d)\n", d.DaysSincePayment, d.CreditDays)
		}
		fmt.Printf("Balance:      %s\n", d.Balance.FormatMXN())
		fmt.Printf("Delinquent:   %v\n", d.Delinquent)
		return nil
	},
}

var (
	stmtFrom string
	stmtTo   string
)

var clientStatementCmd = &cobra.Command{
	Use:   "statement [id]",
	Short: "Print a client's account statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := optDate("from", stmtFrom)
		if err != nil {
			return err
		}
		to, err := optDate("to", stmtTo)
		if err != nil {
			return err
		}
		st, err := apiClient().Statement(context.Background(), args[0], from, to)
		if err != nil {
			return err
		}

		fmt.Printf("%-10s %-7s %-32s %12s %12s %14s\n", "DATE", "NUMBER", "CONCEPT", "CHARGE", "PAYMENT", "BALANCE")
		fmt.Printf("%-10s %-7s %-32s %12s %12s %14s\n", "", "", "Saldo inicial", "", "", st.OpeningBalance.Format())
		for _, l := range st.Lines {
			charge, payment := "", ""
			if l.Charge != 0 {
				charge = l.Charge.Format()
			}
			if l.Payment != 0 {
				payment = l.Payment.Format()
			}
			fmt.Printf("%-10s %-7s %-32s %12s %12s %14s\n", l.Date, l.Number, truncate(l.Concept, 32), charge, payment, l.Balance.Format())
		}
		fmt.Printf("%-10s %-7s %-32s %12s %12s %14s\n", "", "", "Saldo final", "", "", st.ClosingBalance.Format())
		return nil
	},
}

var rfcCmd = &cobra.Command{
	Use:   "rfc [rfc]",
	Short: "Validate an RFC with the fiscal service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		check, err := apiClient().CheckRFC(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("RFC:        %s\n", check.RFC)
		fmt.Printf("Valid:      %v\n", check.Valid)
		fmt.Printf("Type:       %s\n", check.Type)
		fmt.Printf("Registered: %v\n", check.Registered)
		if check.TaxRegime != "" {
			fmt.Printf("Regime:     %s\n", check.TaxRegime)
		}
		if check.Message != "" {
			fmt.Printf("Message:    %s\n", check.Message)
		}
		return nil
	},
}

func init() {
	clientCreateCmd.Flags().StringVar(&clientName, "name", "", "Name or business name")
	clientCreateCmd.Flags().StringVar(&clientRFC, "rfc", "", "RFC")
	clientCreateCmd.Flags().StringVar(&clientEmail, "email", "", "Email")
	clientCreateCmd.Flags().StringVar(&clientPhone, "phone", "", "Phone")
	clientCreateCmd.Flags().StringVar(&clientAddress, "address", "", "Fiscal address")
	clientCreateCmd.Flags().StringVar(&clientCreditLimit, "credit-limit", "", "Credit limit")
	clientCreateCmd.Flags().IntVar(&clientCreditDays, "credit-days", 0, "Credit days (default from config)")
	clientCreateCmd.Flags().StringVar(&clientAccount, "account", "", "Receivable account ID for this client")
	clientCreateCmd.Flags().StringVar(&clientNotes, "notes", "", "Internal notes")
	clientCreateCmd.MarkFlagRequired("name")
	clientCreateCmd.MarkFlagRequired("rfc")

	clientListCmd.Flags().StringVar(&clientListStatus, "status", "", "Filter by status")
	clientListCmd.Flags().StringVarP(&clientListQuery, "query", "q", "", "Search name or RFC")

	clientStatementCmd.Flags().StringVar(&stmtFrom, "from", "", "From date (YYYY-MM-DD)")
	clientStatementCmd.Flags().StringVar(&stmtTo, "to", "", "To date (YYYY-MM-DD)")

	clientCmd.AddCommand(clientCreateCmd)
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientGetCmd)
	clientCmd.AddCommand(clientExposureCmd)
	clientCmd.AddCommand(clientDelinquencyCmd)
	clientCmd.AddCommand(clientStatementCmd)
	clientCmd.AddCommand(rfcCmd)

	rootCmd.AddCommand(clientCmd)
}
