package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the chart of accounts",
}

// account create
var (
	acctCreateCode    string
	acctCreateName    string
	acctCreateType    string
	acctCreateNature  string
	acctCreateLevel   int
	acctCreateParent  string
	acctCreateOpening string
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		opening, err := optAmount("opening", acctCreateOpening)
		if err != nil {
			return err
		}

		created, err := apiClient().CreateAccount(context.Background(), client.NewAccount{
			Code:           acctCreateCode,
			Name:           acctCreateName,
			Type:           ledger.AccountType(acctCreateType),
			Nature:         ledger.Nature(acctCreateNature),
			Level:          acctCreateLevel,
			ParentID:       acctCreateParent,
			OpeningBalance: opening,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Account created: %s %s [%s, %s] %s\n",
			created.Code, created.Name, created.Type, created.Nature, created.ID)
		return nil
	},
}

// account list
var (
	acctListType   string
	acctListStatus string
	acctListParent string
)

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := apiClient().ListAccounts(context.Background(), ledger.AccountFilter{
			Type:     ledger.AccountType(acctListType),
			Status:   ledger.AccountStatus(acctListStatus),
			ParentID: acctListParent,
		})
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}

		fmt.Printf("%-10s %-32s %-10s %-8s %16s\n", "CODE", "NAME", "TYPE", "STATUS", "BALANCE")
		fmt.Printf("%-10s %-32s %-10s %-8s %16s\n", "----", "----", "----", "------", "-------")
		for _, a := range accounts {
			fmt.Printf("%-10s %-32s %-10s %-8s %16s\n", a.Code, truncate(a.Name, 32), a.Type, a.Status, a.Balance.Format())
		}
		return nil
	},
}

// account get
var accountGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get account details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := apiClient().GetAccount(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:      %s\n", acct.ID)
		fmt.Printf("Code:    %s\n", acct.Code)
		fmt.Printf("Name:    %s\n", acct.Name)
		fmt.Printf("Type:    %s\n", acct.Type)
		fmt.Printf("Nature:  %s\n", acct.Nature)
		fmt.Printf("Level:   %d\n", acct.Level)
		if acct.ParentID != "" {
			fmt.Printf("Parent:  %s\n", acct.ParentID)
		}
		fmt.Printf("Status:  %s\n", acct.Status)
		fmt.Printf("Balance: %s\n", acct.Balance.FormatMXN())
		fmt.Printf("Created: %s\n", acct.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

// account status
var accountStatusCmd = &cobra.Command{
	Use:   "status [id] [Active|Inactive]",
	Short: "Activate or deactivate an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := apiClient().SetAccountStatus(context.Background(), args[0], ledger.AccountStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("Account %s %s is now %s\n", acct.Code, acct.Name, acct.Status)
		return nil
	},
}

func init() {
	accountCreateCmd.Flags().StringVar(&acctCreateCode, "code", "", "Account code (e.g. 102.01)")
	accountCreateCmd.Flags().StringVar(&acctCreateName, "name", "", "Account name")
	accountCreateCmd.Flags().StringVar(&acctCreateType, "type", "", "Asset, Liability, Equity, Income or Expense")
	accountCreateCmd.Flags().StringVar(&acctCreateNature, "nature", "", "Debit or Credit (derived from type when empty)")
	accountCreateCmd.Flags().IntVar(&acctCreateLevel, "level", 0, "Hierarchy level")
	accountCreateCmd.Flags().StringVar(&acctCreateParent, "parent", "", "Parent account ID")
	accountCreateCmd.Flags().StringVar(&acctCreateOpening, "opening", "", "Opening balance")
	accountCreateCmd.MarkFlagRequired("code")
	accountCreateCmd.MarkFlagRequired("name")
	accountCreateCmd.MarkFlagRequired("type")

	accountListCmd.Flags().StringVar(&acctListType, "type", "", "Filter by type")
	accountListCmd.Flags().StringVar(&acctListStatus, "status", "", "Filter by status")
	accountListCmd.Flags().StringVar(&acctListParent, "parent", "", "Filter by parent account ID")

	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountGetCmd)
	accountCmd.AddCommand(accountStatusCmd)

	rootCmd.AddCommand(accountCmd)
}
