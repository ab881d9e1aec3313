package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/ledger"
)

var entryCmd = &cobra.Command{
	Use:     "entry",
	Aliases: []string{"poliza"},
	Short:   "Manage journal entries",
}

// entry create
var (
	entryDate      string
	entryConcept   string
	entryType      string
	entryStatus    string
	entryReference string
	entryClient    string
	entryLines     []string // format: "account_id:D|C:amount"
)

// parseLine reads "account_id:D:100.00" or "account_id:C:100.00".
func parseLine(s string) (ledger.JournalEntryLine, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return ledger.JournalEntryLine{}, fmt.Errorf("invalid line %q, expected account_id:D|C:amount", s)
	}
	amount, err := ledger.ParseAmount(parts[2])
	if err != nil {
		return ledger.JournalEntryLine{}, fmt.Errorf("invalid amount in line %q: %w", s, err)
	}
	line := ledger.JournalEntryLine{AccountID: parts[0]}
	switch strings.ToUpper(parts[1]) {
	case "D", "DR":
		line.Debit = amount
	case "C", "CR":
		line.Credit = amount
	default:
		return ledger.JournalEntryLine{}, fmt.Errorf("invalid side %q in line %q, expected D or C", parts[1], s)
	}
	return line, nil
}

var entryCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a journal entry",
	Long: "Create a journal entry. Each --line is \"account_id:D:amount\" for a debit or\n" +
		"\"account_id:C:amount\" for a credit (e.g. \"<bank-id>:D:1160.00\").",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := optDate("date", entryDate)
		if err != nil {
			return err
		}
		e := &ledger.JournalEntry{
			Date:      date,
			Concept:   entryConcept,
			Type:      ledger.EntryType(entryType),
			Status:    ledger.EntryStatus(entryStatus),
			Reference: entryReference,
			ClientID:  entryClient,
		}
		for _, s := range entryLines {
			line, err := parseLine(s)
			if err != nil {
				return err
			}
			e.Lines = append(e.Lines, line)
		}

		created, err := apiClient().CreateEntry(context.Background(), e)
		if err != nil {
			return err
		}
		printEntry(created)
		return nil
	},
}

// entry template
var (
	tmplAmount    string
	tmplDate      string
	tmplConcept   string
	tmplReference string
	tmplClient    string
	tmplStatus    string
	tmplAccounts  map[string]string
)

var entryTemplateCmd = &cobra.Command{
	Use:   "template [name]",
	Short: "Create an entry from a predefined template, or list templates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := apiClient()
		if len(args) == 0 {
			templates, err := c.ListTemplates(context.Background())
			if err != nil {
				return err
			}
			for _, t := range templates {
				fmt.Printf("%-22s %-8s %s\n", t.Name, t.Type, t.Description)
			}
			return nil
		}

		amount, err := ledger.ParseAmount(tmplAmount)
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		date, err := optDate("date", tmplDate)
		if err != nil {
			return err
		}
		created, err := c.CreateTemplateEntry(context.Background(), books.TemplateEntry{
			Template:  args[0],
			Amount:    amount,
			Date:      date,
			Concept:   tmplConcept,
			Reference: tmplReference,
			ClientID:  tmplClient,
			Status:    ledger.EntryStatus(tmplStatus),
			Accounts:  tmplAccounts,
		})
		if err != nil {
			return err
		}
		printEntry(created)
		return nil
	},
}

// entry list
var (
	entryListType   string
	entryListStatus string
	entryListClient string
	entryListRecon  string
	entryListFrom   string
	entryListTo     string
	entryListLimit  int
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := optDate("from", entryListFrom)
		if err != nil {
			return err
		}
		to, err := optDate("to", entryListTo)
		if err != nil {
			return err
		}

		entries, err := apiClient().ListEntries(context.Background(), ledger.EntryFilter{
			Type:           ledger.EntryType(entryListType),
			Status:         ledger.EntryStatus(entryListStatus),
			ClientID:       entryListClient,
			Reconciliation: ledger.ReconciliationStatus(entryListRecon),
			From:           from,
			To:             to,
			Limit:          entryListLimit,
		})
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		fmt.Printf("%-7s %-10s %-8s %-9s %-34s %14s\n", "NUMBER", "DATE", "TYPE", "STATUS", "CONCEPT", "AMOUNT")
		fmt.Printf("%-7s %-10s %-8s %-9s %-34s %14s\n", "------", "----", "----", "------", "-------", "------")
		for _, e := range entries {
			fmt.Printf("%-7s %-10s %-8s %-9s %-34s %14s\n",
				e.Number, e.Date, e.Type, e.Status, truncate(e.Concept, 34), e.Amount().Format())
		}
		return nil
	},
}

var entryGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get journal entry details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := apiClient().GetEntry(context.Background(), args[0])
		if err != nil {
			return err
		}
		printEntry(e)
		return nil
	},
}

func statusCmd(use, short string, status ledger.EntryStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := apiClient().SetEntryStatus(context.Background(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Printf("Entry %s is now %s\n", e.Number, e.Status)
			return nil
		},
	}
}

func init() {
	entryCreateCmd.Flags().StringVar(&entryDate, "date", "", "Entry date (YYYY-MM-DD, default today)")
	entryCreateCmd.Flags().StringVar(&entryConcept, "concept", "", "Concept")
	entryCreateCmd.Flags().StringVar(&entryType, "type", "", "Income, Expense or Diary")
	entryCreateCmd.Flags().StringVar(&entryStatus, "status", "", "Draft (default) or Reviewed")
	entryCreateCmd.Flags().StringVar(&entryReference, "reference", "", "External reference")
	entryCreateCmd.Flags().StringVar(&entryClient, "client", "", "Client ID")
	entryCreateCmd.Flags().StringArrayVar(&entryLines, "line", nil, "Entry line (account_id:D|C:amount)")
	entryCreateCmd.MarkFlagRequired("concept")
	entryCreateCmd.MarkFlagRequired("type")
	entryCreateCmd.MarkFlagRequired("line")

	entryTemplateCmd.Flags().StringVar(&tmplAmount, "amount", "0", "Amount")
	entryTemplateCmd.Flags().StringVar(&tmplDate, "date", "", "Entry date (YYYY-MM-DD, default today)")
	entryTemplateCmd.Flags().StringVar(&tmplConcept, "concept", "", "Concept (defaults to the template description)")
	entryTemplateCmd.Flags().StringVar(&tmplReference, "reference", "", "External reference")
	entryTemplateCmd.Flags().StringVar(&tmplClient, "client", "", "Client ID")
	entryTemplateCmd.Flags().StringVar(&tmplStatus, "status", "", "Draft (default) or Reviewed")
	entryTemplateCmd.Flags().StringToStringVar(&tmplAccounts, "account", nil, "Replace a template account code (e.g. 102.01=102.02)")

	entryListCmd.Flags().StringVar(&entryListType, "type", "", "Filter by type")
	entryListCmd.Flags().StringVar(&entryListStatus, "status", "", "Filter by status")
	entryListCmd.Flags().StringVar(&entryListClient, "client", "", "Filter by client ID")
	entryListCmd.Flags().StringVar(&entryListRecon, "reconciliation", "", "Filter by reconciliation status")
	entryListCmd.Flags().StringVar(&entryListFrom, "from", "", "From date (YYYY-MM-DD)")
	entryListCmd.Flags().StringVar(&entryListTo, "to", "", "To date (YYYY-MM-DD)")
	entryListCmd.Flags().IntVar(&entryListLimit, "limit", 0, "Maximum entries")

	entryCmd.AddCommand(entryCreateCmd)
	entryCmd.AddCommand(entryTemplateCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryGetCmd)
	entryCmd.AddCommand(statusCmd("review", "Review a draft entry and post its balances", ledger.EntryReviewed))
	entryCmd.AddCommand(statusCmd("void", "Void an entry", ledger.EntryVoided))

	rootCmd.AddCommand(entryCmd)
}
