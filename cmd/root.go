package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/config"
	"github.com/simonvc/libromayor/internal/store"
)

var (
	flagConfig string
	flagServer string
	flagDB     string
)

var rootCmd = &cobra.Command{
	Use:   "libromayor",
	Short: "Small-business books for Mexico: journal, receivables, payables and tax calendar",
	Long: "A double-entry general ledger backed by SQLite with the SAT chart of accounts,\n" +
		"receivable and payable aging, bank reconciliation and the monthly tax calendar.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultFile, "Config file")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides database.path)")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads --config, falling back to defaults when the file is
// missing, and applies --db.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}
	return cfg, nil
}

func apiClient() *client.Client {
	return client.New(flagServer)
}

// openBooks opens the database and builds the service on top of it. The
// caller closes the store.
func openBooks(cfg *config.Config, log *zap.Logger) (*store.Store, *books.Service, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	svc, err := books.New(st, cfg, books.WithLogger(log))
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, svc, nil
}
