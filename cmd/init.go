package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/config"
	"github.com/simonvc/libromayor/internal/ledger"
)

var (
	initName   string
	initRFC    string
	initEntity string
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file and create the database with the SAT chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(flagConfig); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", flagConfig)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		cfg := config.Default(initName, ledger.ClientType(initEntity))
		cfg.Business.RFC = initRFC
		if flagDB != "" {
			cfg.Database.Path = flagDB
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(flagConfig, cfg); err != nil {
			return err
		}

		st, svc, err := openBooks(cfg, zap.NewNop())
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := svc.SeedChart(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", flagConfig)
		fmt.Printf("Database %s ready (%d accounts seeded)\n", cfg.Database.Path, n)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Business name")
	initCmd.Flags().StringVar(&initRFC, "rfc", "", "Business RFC")
	initCmd.Flags().StringVar(&initEntity, "entity", string(ledger.ClientLegalEntity), "Entity type (Individual or LegalEntity)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
