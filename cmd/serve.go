package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		log, err := cfg.Logger()
		if err != nil {
			return err
		}
		defer log.Sync()

		st, svc, err := openBooks(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Database.SeedChart {
			n, err := svc.SeedChart(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("seeded chart of accounts", zap.Int("accounts", n))
			}
		}

		return server.New(svc, cfg.Server, log).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8888", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
