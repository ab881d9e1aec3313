package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/server"
	"github.com/simonvc/libromayor/internal/tui"
)

const embeddedAddr = "127.0.0.1:8888"

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL := flagServer

		if !cmd.Flags().Changed("server") {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// The alternate screen owns the terminal, so the embedded
			// server stays quiet.
			log := zap.NewNop()

			st, svc, err := openBooks(cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if cfg.Database.SeedChart {
				if _, err := svc.SeedChart(ctx); err != nil {
					return err
				}
			}

			srvCfg := cfg.Server
			srvCfg.Addr = embeddedAddr
			errc := make(chan error, 1)
			go func() { errc <- server.New(svc, srvCfg, log).Run(ctx) }()
			serverURL = "http://" + embeddedAddr

			if err := waitForServer(ctx, client.New(serverURL), errc); err != nil {
				return err
			}
		}

		app := tui.NewApp(client.New(serverURL))
		_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
		return err
	},
}

func waitForServer(ctx context.Context, c *client.Client, errc <-chan error) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for {
		if err := c.Ping(ctx); err == nil {
			return nil
		}
		select {
		case err := <-errc:
			return fmt.Errorf("embedded server: %w", err)
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for embedded server")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
