package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/buckleypaul/guardflash/internal/app"
	"github.com/buckleypaul/guardflash/internal/config"
	"github.com/buckleypaul/guardflash/internal/logger"
	"github.com/buckleypaul/guardflash/internal/pages"
	"github.com/buckleypaul/guardflash/internal/serial"
)

type rootOptions struct {
	configDir string
	logLevel  string
	history   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "guardflash",
		Short: "Program a board over SWD and check its boot log",
		Long: `guardflash flashes firmware with STM32_Programmer_CLI, releases the
debug link, then reads the device's boot log over serial to report the
firmware version and battery voltage.

Without a subcommand it starts the interactive terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", config.DefaultDir(), "directory holding "+config.FileName)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", logger.InfoLevel, "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.history, "history", false, "record each run in the history database")

	cmd.AddCommand(
		newRunCmd(opts),
		newPortsCmd(),
		newHistoryCmd(opts),
	)
	return cmd
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log, closeLog, err := logger.File(opts.logLevel, opts.configDir)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	hist, err := openHistory(opts)
	if err != nil {
		return err
	}
	var src pages.HistorySource
	if hist != nil {
		defer hist.Close()
		src = hist
	}

	cfg := config.Load(opts.configDir)
	log.Infow("starting tui", "config", config.Path(opts.configDir), "history", hist != nil)

	pageMap := map[app.PageID]app.Page{
		app.RunPage:     pages.NewRunPage(ctx, &cfg, opts.configDir, newRunFunc(log, hist)),
		app.LogPage:     pages.NewLogPage(),
		app.HistoryPage: pages.NewHistoryPage(src),
	}

	model := app.New(pageMap, &cfg, opts.configDir, serial.ListPorts)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
