package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/guardflash/internal/config"
	"github.com/buckleypaul/guardflash/internal/logger"
	"github.com/buckleypaul/guardflash/internal/notify"
)

// errRunNotPassed makes the process exit non-zero without repeating the
// verdict the operator has already seen.
var errRunNotPassed = errors.New("run did not pass")

func newRunCmd(opts *rootOptions) *cobra.Command {
	var tool, firmware, port string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Program the device and check its boot log without the UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(opts.logLevel, cmd.ErrOrStderr())
			defer log.Sync()

			cfg := config.Load(opts.configDir)
			changed := false
			for _, f := range []struct {
				name string
				val  string
				dst  *string
			}{
				{"tool", tool, &cfg.ToolPath},
				{"firmware", firmware, &cfg.FirmwarePath},
				{"port", port, &cfg.SerialPort},
			} {
				if cmd.Flags().Changed(f.name) && *f.dst != f.val {
					*f.dst = f.val
					changed = true
				}
			}
			if changed {
				if err := config.Save(cfg, opts.configDir); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
			}

			hist, err := openHistory(opts)
			if err != nil {
				return err
			}
			if hist != nil {
				defer hist.Close()
			}

			out := cmd.OutOrStdout()
			n := notify.Multi{notify.Log{L: log}, printer{w: out}}
			v := newRunFunc(log, hist)(cmd.Context(), cfg, n, nil)
			if !v.Passed() {
				return errRunNotPassed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "path to STM32_Programmer_CLI (or its install directory)")
	cmd.Flags().StringVar(&firmware, "firmware", "", "ELF file to program")
	cmd.Flags().StringVar(&port, "port", "", "serial port carrying the boot log")
	return cmd
}

// printer writes notices for the operator on a terminal.
type printer struct {
	w io.Writer
}

func (p printer) Error(title, body string)   { fmt.Fprintf(p.w, "[%s] %s\n", title, body) }
func (p printer) Info(title, body string)    { fmt.Fprintf(p.w, "[%s] %s\n", title, body) }
func (p printer) Success(title, body string) { fmt.Fprintf(p.w, "[%s] %s\n", title, body) }
