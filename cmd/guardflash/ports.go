package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/guardflash/internal/serial"
)

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := serial.ListPorts()
			if err != nil {
				return fmt.Errorf("list ports: %w", err)
			}
			if len(ports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No serial ports found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range ports {
				fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Desc())
			}
			return tw.Flush()
		},
	}
}
