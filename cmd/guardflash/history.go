package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/guardflash/internal/store"
)

const noRunsMessage = "No runs recorded. Use --history to record runs."

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := store.Exists(opts.configDir)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), noRunsMessage)
				return nil
			}

			s, err := store.Open(opts.configDir)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), noRunsMessage)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tOUTCOME\tPORT\tFIRMWARE\tVERSION\tVOLTAGE\tMESSAGE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2fV\t%s\n",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.Outcome,
					r.Port,
					filepath.Base(r.Firmware),
					r.Version,
					r.Voltage,
					r.Message,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show (0 for all)")
	return cmd
}
