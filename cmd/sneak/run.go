package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

func runCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the scenario and print a per-guard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := opts.world()
			if err != nil {
				return err
			}
			defer w.Close()

			opts.logger.Info("simulation started",
				"scenario", w.Name(),
				"guards", len(w.Guards()),
				"ticks", opts.cfg.Ticks,
				"rate", opts.cfg.TickRate,
			)

			if err := w.Run(ctx, opts.cfg.Ticks, opts.cfg.TickRate); err != nil {
				return err
			}

			summary := w.Summary()
			rows := make([][]string, len(summary))

			for i, s := range summary {
				rows[i] = []string{
					s.Name,
					s.State,
					strconv.Itoa(s.Transitions),
					strconv.Itoa(s.Alerts),
					strconv.FormatFloat(s.Suspicion, 'f', 2, 64),
					fmt.Sprintf("(%.1f, %.1f, %.1f)", s.Position.X, s.Position.Y, s.Position.Z),
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"GUARD", "STATE", "TRANSITIONS", "ALERTS", "SUSPICION", "POSITION"},
				rows, 1, "alert",
			))
			fmt.Fprintf(out, "player footsteps: %d\n", w.Player().Footsteps())

			return nil
		},
	}

	cmd.Flags().Int("rate", 0, "Ticks per second (0 runs unthrottled)")

	return cmd
}
