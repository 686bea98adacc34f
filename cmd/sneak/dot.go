package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func dotCmd(opts *options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "dot",
		Short:   "Simulate the scenario and print a guard's machine as a Graphviz graph",
		Example: `  sneak dot --guard north | dot -Tpng -o north.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.world()
			if err != nil {
				return err
			}
			defer w.Close()

			if name == "" {
				guards := w.Guards()
				if len(guards) == 0 {
					return fmt.Errorf("scenario %q has no guards", w.Name())
				}

				name = guards[0].Name()
			}

			if err := w.Run(cmd.Context(), opts.cfg.Ticks, 0); err != nil {
				return err
			}

			gd := w.Guard(name)
			if gd.IsNone() {
				return fmt.Errorf("no guard named %q", name)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), gd.Some().Machine().ToDOT())

			return err
		},
	}

	cmd.Flags().StringVar(&name, "guard", "", "Guard to draw (default: the first guard)")

	return cmd
}
