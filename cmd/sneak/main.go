package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/maxhimmel/fsm/internal/config"
	"github.com/maxhimmel/fsm/internal/logging"
	"github.com/maxhimmel/fsm/internal/scenario"
	"github.com/maxhimmel/fsm/internal/sim"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", logging.Error(err))
		os.Exit(1)
	}
}

// options carries the loaded config and the flags shared by every subcommand.
type options struct {
	cfg    config.Config
	debug  bool
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "sneak",
		Short:         "Run guard behavior machines against a scripted intruder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("scenario") {
				cfg.Scenario, _ = flags.GetString("scenario")
			}

			if flags.Changed("ticks") {
				cfg.Ticks, _ = flags.GetInt("ticks")
			}

			if flags.Changed("rate") {
				cfg.TickRate, _ = flags.GetInt("rate")
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}

			if opts.debug {
				level = slog.LevelDebug
			}

			opts.cfg = cfg
			opts.logger = logging.New(
				logging.WithLevel(level),
				logging.WithFormat(logging.Format(cfg.LogFormat)),
				logging.WithOutput(cmd.ErrOrStderr()),
			)
			slog.SetDefault(opts.logger)

			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("scenario", "", "Scenario YAML file (default: embedded courtyard)")
	cmd.PersistentFlags().Int("ticks", 0, "Number of ticks to simulate")

	cmd.AddCommand(runCmd(opts), dotCmd(opts))

	return cmd
}

// world loads the configured scenario and builds a world for it.
func (o *options) world() (*sim.World, error) {
	sc, err := scenario.Load(o.cfg.Scenario)
	if err != nil {
		return nil, err
	}

	return sim.New(sc,
		sim.WithLogger(o.logger),
		sim.WithHistoryLimit(o.cfg.HistoryLimit),
	), nil
}
