package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/byzantine-generals/omsim/consensus/om/notifications"
	"github.com/byzantine-generals/omsim/consensus/om/trial"
	"github.com/byzantine-generals/omsim/module/simulation"
)

var (
	flagTrial  uint64
	flagEvents bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rerun a single trial of a batch and show how every general decided",
	Long: `replay reruns trial --trial of the batch described by the remaining flags. The trial draws
from the same generator as in the batch, so it reproduces exactly, e.g. a violation reported by run.`,
	RunE: replay,
}

func init() {
	replayCmd.Flags().Uint64Var(&flagTrial, "trial", 0, "index of the trial within the batch")
	replayCmd.Flags().BoolVar(&flagEvents, "events", false, "log every relayed order and peer matrix at trace level")
}

func replay(cmd *cobra.Command, _ []string) error {
	driver, err := simulation.NewDriver(log, conf.DriverConfig())
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	var opts []trial.Option
	if flagEvents {
		opts = append(opts, trial.WithConsumer(notifications.NewLogConsumer(log.Level(zerolog.TraceLevel))))
	}
	result, err := driver.Replay(flagTrial, opts...)
	if err != nil {
		return fmt.Errorf("could not replay trial %d: %w", flagTrial, err)
	}

	err = renderTrial(cmd.OutOrStdout(), flagTrial, result)
	if err != nil {
		return fmt.Errorf("could not render trial: %w", err)
	}
	if !result.Verification.OK && !conf.Unsafe() {
		return fmt.Errorf("trial %d violated %v: %w", flagTrial, result.Verification.Kind, result.Verification.Err)
	}
	return nil
}
