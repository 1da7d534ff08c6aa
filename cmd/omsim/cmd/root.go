package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/byzantine-generals/omsim/config"
)

var (
	conf *config.SimulationConfig
	log  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "omsim",
	Short: "Simulate the Byzantine Generals oral messages protocol OM(m)",
	Long: `omsim runs batches of randomized trials of the oral messages protocol OM(m): traitors and
commander are drawn per trial, traitors lie at random, and every trial is checked for
agreement among the loyal generals and for validity of a loyal commander's order.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults, err := config.DefaultConfig()
	if err != nil {
		panic(fmt.Sprintf("could not load default config: %v", err))
	}
	config.InitializeFlags(rootCmd.PersistentFlags(), defaults)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
}

func initConfig(cmd *cobra.Command, _ []string) error {
	var err error
	conf, err = config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	log = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(conf.LogLevel).With().Timestamp().Logger()

	if conf.Unsafe() {
		log.Warn().
			Int("generals", conf.Generals).
			Int("traitors", conf.Traitors).
			Msg("generals <= 3 * traitors, agreement and validity are not guaranteed")
	}
	return nil
}
