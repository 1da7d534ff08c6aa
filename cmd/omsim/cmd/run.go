package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/byzantine-generals/omsim/module/metrics"
	"github.com/byzantine-generals/omsim/module/simulation"
)

var flagNoProgress bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch of trials and report agreement and validity",
	RunE:  run,
}

func init() {
	runCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "do not render a progress bar")
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, conf.Timeout)
		defer cancel()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []simulation.Option{simulation.WithMetrics(metrics.NewSimulationCollector(registry))}
	if !flagNoProgress {
		bar := progressbar.Default(int64(conf.Iterations), "trials")
		defer func() {
			_ = bar.Finish()
		}()
		opts = append(opts, simulation.WithProgress(func(uint64) {
			_ = bar.Add(1)
		}))
	}

	driver, err := simulation.NewDriver(log, conf.DriverConfig(), opts...)
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(ctx)
	if conf.MetricsPort > 0 {
		server := metrics.NewServer(log, conf.MetricsPort, registry)
		g.Go(func() error {
			return server.Serve(serverCtx)
		})
	}

	var report *simulation.Report
	var batchErr error
	g.Go(func() error {
		defer stopServer()
		report, batchErr = driver.Run(ctx)
		return nil
	})
	err = g.Wait()
	if err != nil {
		return fmt.Errorf("metrics server failed: %w", err)
	}

	if report != nil {
		err = renderReport(cmd.OutOrStdout(), report, conf.Output)
		if err != nil {
			return fmt.Errorf("could not render report: %w", err)
		}
	}
	if batchErr != nil {
		return fmt.Errorf("batch did not complete cleanly: %w", batchErr)
	}
	if report.Violated() && !conf.Unsafe() {
		return fmt.Errorf("%d of %d trials violated agreement or validity with generals > 3 * traitors",
			len(report.Violations), report.Completed)
	}
	return nil
}
