// Package simulation runs batches of independent OM trials and aggregates their outcomes.
package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/hashicorp/go-multierror"
	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/byzantine-generals/omsim/consensus/om/committee"
	"github.com/byzantine-generals/omsim/consensus/om/engine"
	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/consensus/om/trial"
	"github.com/byzantine-generals/omsim/crypto/random"
	"github.com/byzantine-generals/omsim/module"
	"github.com/byzantine-generals/omsim/module/metrics"
)

// Config of a simulation batch.
type Config struct {
	Generals int
	Traitors int
	// Rounds is the OM level; engine.DeriveRounds runs OM(Traitors).
	Rounds     int
	Iterations uint64
	Seed       uint64
	Workers    uint
	// FailFast aborts the batch on the first internal invariant violation.
	FailFast bool
	// StopOnViolation ends the batch after the first trial failing verification.
	StopOnViolation bool
	// AllowUnsafe permits configurations with generals <= 3 * traitors.
	AllowUnsafe bool
}

// ProgressFunc is called once per finished trial with the number of trials finished so far.
// It is called concurrently from the workers.
type ProgressFunc func(finished uint64)

type runFunc func(params trial.Params, rng random.Rand, opts ...trial.Option) (trial.Result, error)

// Driver runs the trials of a batch on a worker pool. Trial i always uses the generator
// random.TrialPRG(Seed, i), so results do not depend on the number of workers or on the
// order in which trials are scheduled.
type Driver struct {
	log      zerolog.Logger
	metrics  module.SimulationMetrics
	config   Config
	progress ProgressFunc
	run      runFunc
}

// Option configures a Driver.
type Option func(*Driver)

// WithMetrics reports the batch to the given collector.
func WithMetrics(collector module.SimulationMetrics) Option {
	return func(d *Driver) {
		d.metrics = collector
	}
}

// WithProgress registers a progress callback.
func WithProgress(progress ProgressFunc) Option {
	return func(d *Driver) {
		d.progress = progress
	}
}

// NewDriver validates the configuration and creates a driver.
// Returns model.PreconditionViolationError if the configuration cannot be simulated.
func NewDriver(log zerolog.Logger, config Config, opts ...Option) (*Driver, error) {
	var err error
	if config.AllowUnsafe {
		err = committee.CheckCounts(config.Generals, config.Traitors)
	} else {
		err = committee.CheckSafety(config.Generals, config.Traitors)
	}
	if err != nil {
		return nil, err
	}
	rounds := effectiveRounds(config)
	if rounds < 0 || rounds > config.Generals-1 {
		return nil, model.NewPreconditionViolationError(config.Generals, config.Traitors,
			fmt.Sprintf("rounds %d outside of [0, generals-1]", rounds))
	}
	if config.Workers == 0 {
		return nil, model.NewPreconditionViolationError(config.Generals, config.Traitors, "at least one worker is required")
	}

	d := &Driver{
		log:      log.With().Str("component", "simulation_driver").Logger(),
		metrics:  metrics.NewNoopCollector(),
		config:   config,
		progress: func(uint64) {},
		run:      trial.Run,
	}
	for _, apply := range opts {
		apply(d)
	}
	return d, nil
}

// Rounds returns the OM level the trials run.
func (d *Driver) Rounds() int {
	return effectiveRounds(d.config)
}

func effectiveRounds(config Config) int {
	if config.Rounds == engine.DeriveRounds {
		return config.Traitors
	}
	return config.Rounds
}

func (d *Driver) params() trial.Params {
	return trial.Params{
		Generals: d.config.Generals,
		Traitors: d.config.Traitors,
	}
}

func (d *Driver) options(extra ...trial.Option) []trial.Option {
	opts := []trial.Option{trial.WithLogger(d.log), trial.WithRounds(d.config.Rounds)}
	if d.config.AllowUnsafe {
		opts = append(opts, trial.AllowUnsafe())
	}
	return append(opts, extra...)
}

// Replay reruns trial `index` of the batch. Options are applied after the ones of the driver,
// typically to attach a consumer for the protocol events.
func (d *Driver) Replay(index uint64, opts ...trial.Option) (trial.Result, error) {
	rng, err := random.TrialPRG(d.config.Seed, index)
	if err != nil {
		return trial.Result{}, fmt.Errorf("could not derive generator of trial %d: %w", index, err)
	}
	return d.run(d.params(), rng, d.options(opts...)...)
}

// Run executes the batch and returns its report.
//
// Trials failing verification are not errors; they are recorded in the report. The returned
// error aggregates the internal invariant violations of the batch, plus the context error
// if ctx was cancelled before the batch finished. The report is returned in either case.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	d.metrics.BatchStarted(d.config.Generals, d.config.Traitors, d.Rounds(), d.config.Iterations)
	d.log.Info().
		Int("generals", d.config.Generals).
		Int("traitors", d.config.Traitors).
		Int("rounds", d.Rounds()).
		Uint64("iterations", d.config.Iterations).
		Uint64("seed", d.config.Seed).
		Uint("workers", d.config.Workers).
		Bool("unsafe", d.config.AllowUnsafe).
		Msg("starting simulation batch")

	c := newCollector(d.config.Iterations)
	pool := workerpool.New(int(d.config.Workers))
	// at most one queued trial per worker
	slots := semaphore.NewWeighted(int64(d.config.Workers))
	for index := uint64(0); index < d.config.Iterations; index++ {
		if ctx.Err() != nil {
			break
		}
		if err := slots.Acquire(ctx, 1); err != nil {
			break
		}
		index := index
		pool.Submit(func() {
			defer slots.Release(1)
			if ctx.Err() != nil {
				return
			}
			d.runTrial(index, c, cancel)
			d.progress(c.finished.Inc())
		})
	}
	pool.StopWait()

	report, err := c.report(d)
	if err != nil {
		return nil, fmt.Errorf("could not summarize batch: %w", err)
	}
	report.Elapsed = time.Since(start)

	var result *multierror.Error
	if c.aborts != nil {
		result = multierror.Append(result, c.aborts.Errors...)
	}
	if report.Completed+report.Aborted < report.Iterations {
		report.Stopped = true
		// only cancellation from the outside is an error, stopping on our own is not
		if err := ctx.Err(); err != nil && !c.stopped.Load() {
			result = multierror.Append(result, err)
		}
	}

	d.log.Info().
		Uint64("completed", report.Completed).
		Uint64("passed", report.Passed).
		Int("violations", len(report.Violations)).
		Uint64("aborted", report.Aborted).
		Bool("stopped", report.Stopped).
		Dur("elapsed", report.Elapsed).
		Msg("simulation batch finished")

	return report, result.ErrorOrNil()
}

// runTrial runs trial `index` and records its outcome. stop ends the batch.
func (d *Driver) runTrial(index uint64, c *collector, stop context.CancelFunc) {
	rng, err := random.TrialPRG(d.config.Seed, index)
	if err != nil {
		c.abort(fmt.Errorf("could not derive generator of trial %d: %w", index, err))
		return
	}

	start := time.Now()
	result, err := d.run(d.params(), rng, d.options()...)
	duration := time.Since(start)
	if err != nil {
		d.metrics.TrialAborted()
		d.log.Error().Err(err).
			Uint64("trial", index).
			Bool("invariant_violation", model.IsInvariantViolationError(err)).
			Msg("trial aborted")
		c.abort(fmt.Errorf("trial %d: %w", index, err))
		if d.config.FailFast {
			c.stopped.Store(true)
			stop()
		}
		return
	}

	d.metrics.TrialCompleted(result.Verification.Kind, result.Assignment.CommanderRole(), duration)
	d.metrics.MessagesRelayed(result.Messages)
	d.metrics.ProtocolLevels(result.Levels)
	c.complete(index, result, duration)

	if !result.Verification.OK {
		d.log.Warn().
			Uint64("trial", index).
			Str("kind", result.Verification.Kind.String()).
			Int("commander", int(result.Assignment.Commander)).
			Str("commander_role", result.Assignment.CommanderRole().String()).
			Str("order", result.Order.String()).
			Str("decisions", result.Decisions.String()).
			Msg(result.Verification.Detail)
		if d.config.StopOnViolation {
			c.stopped.Store(true)
			stop()
		}
	}
}

// collector accumulates the outcomes reported concurrently by the workers.
type collector struct {
	finished          *atomic.Uint64
	completed         *atomic.Uint64
	passed            *atomic.Uint64
	agreement         *atomic.Uint64
	validity          *atomic.Uint64
	invalid           *atomic.Uint64
	aborted           *atomic.Uint64
	traitorCommanders *atomic.Uint64
	stopped           *atomic.Bool

	mu         sync.Mutex
	violations []Violation
	messages   stats.Float64Data
	durations  stats.Float64Data
	aborts     *multierror.Error
}

func newCollector(iterations uint64) *collector {
	capacity := iterations
	// avoid huge upfront allocations for very long batches
	if capacity > 1<<16 {
		capacity = 1 << 16
	}
	return &collector{
		finished:          atomic.NewUint64(0),
		completed:         atomic.NewUint64(0),
		passed:            atomic.NewUint64(0),
		agreement:         atomic.NewUint64(0),
		validity:          atomic.NewUint64(0),
		invalid:           atomic.NewUint64(0),
		aborted:           atomic.NewUint64(0),
		traitorCommanders: atomic.NewUint64(0),
		stopped:           atomic.NewBool(false),
		messages:          make(stats.Float64Data, 0, capacity),
		durations:         make(stats.Float64Data, 0, capacity),
	}
}

func (c *collector) abort(err error) {
	c.aborted.Inc()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aborts = multierror.Append(c.aborts, err)
}

func (c *collector) complete(index uint64, result trial.Result, duration time.Duration) {
	c.completed.Inc()
	if result.Assignment.CommanderRole() == model.Traitor {
		c.traitorCommanders.Inc()
	}
	switch result.Verification.Kind {
	case model.NoViolation:
		c.passed.Inc()
	case model.AgreementViolation:
		c.agreement.Inc()
	case model.ValidityViolation:
		c.validity.Inc()
	case model.InvalidDecisions:
		c.invalid.Inc()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, float64(result.Messages))
	c.durations = append(c.durations, duration.Seconds())
	if !result.Verification.OK {
		c.violations = append(c.violations, Violation{
			Trial:  index,
			Kind:   result.Verification.Kind,
			Detail: result.Verification.Detail,
		})
	}
}

// report must only be called once all workers are done.
func (c *collector) report(d *Driver) (*Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages, err := summarize(c.messages)
	if err != nil {
		return nil, fmt.Errorf("could not summarize messages: %w", err)
	}
	durations, err := summarize(c.durations)
	if err != nil {
		return nil, fmt.Errorf("could not summarize durations: %w", err)
	}

	r := &Report{
		Generals:            d.config.Generals,
		Traitors:            d.config.Traitors,
		Rounds:              d.Rounds(),
		Seed:                d.config.Seed,
		Iterations:          d.config.Iterations,
		Completed:           c.completed.Load(),
		Passed:              c.passed.Load(),
		AgreementViolations: c.agreement.Load(),
		ValidityViolations:  c.validity.Load(),
		InvalidDecisions:    c.invalid.Load(),
		Aborted:             c.aborted.Load(),
		TraitorCommanders:   c.traitorCommanders.Load(),
		Violations:          c.violations,
		Messages:            messages,
		Durations:           durations,
	}
	r.sortViolations()
	return r, nil
}
