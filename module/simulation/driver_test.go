package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"

	"github.com/byzantine-generals/omsim/consensus/om/engine"
	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/consensus/om/trial"
	"github.com/byzantine-generals/omsim/crypto/random"
	"github.com/byzantine-generals/omsim/module/metrics"
	"github.com/byzantine-generals/omsim/utils/unittest"
)

type DriverSuite struct {
	suite.Suite
	config Config
}

func TestDriver(t *testing.T) {
	suite.Run(t, new(DriverSuite))
}

func (s *DriverSuite) SetupTest() {
	s.config = Config{
		Generals:   4,
		Traitors:   1,
		Rounds:     engine.DeriveRounds,
		Iterations: 200,
		Seed:       17,
		Workers:    4,
	}
}

// unsafe switches to a configuration below the safety threshold where violations happen.
func (s *DriverSuite) unsafe() {
	s.config.Generals = 3
	s.config.AllowUnsafe = true
}

func (s *DriverSuite) driver(opts ...Option) *Driver {
	d, err := NewDriver(unittest.Logger(), s.config, opts...)
	s.Require().NoError(err)
	return d
}

func (s *DriverSuite) TestSafeBatch() {
	registry := prometheus.NewRegistry()
	collector := metrics.NewSimulationCollector(registry)
	finished := atomic.NewUint64(0)

	report, err := s.driver(WithMetrics(collector), WithProgress(func(uint64) { finished.Inc() })).Run(context.Background())
	s.Require().NoError(err)

	s.Assert().Equal(uint64(200), report.Completed)
	s.Assert().Equal(uint64(200), report.Passed)
	s.Assert().Equal(1, report.Rounds)
	s.Assert().False(report.Violated())
	s.Assert().False(report.Stopped)
	s.Assert().Equal(1.0, report.PassRate())
	s.Assert().Equal(uint64(200), finished.Load())
	s.Assert().Greater(report.TraitorCommanders, uint64(0))
	// n=4 with OM(1): 3 orders from the commander and 6 relayed
	s.Assert().Equal(9.0, report.Messages.Mean)
	s.Assert().Equal(9.0, report.Messages.Max)

	count, err := testutil.GatherAndCount(registry, "omsim_driver_trials_total")
	s.Require().NoError(err)
	s.Assert().Equal(2, count, "one series per commander role")
	count, err = testutil.GatherAndCount(registry, "omsim_engine_messages_relayed_total")
	s.Require().NoError(err)
	s.Assert().Equal(1, count)
}

// The violations found below the threshold do not depend on the number of workers.
func (s *DriverSuite) TestWorkerIndependence() {
	s.unsafe()
	s.config.Workers = 1
	sequential, err := s.driver().Run(context.Background())
	s.Require().NoError(err)

	s.config.Workers = 8
	parallel, err := s.driver().Run(context.Background())
	s.Require().NoError(err)

	s.Require().True(sequential.Violated())
	s.Assert().Equal(sequential.Violations, parallel.Violations)
	s.Assert().Equal(sequential.Passed, parallel.Passed)
	s.Assert().Equal(sequential.TraitorCommanders, parallel.TraitorCommanders)
	s.Assert().Equal(sequential.Messages, parallel.Messages)
}

func (s *DriverSuite) TestReplay() {
	s.unsafe()
	d := s.driver()
	report, err := d.Run(context.Background())
	s.Require().NoError(err)
	s.Require().True(report.Violated())

	for _, violation := range report.Violations {
		result, err := d.Replay(violation.Trial)
		s.Require().NoError(err)
		s.Assert().False(result.Verification.OK)
		s.Assert().Equal(violation.Kind, result.Verification.Kind)

		rng, err := random.TrialPRG(s.config.Seed, violation.Trial)
		s.Require().NoError(err)
		direct, err := trial.Run(trial.Params{Generals: 3, Traitors: 1}, rng, trial.AllowUnsafe())
		s.Require().NoError(err)
		s.Assert().Equal(direct.Decisions, result.Decisions)
	}
}

func (s *DriverSuite) TestStopOnViolation() {
	s.unsafe()
	s.config.Workers = 1
	s.config.Iterations = 1000
	s.config.StopOnViolation = true

	report, err := s.driver().Run(context.Background())
	s.Require().NoError(err)
	s.Assert().True(report.Stopped)
	s.Assert().Len(report.Violations, 1)
	s.Assert().Less(report.Completed, uint64(1000))
}

func (s *DriverSuite) TestCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var (
		report *Report
		err    error
	)
	unittest.RequireReturnsBefore(s.T(), func() {
		report, err = s.driver().Run(ctx)
	}, time.Second, "cancelled batch did not return")
	s.Require().ErrorIs(err, context.Canceled)
	s.Assert().True(report.Stopped)
	s.Assert().Equal(uint64(0), report.Completed)
}

// No more trials are in flight than there are workers, and a cancelled batch returns
// once the running trials finish.
func (s *DriverSuite) TestBoundedSubmission() {
	s.config.Workers = 2
	s.config.Iterations = 1000

	inFlight := atomic.NewInt64(0)
	peak := atomic.NewInt64(0)
	started := atomic.NewUint64(0)
	release := make(chan struct{})
	blocking := func(params trial.Params, rng random.Rand, opts ...trial.Option) (trial.Result, error) {
		current := inFlight.Inc()
		defer inFlight.Dec()
		for {
			old := peak.Load()
			if current <= old || peak.CompareAndSwap(old, current) {
				break
			}
		}
		started.Inc()
		<-release
		return trial.Run(params, rng, opts...)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := s.driver()
	d.run = blocking

	var (
		report *Report
		err    error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		report, err = d.Run(ctx)
	}()

	s.Require().Eventually(func() bool { return started.Load() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	close(release)
	unittest.RequireClosedBefore(s.T(), done, time.Second, "cancelled batch did not return")

	s.Require().ErrorIs(err, context.Canceled)
	s.Assert().True(report.Stopped)
	s.Assert().LessOrEqual(peak.Load(), int64(2))
	s.Assert().Equal(started.Load(), report.Completed)
	s.Assert().LessOrEqual(report.Completed, uint64(4))
}

func (s *DriverSuite) TestInvariantViolations() {
	s.config.Workers = 1
	s.config.Iterations = 10
	failing := func(params trial.Params, rng random.Rand, opts ...trial.Option) (trial.Result, error) {
		return trial.Result{}, model.NewInvariantViolationErrorf("corrupted")
	}

	d := s.driver()
	d.run = failing
	report, err := d.Run(context.Background())
	s.Require().Error(err)
	s.Assert().True(model.IsInvariantViolationError(err))
	s.Assert().Equal(uint64(10), report.Aborted)
	s.Assert().False(report.Stopped)

	s.config.FailFast = true
	d = s.driver()
	d.run = failing
	report, err = d.Run(context.Background())
	s.Require().Error(err)
	s.Assert().True(model.IsInvariantViolationError(err))
	s.Assert().False(errors.Is(err, context.Canceled))
	s.Assert().Equal(uint64(1), report.Aborted)
	s.Assert().True(report.Stopped)
}

func TestNewDriver_Preconditions(t *testing.T) {
	valid := Config{Generals: 4, Traitors: 1, Rounds: engine.DeriveRounds, Iterations: 1, Workers: 1}

	config := valid
	config.Generals = 3
	_, err := NewDriver(unittest.Logger(), config)
	assert.True(t, model.IsPreconditionViolationError(err))

	config.AllowUnsafe = true
	_, err = NewDriver(unittest.Logger(), config)
	assert.NoError(t, err)

	// OM(traitors) needs traitors <= generals-1
	config = Config{Generals: 3, Traitors: 3, Rounds: engine.DeriveRounds, Iterations: 5, Workers: 1, AllowUnsafe: true}
	_, err = NewDriver(unittest.Logger(), config)
	assert.True(t, model.IsPreconditionViolationError(err))

	config.Rounds = 2
	d, err := NewDriver(unittest.Logger(), config)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Rounds())

	config = valid
	config.Workers = 0
	_, err = NewDriver(unittest.Logger(), config)
	assert.True(t, model.IsPreconditionViolationError(err))

	config = valid
	config.Rounds = 4
	_, err = NewDriver(unittest.Logger(), config)
	assert.True(t, model.IsPreconditionViolationError(err))

	config.Rounds = 3
	d, err = NewDriver(unittest.Logger(), config)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Rounds())
}
