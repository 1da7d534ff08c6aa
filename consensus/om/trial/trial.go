// Package trial wires the OM components into the operations a driver needs: running the
// protocol for a given role assignment and running one complete, verified trial.
package trial

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/byzantine-generals/omsim/consensus/om"
	"github.com/byzantine-generals/omsim/consensus/om/aggregator"
	"github.com/byzantine-generals/omsim/consensus/om/committee"
	"github.com/byzantine-generals/omsim/consensus/om/engine"
	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/consensus/om/oracle"
	"github.com/byzantine-generals/omsim/consensus/om/verification"
	"github.com/byzantine-generals/omsim/crypto/random"
)

// Params describe the configuration of a trial.
type Params struct {
	Generals int
	Traitors int
}

// Result is everything a single trial produced.
type Result struct {
	Assignment   model.Assignment
	Order        model.Order
	Decisions    model.DecisionVector
	Verification model.VerificationResult
	Rounds       int
	Messages     uint64
	Levels       uint64
	// Draws counts the orders the oracle produced, the commander's original order included.
	Draws uint64
}

type settings struct {
	log      zerolog.Logger
	consumer om.Consumer
	rounds   int
	unsafe   bool
}

// Option configures Run and RunConsensus.
type Option func(*settings)

// WithLogger sets the logger handed to the engine. Defaults to a disabled logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// WithConsumer registers a consumer for the protocol events.
func WithConsumer(consumer om.Consumer) Option {
	return func(s *settings) {
		s.consumer = consumer
	}
}

// WithRounds fixes the OM level instead of using the number of traitors.
func WithRounds(m int) Option {
	return func(s *settings) {
		s.rounds = m
	}
}

// AllowUnsafe lifts the constraint generals > 3 * traitors, for experiments showing how
// the protocol breaks down beyond it.
func AllowUnsafe() Option {
	return func(s *settings) {
		s.unsafe = true
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		log:    zerolog.Nop(),
		rounds: engine.DeriveRounds,
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

func (s *settings) engine(o om.OrderOracle) *engine.Engine {
	opts := []engine.Option{engine.WithRounds(s.rounds)}
	if s.consumer != nil {
		opts = append(opts, engine.WithConsumer(s.consumer))
	}
	return engine.New(s.log, o, aggregator.NewMajority(), opts...)
}

func (s *settings) check(generals, traitors int) error {
	if s.unsafe {
		return committee.CheckCounts(generals, traitors)
	}
	return committee.CheckSafety(generals, traitors)
}

// RunConsensus draws the commander's order from rng and runs the protocol from the root for
// the given roles. It returns the decisions of all generals but the commander together
// with the order the commander was given.
//
// Expected errors during normal operations:
//   - model.PreconditionViolationError if the counts violate generals > 3 * traitors or do not
//     match the roles
//   - model.InvariantViolationError if the protocol bookkeeping got corrupted
func RunConsensus(generals, traitors int, roles model.Roles, commander model.ParticipantID, rng random.Rand, opts ...Option) (model.DecisionVector, model.Order, error) {
	s := newSettings(opts)
	err := s.check(generals, traitors)
	if err != nil {
		return nil, model.OrderUnset, err
	}
	if roles.Len() != generals {
		return nil, model.OrderUnset, model.NewPreconditionViolationError(generals, traitors,
			fmt.Sprintf("roles cover %d generals", roles.Len()))
	}
	if roles.CountTraitors() != traitors {
		return nil, model.OrderUnset, model.NewPreconditionViolationError(generals, traitors,
			fmt.Sprintf("roles contain %d traitors", roles.CountTraitors()))
	}

	o := oracle.NewRandom(rng)
	order := o.Order()
	decisions, err := s.engine(o).Run(model.Assignment{Commander: commander, Roles: roles}, order)
	if err != nil {
		return nil, order, err
	}
	return decisions, order, nil
}

// Run executes one complete trial: assign roles, draw the commander's order, run the protocol
// and verify the decisions. Randomness is consumed from rng in exactly that order, so a
// generator seeded identically reproduces the trial.
//
// A failed verification is not an error; it is reported in Result.Verification.
// Expected errors during normal operations:
//   - model.PreconditionViolationError if params are not a usable configuration
//   - model.InvariantViolationError if the protocol bookkeeping got corrupted
func Run(params Params, rng random.Rand, opts ...Option) (Result, error) {
	s := newSettings(opts)
	err := s.check(params.Generals, params.Traitors)
	if err != nil {
		return Result{}, err
	}

	var assignment model.Assignment
	if s.unsafe {
		assignment, err = committee.AssignRolesUnchecked(params.Generals, params.Traitors, rng)
	} else {
		assignment, err = committee.AssignRoles(params.Generals, params.Traitors, rng)
	}
	if err != nil {
		return Result{}, fmt.Errorf("could not assign roles: %w", err)
	}

	o := oracle.NewRandom(rng)
	order := o.Order()
	execution, err := s.engine(o).Execute(assignment, order)
	if err != nil {
		return Result{}, fmt.Errorf("protocol run failed for commander %d: %w", assignment.Commander, err)
	}

	return Result{
		Assignment:   assignment,
		Order:        order,
		Decisions:    execution.Decisions,
		Verification: verification.New().Verify(execution.Decisions, assignment, order),
		Rounds:       execution.Rounds,
		Messages:     execution.Messages,
		Levels:       execution.Levels,
		Draws:        o.Draws(),
	}, nil
}
