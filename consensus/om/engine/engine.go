// Package engine implements the recursive relay protocol OM(m).
//
// Traitors in this simulation fabricate uniformly random values, drawn independently per
// recipient, instead of choosing the worst case for the loyal generals. A run that passes
// therefore shows the protocol holding against random traitors, which is weaker evidence than
// the formal guarantee against arbitrary traitors.
package engine

import (
	"github.com/rs/zerolog"

	"github.com/byzantine-generals/omsim/consensus/om"
	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/consensus/om/notifications"
)

// DeriveRounds makes the engine run OM(t) where t is the number of traitors in the assignment.
const DeriveRounds = -1

// Engine runs OM(m) for one assignment at a time. The engine keeps no state between runs;
// the randomness it consumes comes from the injected oracle, so an engine is only as
// concurrency-safe as its oracle.
type Engine struct {
	log        zerolog.Logger
	oracle     om.OrderOracle
	aggregator om.Aggregator
	consumer   om.Consumer
	rounds     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRounds fixes the OM level m instead of deriving it from the traitor count.
func WithRounds(m int) Option {
	return func(e *Engine) {
		e.rounds = m
	}
}

// WithConsumer registers a consumer for the protocol events of every run.
func WithConsumer(consumer om.Consumer) Option {
	return func(e *Engine) {
		e.consumer = consumer
	}
}

func New(log zerolog.Logger, oracle om.OrderOracle, aggregator om.Aggregator, opts ...Option) *Engine {
	e := &Engine{
		log:        log.With().Str("component", "om_engine").Logger(),
		oracle:     oracle,
		aggregator: aggregator,
		consumer:   notifications.NewNoopConsumer(),
		rounds:     DeriveRounds,
	}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// Execution is the outcome of one protocol run.
type Execution struct {
	// Decisions holds the decision of every general except the root commander.
	Decisions model.DecisionVector
	// Rounds is the OM level m the run used.
	Rounds int
	// Messages counts every order sent, including fabricated ones.
	Messages uint64
	// Levels counts the recursion levels entered, i.e. the protocol instances run.
	Levels uint64
}

// Run executes OM(m) with the given assignment, the root commander holding `order`,
// and returns the decision of every general other than the commander.
//
// Expected errors during normal operations:
//   - model.PreconditionViolationError if the assignment or order is unusable
//   - model.InvariantViolationError if the protocol bookkeeping got corrupted; this is a defect
func (e *Engine) Run(assignment model.Assignment, order model.Order) (model.DecisionVector, error) {
	execution, err := e.Execute(assignment, order)
	if err != nil {
		return nil, err
	}
	return execution.Decisions, nil
}

// Execute is Run returning the run statistics along with the decisions.
func (e *Engine) Execute(assignment model.Assignment, order model.Order) (*Execution, error) {
	n := assignment.Roles.Len()
	traitors := assignment.Roles.CountTraitors()
	err := assignment.Validate()
	if err != nil {
		return nil, model.NewPreconditionViolationError(n, traitors, err.Error())
	}
	if !order.Valid() {
		return nil, model.NewPreconditionViolationError(n, traitors, "commander order must be attack or retreat, got "+order.String())
	}
	rounds := e.rounds
	if rounds == DeriveRounds {
		rounds = traitors
	}
	if rounds < 0 || rounds > n-1 {
		return nil, model.NewPreconditionViolationError(n, traitors, "rounds must be within [0, generals-1]")
	}

	p := &protocol{
		engine: e,
		roles:  assignment.Roles,
		n:      n,
		chain:  NewChain(n),
	}
	decisions, err := p.root(assignment.Commander, order, rounds)
	if err != nil {
		return nil, err
	}
	if p.chain.Len() != 0 {
		return nil, model.NewInvariantViolationErrorf("command chain %v not empty after run", p.chain.Path())
	}
	for i := 0; i < n; i++ {
		id := model.ParticipantID(i)
		if id != assignment.Commander && !decisions.At(id).Valid() {
			return nil, model.NewInvariantViolationErrorf("general %d ended without decision", id)
		}
	}

	e.log.Debug().
		Int("generals", n).
		Int("traitors", traitors).
		Int("rounds", rounds).
		Int("commander", int(assignment.Commander)).
		Str("commander_role", assignment.CommanderRole().String()).
		Str("order", order.String()).
		Uint64("messages", p.messages).
		Uint64("levels", p.levels).
		Str("decisions", decisions.String()).
		Msg("protocol run completed")

	return &Execution{
		Decisions: decisions,
		Rounds:    rounds,
		Messages:  p.messages,
		Levels:    p.levels,
	}, nil
}
