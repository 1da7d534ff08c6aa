package module

import (
	"time"

	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// SimulationMetrics tracks the progress and outcomes of a simulation batch.
type SimulationMetrics interface {
	// BatchStarted reports the configuration of a batch that is about to run.
	BatchStarted(generals int, traitors int, rounds int, iterations uint64)

	// TrialCompleted reports a trial that ran to the end, with the outcome of its verification.
	TrialCompleted(outcome model.ViolationKind, commander model.Role, duration time.Duration)

	// TrialAborted reports a trial aborted by an internal invariant violation.
	TrialAborted()

	// MessagesRelayed counts the orders sent during one trial, fabricated ones included.
	MessagesRelayed(count uint64)

	// ProtocolLevels counts the recursion levels one trial entered.
	ProtocolLevels(count uint64)
}
