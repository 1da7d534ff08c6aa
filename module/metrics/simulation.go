package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/module"
)

const (
	parameterGenerals   = "generals"
	parameterTraitors   = "traitors"
	parameterRounds     = "rounds"
	parameterIterations = "iterations"
)

// SimulationCollector exposes the progress of a simulation batch to prometheus.
type SimulationCollector struct {
	parameters      *prometheus.GaugeVec
	trials          *prometheus.CounterVec
	aborted         prometheus.Counter
	trialDuration   prometheus.Histogram
	messagesRelayed prometheus.Counter
	protocolLevels  prometheus.Counter
}

var _ module.SimulationMetrics = (*SimulationCollector)(nil)

func NewSimulationCollector(registerer prometheus.Registerer) *SimulationCollector {
	r := NewRegisterer(registerer)
	return &SimulationCollector{
		parameters: r.RegisterNewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespaceSimulation,
			Subsystem: subsystemDriver,
			Name:      "parameters",
			Help:      "configuration of the running batch",
		}, []string{"parameter"}),
		trials: r.RegisterNewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceSimulation,
			Subsystem: subsystemDriver,
			Name:      "trials_total",
			Help:      "number of completed trials by verification outcome and commander role",
		}, []string{LabelOutcome, LabelCommanderRole}),
		aborted: r.RegisterNewCounter(prometheus.CounterOpts{
			Namespace: namespaceSimulation,
			Subsystem: subsystemDriver,
			Name:      "trials_aborted_total",
			Help:      "number of trials aborted by an internal invariant violation",
		}),
		trialDuration: r.RegisterNewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceSimulation,
			Subsystem: subsystemDriver,
			Name:      "trial_duration_seconds",
			Help:      "duration of a single trial from role assignment to verification",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		messagesRelayed: r.RegisterNewCounter(prometheus.CounterOpts{
			Namespace: namespaceSimulation,
			Subsystem: subsystemEngine,
			Name:      "messages_relayed_total",
			Help:      "number of orders sent between generals, fabricated ones included",
		}),
		protocolLevels: r.RegisterNewCounter(prometheus.CounterOpts{
			Namespace: namespaceSimulation,
			Subsystem: subsystemEngine,
			Name:      "protocol_levels_total",
			Help:      "number of recursion levels entered by the protocol",
		}),
	}
}

func (sc *SimulationCollector) BatchStarted(generals int, traitors int, rounds int, iterations uint64) {
	sc.parameters.WithLabelValues(parameterGenerals).Set(float64(generals))
	sc.parameters.WithLabelValues(parameterTraitors).Set(float64(traitors))
	sc.parameters.WithLabelValues(parameterRounds).Set(float64(rounds))
	sc.parameters.WithLabelValues(parameterIterations).Set(float64(iterations))
}

func (sc *SimulationCollector) TrialCompleted(outcome model.ViolationKind, commander model.Role, duration time.Duration) {
	sc.trials.WithLabelValues(outcome.String(), commander.String()).Inc()
	sc.trialDuration.Observe(duration.Seconds())
}

func (sc *SimulationCollector) TrialAborted() {
	sc.aborted.Inc()
}

func (sc *SimulationCollector) MessagesRelayed(count uint64) {
	sc.messagesRelayed.Add(float64(count))
}

func (sc *SimulationCollector) ProtocolLevels(count uint64) {
	sc.protocolLevels.Add(float64(count))
}
