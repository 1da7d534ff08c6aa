package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byzantine-generals/omsim/consensus/om/model"
)

func TestSimulationCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewSimulationCollector(registry)

	collector.BatchStarted(7, 2, 2, 100)
	collector.TrialCompleted(model.NoViolation, model.Loyal, time.Millisecond)
	collector.TrialCompleted(model.NoViolation, model.Loyal, time.Millisecond)
	collector.TrialCompleted(model.AgreementViolation, model.Traitor, time.Millisecond)
	collector.TrialAborted()
	collector.MessagesRelayed(156)
	collector.MessagesRelayed(156)
	collector.ProtocolLevels(7)

	assert.Equal(t, 7.0, testutil.ToFloat64(collector.parameters.WithLabelValues(parameterGenerals)))
	assert.Equal(t, 100.0, testutil.ToFloat64(collector.parameters.WithLabelValues(parameterIterations)))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.trials.WithLabelValues("none", "loyal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.trials.WithLabelValues("agreement", "traitor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.aborted))
	assert.Equal(t, 312.0, testutil.ToFloat64(collector.messagesRelayed))
	assert.Equal(t, 7.0, testutil.ToFloat64(collector.protocolLevels))

	count, err := testutil.GatherAndCount(registry, "omsim_driver_trial_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// a second collector on the same registry is rejected
func TestSimulationCollector_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewSimulationCollector(registry)
	assert.Panics(t, func() { NewSimulationCollector(registry) })
}
