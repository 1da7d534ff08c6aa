package metrics

import (
	"time"

	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/module"
)

type NoopCollector struct{}

var _ module.SimulationMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) BatchStarted(int, int, int, uint64)                            {}
func (nc *NoopCollector) TrialCompleted(model.ViolationKind, model.Role, time.Duration) {}
func (nc *NoopCollector) TrialAborted()                                                 {}
func (nc *NoopCollector) MessagesRelayed(uint64)                                        {}
func (nc *NoopCollector) ProtocolLevels(uint64)                                         {}
