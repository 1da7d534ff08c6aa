package notifications

import (
	"github.com/byzantine-generals/omsim/consensus/om"
	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// NoopConsumer is an implementation of the notifications consumer that
// doesn't do anything.
type NoopConsumer struct{}

var _ om.Consumer = (*NoopConsumer)(nil)

func NewNoopConsumer() *NoopConsumer {
	nc := &NoopConsumer{}
	return nc
}

func (*NoopConsumer) OnRelay([]model.ParticipantID, model.ParticipantID, model.ParticipantID, model.Order) {
}

func (*NoopConsumer) OnPeerMatrix([]model.ParticipantID, *model.PeerMatrix) {}

func (*NoopConsumer) OnLevelDecided([]model.ParticipantID, model.DecisionVector) {}
