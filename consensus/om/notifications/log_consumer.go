package notifications

import (
	"github.com/rs/zerolog"

	"github.com/byzantine-generals/omsim/consensus/om"
	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// LogConsumer is an implementation of the notifications consumer that logs a
// message for each event, at trace level. Meant for replaying single trials:
// the number of events grows exponentially with the number of rounds.
type LogConsumer struct {
	log zerolog.Logger
}

var _ om.Consumer = (*LogConsumer)(nil)

func NewLogConsumer(log zerolog.Logger) *LogConsumer {
	lc := &LogConsumer{
		log: log.With().Str("component", "om_notifications").Logger(),
	}
	return lc
}

func (lc *LogConsumer) OnRelay(chain []model.ParticipantID, sender model.ParticipantID, receiver model.ParticipantID, order model.Order) {
	lc.log.Trace().
		Ints("chain", chainInts(chain)).
		Int("sender", int(sender)).
		Int("receiver", int(receiver)).
		Str("order", order.String()).
		Msg("order relayed")
}

func (lc *LogConsumer) OnPeerMatrix(chain []model.ParticipantID, matrix *model.PeerMatrix) {
	lc.log.Trace().
		Ints("chain", chainInts(chain)).
		Int("size", matrix.Size()).
		Str("matrix", matrix.String()).
		Msg("terminal relay round completed")
}

func (lc *LogConsumer) OnLevelDecided(chain []model.ParticipantID, decisions model.DecisionVector) {
	lc.log.Trace().
		Ints("chain", chainInts(chain)).
		Int("depth", len(chain)).
		Str("decisions", decisions.String()).
		Msg("level decided")
}

func chainInts(chain []model.ParticipantID) []int {
	ids := make([]int, len(chain))
	for i, id := range chain {
		ids[i] = int(id)
	}
	return ids
}
