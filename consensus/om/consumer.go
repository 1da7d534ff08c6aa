package om

import "github.com/byzantine-generals/omsim/consensus/om/model"

// Consumer receives the events of one engine run, synchronously and in protocol order.
// Implementations must not retain or modify the passed slices and matrices.
type Consumer interface {
	// OnRelay is called for every message a participant sends while acting as a (sub-)commander,
	// including the terminal peer relay round. chain is the command chain above the sender.
	OnRelay(chain []model.ParticipantID, sender model.ParticipantID, receiver model.ParticipantID, order model.Order)

	// OnPeerMatrix is called once per base case with the completed terminal relay matrix.
	OnPeerMatrix(chain []model.ParticipantID, matrix *model.PeerMatrix)

	// OnLevelDecided is called whenever a recursion level resolved its decisions.
	OnLevelDecided(chain []model.ParticipantID, decisions model.DecisionVector)
}
