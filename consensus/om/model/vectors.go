package model

import (
	"strings"
)

// setOnce writes o into cells[id]. Each cell may be written exactly once and only with a
// valid order; anything else is a bookkeeping defect.
func setOnce(cells []Order, id ParticipantID, o Order) error {
	if id < 0 || int(id) >= len(cells) {
		return NewInvariantViolationErrorf("participant %d outside of [0,%d)", id, len(cells))
	}
	if !o.Valid() {
		return NewInvariantViolationErrorf("writing %v for participant %d", o, id)
	}
	if cells[id] != OrderUnset {
		return NewInvariantViolationErrorf("cell of participant %d already holds %v", id, cells[id])
	}
	cells[id] = o
	return nil
}

// MessageVector holds, per participant, the order the current commander sent it.
// Cells of participants in the command chain are left unset.
type MessageVector []Order

// NewMessageVector returns an all-unset vector for n participants.
func NewMessageVector(n int) MessageVector {
	return make(MessageVector, n)
}

// Set records the order sent to participant id.
// Returns InvariantViolationError if the cell was already written or o is not a valid order.
func (v MessageVector) Set(id ParticipantID, o Order) error {
	return setOnce(v, id, o)
}

// At returns the order sent to participant id.
func (v MessageVector) At(id ParticipantID) Order {
	return v[id]
}

func (v MessageVector) String() string {
	return vectorString(v)
}

// DecisionVector holds one resolved order per participant outside the command chain.
type DecisionVector []Order

// NewDecisionVector returns an all-unset vector for n participants.
func NewDecisionVector(n int) DecisionVector {
	return make(DecisionVector, n)
}

// Set records the decision of participant id.
// Returns InvariantViolationError if the cell was already written or o is not a valid order.
func (v DecisionVector) Set(id ParticipantID, o Order) error {
	return setOnce(v, id, o)
}

// At returns the decision of participant id, OrderUnset if it has none.
func (v DecisionVector) At(id ParticipantID) Order {
	return v[id]
}

func (v DecisionVector) String() string {
	return vectorString(v)
}

// PeerMatrix is the sender x receiver table of the terminal relay round.
// Only cells between two distinct participants outside the command chain are written.
type PeerMatrix struct {
	n     int
	cells []Order
}

// NewPeerMatrix returns an all-unset n x n matrix.
func NewPeerMatrix(n int) *PeerMatrix {
	return &PeerMatrix{
		n:     n,
		cells: make([]Order, n*n),
	}
}

// Size returns the number of participants the matrix is dimensioned for.
func (m *PeerMatrix) Size() int {
	return m.n
}

// Set records the order relayed by sender to receiver.
// Returns InvariantViolationError on a double write, an invalid order or out of range indices.
func (m *PeerMatrix) Set(sender, receiver ParticipantID, o Order) error {
	if receiver < 0 || int(receiver) >= m.n {
		return NewInvariantViolationErrorf("receiver %d outside of [0,%d)", receiver, m.n)
	}
	if sender < 0 || int(sender) >= m.n {
		return NewInvariantViolationErrorf("sender %d outside of [0,%d)", sender, m.n)
	}
	return setOnce(m.row(sender), receiver, o)
}

// At returns the order relayed by sender to receiver.
func (m *PeerMatrix) At(sender, receiver ParticipantID) Order {
	return m.cells[int(sender)*m.n+int(receiver)]
}

// Column returns everything receiver was sent, indexed by sender. Unwritten cells are unset.
func (m *PeerMatrix) Column(receiver ParticipantID) []Order {
	column := make([]Order, m.n)
	for sender := 0; sender < m.n; sender++ {
		column[sender] = m.At(ParticipantID(sender), receiver)
	}
	return column
}

func (m *PeerMatrix) row(sender ParticipantID) []Order {
	start := int(sender) * m.n
	return m.cells[start : start+m.n]
}

// String renders one line per sender, one letter per receiver.
func (m *PeerMatrix) String() string {
	var b strings.Builder
	for sender := 0; sender < m.n; sender++ {
		if sender > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(vectorString(m.row(ParticipantID(sender))))
	}
	return b.String()
}

func vectorString(cells []Order) string {
	var b strings.Builder
	for _, o := range cells {
		b.WriteString(o.Short())
	}
	return b.String()
}
