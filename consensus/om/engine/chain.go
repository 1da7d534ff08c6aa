package engine

import (
	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// Chain is the command chain: the participants that acted as commander on the path from the
// root of the protocol down to the current recursion level, in the order they took command.
// Membership tests are O(1). The chain is only mutated through Descend, which guarantees that
// every entry is removed again when the level that added it returns, on every exit path.
//
// Not safe for concurrent use; each protocol run owns its chain.
type Chain struct {
	path    []model.ParticipantID
	members []bool
}

// NewChain returns an empty chain for n participants.
func NewChain(n int) *Chain {
	return &Chain{
		path:    make([]model.ParticipantID, 0, n),
		members: make([]bool, n),
	}
}

// Contains returns true if id is currently in the chain.
func (c *Chain) Contains(id model.ParticipantID) bool {
	return c.members[id]
}

// Len returns the number of commanders in the chain.
func (c *Chain) Len() int {
	return len(c.path)
}

// Path returns the chain from the root commander to the innermost sub-commander.
// The returned slice is only valid until the next mutation and must not be modified.
func (c *Chain) Path() []model.ParticipantID {
	return c.path
}

// Descend pushes id, runs fn and pops id again, also when fn fails or panics.
// Returns model.InvariantViolationError if id already is in the chain or the chain
// was not restored by fn; otherwise the error of fn.
func (c *Chain) Descend(id model.ParticipantID, fn func() error) (err error) {
	err = c.push(id)
	if err != nil {
		return err
	}
	defer func() {
		popErr := c.pop(id)
		if err == nil {
			err = popErr
		}
	}()
	return fn()
}

func (c *Chain) push(id model.ParticipantID) error {
	if id < 0 || int(id) >= len(c.members) {
		return model.NewInvariantViolationErrorf("commander %d outside of [0,%d)", id, len(c.members))
	}
	if c.members[id] {
		return model.NewInvariantViolationErrorf("participant %d re-entered the command chain %v", id, c.path)
	}
	c.members[id] = true
	c.path = append(c.path, id)
	return nil
}

func (c *Chain) pop(id model.ParticipantID) error {
	last := len(c.path) - 1
	if last < 0 || c.path[last] != id {
		// the chain is corrupted beyond repair; still drop id so that siblings do not see it
		c.members[id] = false
		return model.NewInvariantViolationErrorf("popping %d but command chain is %v", id, c.path)
	}
	c.members[id] = false
	c.path = c.path[:last]
	return nil
}
