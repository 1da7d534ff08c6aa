package oracle

import (
	"github.com/byzantine-generals/omsim/consensus/om"
	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/crypto/random"
)

// Random is an om.OrderOracle drawing fair coin flips from an injected generator.
// It is not safe for concurrent use, like the generator it wraps.
type Random struct {
	rng   random.Rand
	draws uint64
}

var _ om.OrderOracle = (*Random)(nil)

func NewRandom(rng random.Rand) *Random {
	return &Random{rng: rng}
}

// Order returns Attack or Retreat with probability 1/2 each.
func (r *Random) Order() model.Order {
	r.draws++
	return model.OrderFromBool(r.rng.Bool())
}

// Draws returns how many orders the oracle produced so far.
func (r *Random) Draws() uint64 {
	return r.draws
}
