package om

import "github.com/byzantine-generals/omsim/consensus/om/model"

// OrderOracle supplies fresh orders. Every call returns Attack or Retreat with probability
// 1/2, independently of previous calls. It provides the commander's original order and every
// value a traitor fabricates.
type OrderOracle interface {
	Order() model.Order
}
