package om

import "github.com/byzantine-generals/omsim/consensus/om/model"

// Aggregator resolves the orders reported to one participant into its decision.
// Implementations are pure and must never return model.OrderUnset.
type Aggregator interface {
	Aggregate(values []model.Order) model.Order
}
