package aggregator

import (
	"github.com/byzantine-generals/omsim/consensus/om"
	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// Majority resolves reports by simple majority. Attack wins only with strictly more
// votes than Retreat; ties, including the empty input, resolve to Retreat.
// Unset values are ignored.
type Majority struct{}

var _ om.Aggregator = Majority{}

func NewMajority() Majority {
	return Majority{}
}

func (Majority) Aggregate(values []model.Order) model.Order {
	attack, retreat := Count(values)
	if attack > retreat {
		return model.Attack
	}
	return model.Retreat
}

// Count returns the number of Attack and Retreat values.
func Count(values []model.Order) (attack int, retreat int) {
	for _, v := range values {
		switch v {
		case model.Attack:
			attack++
		case model.Retreat:
			retreat++
		case model.OrderUnset:
		}
	}
	return attack, retreat
}
