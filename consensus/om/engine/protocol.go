package engine

import (
	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// protocol is the state of a single run: the roles, the command chain and counters.
type protocol struct {
	engine   *Engine
	roles    model.Roles
	n        int
	chain    *Chain
	messages uint64
	levels   uint64
}

// root runs OM(m) with `commander` sending `order`.
//
// The base case of consensus already contains one round of peer relaying, so OM(m) for m >= 1
// starts the recursion with m-1 remaining rounds. OM(0) has no relaying at all: every
// lieutenant decides what the commander sent it.
func (p *protocol) root(commander model.ParticipantID, order model.Order, m int) (model.DecisionVector, error) {
	messages, err := p.send(commander, order)
	if err != nil {
		return nil, err
	}

	var decisions model.DecisionVector
	err = p.chain.Descend(commander, func() error {
		if m == 0 {
			decisions, err = p.direct(messages)
			return err
		}
		decisions, err = p.consensus(m-1, messages)
		return err
	})
	if err != nil {
		return nil, err
	}
	return decisions, nil
}

// consensus runs one level of the protocol. `messages` holds what the innermost commander of
// the chain sent to every participant outside the chain; the returned vector holds, for each
// of them, its resolved view of that commander's order.
func (p *protocol) consensus(rounds int, messages model.MessageVector) (model.DecisionVector, error) {
	p.levels++
	if rounds == 0 {
		return p.exchange(messages)
	}

	// reports[q] is what sub-commander q's sub-protocol made everybody decide;
	// nil for chain members
	reports := make([]model.DecisionVector, p.n)
	for i := 0; i < p.n; i++ {
		q := model.ParticipantID(i)
		if p.chain.Contains(q) {
			continue
		}
		received := messages.At(q)
		forwarded, err := p.send(q, received)
		if err != nil {
			return nil, err
		}

		var report model.DecisionVector
		err = p.chain.Descend(q, func() error {
			var err error
			report, err = p.consensus(rounds-1, forwarded)
			return err
		})
		if err != nil {
			return nil, err
		}
		// q's own slot is what it was told directly, not an aggregate
		err = report.Set(q, received)
		if err != nil {
			return nil, err
		}
		reports[q] = report
	}

	decisions := model.NewDecisionVector(p.n)
	values := make([]model.Order, 0, p.n)
	for i := 0; i < p.n; i++ {
		receiver := model.ParticipantID(i)
		if p.chain.Contains(receiver) {
			continue
		}
		values = values[:0]
		for q, report := range reports {
			if report == nil {
				continue
			}
			value := report.At(receiver)
			if !value.Valid() {
				return nil, model.NewInvariantViolationErrorf("sub-commander %d reported no value for %d", q, receiver)
			}
			values = append(values, value)
		}
		err := decisions.Set(receiver, p.engine.aggregator.Aggregate(values))
		if err != nil {
			return nil, err
		}
	}
	p.engine.consumer.OnLevelDecided(p.chain.Path(), decisions)
	return decisions, nil
}

// exchange is the base case: every participant outside the chain relays the order it received
// to every other one, and each receiver takes the majority of the relayed orders and its own.
func (p *protocol) exchange(messages model.MessageVector) (model.DecisionVector, error) {
	matrix := model.NewPeerMatrix(p.n)
	for i := 0; i < p.n; i++ {
		sender := model.ParticipantID(i)
		if p.chain.Contains(sender) {
			continue
		}
		for j := 0; j < p.n; j++ {
			receiver := model.ParticipantID(j)
			if receiver == sender || p.chain.Contains(receiver) {
				continue
			}
			order, err := p.outgoing(sender, messages.At(sender))
			if err != nil {
				return nil, err
			}
			err = matrix.Set(sender, receiver, order)
			if err != nil {
				return nil, err
			}
			p.relayed(sender, receiver, order)
		}
	}
	p.engine.consumer.OnPeerMatrix(p.chain.Path(), matrix)

	decisions := model.NewDecisionVector(p.n)
	for j := 0; j < p.n; j++ {
		receiver := model.ParticipantID(j)
		if p.chain.Contains(receiver) {
			continue
		}
		// the receiver's own cell is never relayed; it holds what the commander sent it.
		// Cells of chain members stay unset and are ignored by the aggregator.
		values := matrix.Column(receiver)
		values[receiver] = messages.At(receiver)
		err := decisions.Set(receiver, p.engine.aggregator.Aggregate(values))
		if err != nil {
			return nil, err
		}
	}
	p.engine.consumer.OnLevelDecided(p.chain.Path(), decisions)
	return decisions, nil
}

// direct is OM(0): every lieutenant decides the order it received.
func (p *protocol) direct(messages model.MessageVector) (model.DecisionVector, error) {
	p.levels++
	decisions := model.NewDecisionVector(p.n)
	for i := 0; i < p.n; i++ {
		id := model.ParticipantID(i)
		if p.chain.Contains(id) {
			continue
		}
		err := decisions.Set(id, messages.At(id))
		if err != nil {
			return nil, err
		}
	}
	p.engine.consumer.OnLevelDecided(p.chain.Path(), decisions)
	return decisions, nil
}

// send produces the message vector `sender` addresses to everybody outside the chain, while
// holding the order `held`.
func (p *protocol) send(sender model.ParticipantID, held model.Order) (model.MessageVector, error) {
	messages := model.NewMessageVector(p.n)
	for i := 0; i < p.n; i++ {
		receiver := model.ParticipantID(i)
		if receiver == sender || p.chain.Contains(receiver) {
			continue
		}
		order, err := p.outgoing(sender, held)
		if err != nil {
			return nil, err
		}
		err = messages.Set(receiver, order)
		if err != nil {
			return nil, err
		}
		p.relayed(sender, receiver, order)
	}
	return messages, nil
}

// outgoing returns the order `sender` sends to one recipient: loyal generals forward what they
// hold, traitors draw a fresh value for every recipient.
func (p *protocol) outgoing(sender model.ParticipantID, held model.Order) (model.Order, error) {
	switch p.roles[sender] {
	case model.Loyal:
		return held, nil
	case model.Traitor:
		return p.engine.oracle.Order(), nil
	default:
		return model.OrderUnset, model.NewInvariantViolationErrorf("general %d has undefined %v", sender, p.roles[sender])
	}
}

func (p *protocol) relayed(sender, receiver model.ParticipantID, order model.Order) {
	p.messages++
	p.engine.consumer.OnRelay(p.chain.Path(), sender, receiver, order)
}
