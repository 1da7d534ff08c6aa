package committee

import (
	"fmt"

	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/crypto/random"
)

// AssignRoles picks the traitors and the commander of a trial.
//
// Exactly `traitors` distinct generals are sampled uniformly without replacement and marked
// Traitor, all others are Loyal. The commander is then drawn uniformly from all generals,
// independently of the roles. Randomness is consumed in that order.
//
// Returns model.PreconditionViolationError if generals <= 3 * traitors.
func AssignRoles(generals, traitors int, rng random.Rand) (model.Assignment, error) {
	err := CheckSafety(generals, traitors)
	if err != nil {
		return model.Assignment{}, err
	}
	return assign(generals, traitors, rng)
}

// AssignRolesUnchecked is AssignRoles without the safety constraint. It exists to reproduce
// the failures OM exhibits once the constraint is broken (e.g. generals == 3 * traitors);
// counts still have to be sane.
func AssignRolesUnchecked(generals, traitors int, rng random.Rand) (model.Assignment, error) {
	err := CheckCounts(generals, traitors)
	if err != nil {
		return model.Assignment{}, err
	}
	return assign(generals, traitors, rng)
}

func assign(generals, traitors int, rng random.Rand) (model.Assignment, error) {
	traitorIDs, err := rng.SubPermutation(generals, traitors)
	if err != nil {
		return model.Assignment{}, fmt.Errorf("could not sample traitors: %w", err)
	}

	roles := make(model.Roles, generals)
	for i := range roles {
		roles[i] = model.Loyal
	}
	for _, id := range traitorIDs {
		roles[id] = model.Traitor
	}

	commander := model.ParticipantID(rng.UintN(uint64(generals)))
	return model.Assignment{
		Commander: commander,
		Roles:     roles,
	}, nil
}
