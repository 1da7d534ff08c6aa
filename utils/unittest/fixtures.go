package unittest

import (
	"encoding/binary"

	"github.com/stretchr/testify/require"

	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/crypto/random"
)

// PRGFixture returns a deterministic generator derived from seed.
// It accepts both *testing.T and *rapid.T.
func PRGFixture(t require.TestingT, seed uint64) random.Rand {
	key := make([]byte, random.Chacha20SeedLen)
	binary.LittleEndian.PutUint64(key, seed)
	rng, err := random.NewChacha20(key, []byte("fixture"))
	require.NoError(t, err)
	return rng
}

// RolesFixture returns n loyal generals except for the given traitors.
func RolesFixture(n int, traitors ...model.ParticipantID) model.Roles {
	roles := make(model.Roles, n)
	for i := range roles {
		roles[i] = model.Loyal
	}
	for _, id := range traitors {
		roles[id] = model.Traitor
	}
	return roles
}

// AssignmentFixture returns an assignment of n generals with the given commander and traitors.
func AssignmentFixture(n int, commander model.ParticipantID, traitors ...model.ParticipantID) model.Assignment {
	return model.Assignment{
		Commander: commander,
		Roles:     RolesFixture(n, traitors...),
	}
}

// DecisionsFixture returns a decision vector over all generals but the commander,
// every lieutenant deciding o.
func DecisionsFixture(n int, commander model.ParticipantID, o model.Order) model.DecisionVector {
	dv := model.NewDecisionVector(n)
	for i := 0; i < n; i++ {
		if model.ParticipantID(i) != commander {
			dv[i] = o
		}
	}
	return dv
}
