package committee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/utils/unittest"
)

// TestAssignRoles_Rapid checks that every assignment has exactly the requested number of traitors
// and a commander in range.
func TestAssignRoles_Rapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		traitors := rapid.IntRange(0, 5).Draw(t, "traitors")
		generals := rapid.IntRange(MinGenerals(traitors), MinGenerals(traitors)+6).Draw(t, "generals")
		seed := rapid.Uint64().Draw(t, "seed")

		assignment, err := AssignRoles(generals, traitors, unittest.PRGFixture(t, seed))
		require.NoError(t, err)
		require.NoError(t, assignment.Validate())
		require.Equal(t, generals, assignment.Roles.Len())
		require.Equal(t, traitors, assignment.Roles.CountTraitors())
		require.True(t, assignment.Roles.Contains(assignment.Commander))
	})
}

// TestAssignRoles_PreconditionViolation verifies configurations breaking generals > 3*traitors are rejected
// without consuming randomness, while the unchecked variant accepts them.
func TestAssignRoles_PreconditionViolation(t *testing.T) {
	rng := unittest.PRGFixture(t, 1)

	_, err := AssignRoles(3, 1, rng)
	require.Error(t, err)
	require.True(t, model.IsPreconditionViolationError(err))

	_, err = AssignRoles(6, 2, rng)
	require.True(t, model.IsPreconditionViolationError(err))

	assignment, err := AssignRolesUnchecked(3, 1, rng)
	require.NoError(t, err)
	require.Equal(t, 1, assignment.Roles.CountTraitors())

	_, err = AssignRolesUnchecked(3, 4, rng)
	require.True(t, model.IsPreconditionViolationError(err))
}

// TestAssignRoles_Deterministic verifies that identical seeds give identical assignments.
func TestAssignRoles_Deterministic(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		a, err := AssignRoles(10, 3, unittest.PRGFixture(t, seed))
		require.NoError(t, err)
		b, err := AssignRoles(10, 3, unittest.PRGFixture(t, seed))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

// TestAssignRoles_Uniform checks roughly that every general is equally likely to be a traitor and
// to be the commander.
func TestAssignRoles_Uniform(t *testing.T) {
	const (
		generals = 7
		traitors = 2
		samples  = 14000
	)
	rng := unittest.PRGFixture(t, 7)
	traitorCount := make([]int, generals)
	commanderCount := make([]int, generals)
	for i := 0; i < samples; i++ {
		assignment, err := AssignRoles(generals, traitors, rng)
		require.NoError(t, err)
		for _, id := range assignment.Roles.Traitors() {
			traitorCount[id]++
		}
		commanderCount[assignment.Commander]++
	}
	// expected 4000 traitor and 2000 commander draws per general
	for i := 0; i < generals; i++ {
		assert.InDelta(t, 4000, traitorCount[i], 300, "traitor draws of general %d", i)
		assert.InDelta(t, 2000, commanderCount[i], 250, "commander draws of general %d", i)
	}
}
