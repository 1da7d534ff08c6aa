package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageVector_SetOnce(t *testing.T) {
	v := NewMessageVector(3)
	require.NoError(t, v.Set(1, Attack))
	assert.Equal(t, Attack, v.At(1))
	assert.Equal(t, OrderUnset, v.At(0))

	err := v.Set(1, Retreat)
	require.True(t, IsInvariantViolationError(err), "double write must be rejected")
	assert.Equal(t, Attack, v.At(1))

	require.True(t, IsInvariantViolationError(v.Set(0, OrderUnset)))
	require.True(t, IsInvariantViolationError(v.Set(3, Attack)))
	require.True(t, IsInvariantViolationError(v.Set(-1, Attack)))
	assert.Equal(t, "?A?", v.String())
}

func TestDecisionVector(t *testing.T) {
	v := NewDecisionVector(4)
	require.NoError(t, v.Set(3, Retreat))
	require.NoError(t, v.Set(1, Attack))
	assert.Equal(t, Attack, v.At(1))
	assert.Equal(t, OrderUnset, v.At(2))
	assert.True(t, IsInvariantViolationError(v.Set(3, Attack)))
	assert.Equal(t, "?A?R", v.String())
}

func TestPeerMatrix(t *testing.T) {
	m := NewPeerMatrix(3)
	assert.Equal(t, 3, m.Size())
	require.NoError(t, m.Set(0, 1, Attack))
	require.NoError(t, m.Set(2, 1, Retreat))
	require.NoError(t, m.Set(1, 0, Retreat))

	assert.Equal(t, Attack, m.At(0, 1))
	assert.Equal(t, Retreat, m.At(1, 0))
	assert.Equal(t, []Order{Attack, OrderUnset, Retreat}, m.Column(1))

	assert.True(t, IsInvariantViolationError(m.Set(0, 1, Retreat)))
	assert.True(t, IsInvariantViolationError(m.Set(3, 1, Retreat)))
	assert.True(t, IsInvariantViolationError(m.Set(1, 3, Retreat)))
	assert.Equal(t, "?A?\nR??\n?R?", m.String())
}

func TestOrder(t *testing.T) {
	assert.True(t, Attack.Valid())
	assert.True(t, Retreat.Valid())
	assert.False(t, OrderUnset.Valid())
	assert.False(t, Order(7).Valid())
	assert.Equal(t, Attack, OrderFromBool(true))
	assert.Equal(t, Retreat, OrderFromBool(false))
	assert.Equal(t, "order(7)", Order(7).String())
}

func TestAssignment_Validate(t *testing.T) {
	a := Assignment{Commander: 1, Roles: Roles{Loyal, Traitor, Loyal}}
	require.NoError(t, a.Validate())
	assert.Equal(t, Traitor, a.CommanderRole())
	assert.Equal(t, []ParticipantID{1}, a.Roles.Traitors())
	assert.Equal(t, 1, a.Roles.CountTraitors())

	assert.Error(t, Assignment{}.Validate())
	assert.Error(t, Assignment{Commander: 3, Roles: Roles{Loyal}}.Validate())
	assert.Error(t, Assignment{Commander: 0, Roles: Roles{Loyal, Role(0)}}.Validate())
}

func TestErrors(t *testing.T) {
	err := NewPreconditionViolationError(3, 1, "safety")
	assert.True(t, IsPreconditionViolationError(err))
	assert.False(t, IsInvariantViolationError(err))
	assert.Contains(t, err.Error(), "3 generals and 1 traitors")

	err = NewInvariantViolationErrorf("cell %d", 4)
	assert.True(t, IsInvariantViolationError(err))
	assert.EqualError(t, err, "internal invariant violated: cell 4")

	assert.True(t, IsAgreementViolationError(AgreementViolationError{}))
	assert.True(t, IsValidityViolationError(ValidityViolationError{}))
}
