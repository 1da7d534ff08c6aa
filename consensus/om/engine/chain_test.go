package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byzantine-generals/omsim/consensus/om/model"
)

func TestChain_Descend(t *testing.T) {
	c := NewChain(4)
	require.Equal(t, 0, c.Len())

	err := c.Descend(2, func() error {
		assert.True(t, c.Contains(2))
		assert.Equal(t, []model.ParticipantID{2}, c.Path())
		return c.Descend(0, func() error {
			assert.Equal(t, []model.ParticipantID{2, 0}, c.Path())
			assert.True(t, c.Contains(0))
			assert.False(t, c.Contains(1))
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	for i := 0; i < 4; i++ {
		assert.False(t, c.Contains(model.ParticipantID(i)))
	}
}

func TestChain_ReEntry(t *testing.T) {
	c := NewChain(3)
	called := false
	err := c.Descend(1, func() error {
		return c.Descend(1, func() error {
			called = true
			return nil
		})
	})
	require.True(t, model.IsInvariantViolationError(err))
	assert.False(t, called)
	assert.Equal(t, 0, c.Len())
}

func TestChain_OutOfRange(t *testing.T) {
	c := NewChain(3)
	assert.True(t, model.IsInvariantViolationError(c.Descend(3, func() error { return nil })))
	assert.True(t, model.IsInvariantViolationError(c.Descend(-1, func() error { return nil })))
	assert.Equal(t, 0, c.Len())
}

// the chain is restored on every exit path of the nested function
func TestChain_PopOnFailure(t *testing.T) {
	c := NewChain(3)

	sentinel := errors.New("sentinel")
	err := c.Descend(0, func() error { return sentinel })
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains(0))

	assert.Panics(t, func() {
		_ = c.Descend(1, func() error { panic("boom") })
	})
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains(1))
}

// a nested function that leaves an entry behind corrupts the chain
func TestChain_Unbalanced(t *testing.T) {
	c := NewChain(3)
	err := c.Descend(0, func() error {
		return c.push(1)
	})
	require.True(t, model.IsInvariantViolationError(err))
	assert.False(t, c.Contains(0))
}
