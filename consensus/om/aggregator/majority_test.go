package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/byzantine-generals/omsim/consensus/om/model"
)

const (
	A = model.Attack
	R = model.Retreat
	U = model.OrderUnset
)

func TestMajority(t *testing.T) {
	cases := []struct {
		name     string
		values   []model.Order
		expected model.Order
	}{
		{"empty", nil, R},
		{"single attack", []model.Order{A}, A},
		{"single retreat", []model.Order{R}, R},
		{"attack majority", []model.Order{A, R, A}, A},
		{"retreat majority", []model.Order{R, A, R}, R},
		{"tie", []model.Order{A, R}, R},
		{"tie of four", []model.Order{A, A, R, R}, R},
		{"unset ignored", []model.Order{U, A, U}, A},
		{"unset only", []model.Order{U, U}, R},
		{"unset does not break tie", []model.Order{A, U, R}, R},
	}
	m := NewMajority()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, m.Aggregate(c.values))
		})
	}
}

// TestMajority_Rapid checks the tie-break rule and order independence on arbitrary inputs.
func TestMajority_Rapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.SampledFrom([]model.Order{A, R, U})).Draw(t, "values")
		m := NewMajority()

		result := m.Aggregate(values)
		require.True(t, result.Valid())

		attack, retreat := Count(values)
		if attack > retreat {
			require.Equal(t, A, result)
		} else {
			require.Equal(t, R, result)
		}

		shuffled := rapid.Permutation(values).Draw(t, "shuffled")
		require.Equal(t, result, m.Aggregate(shuffled))
	})
}
